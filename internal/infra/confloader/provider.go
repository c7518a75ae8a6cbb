package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider does not support ReadBytes")

// mapProvider is a koanf provider over a map of dotted keys. koanf calls
// Read for providers that return parsed data.
type mapProvider map[string]any

// ReadBytes implements koanf.Provider.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read implements koanf.Provider.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		setNested(out, k, v)
	}
	return out, nil
}

func setNested(dst map[string]any, key string, v any) {
	for {
		i := strings.IndexByte(key, '.')
		if i < 0 {
			dst[key] = v
			return
		}
		child, ok := dst[key[:i]].(map[string]any)
		if !ok {
			child = make(map[string]any)
			dst[key[:i]] = child
		}
		dst, key = child, key[i+1:]
	}
}
