package config

// DefaultServer is the server URL used when none is configured.
const DefaultServer = "http://127.0.0.1:8080"

// CLIConfig is the configuration for gymdesk-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Output string `yaml:"output"` // table, json, yaml

	// Token and Username are written by login and cleared by logout.
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: DefaultServer,
		Output: "table",
	}
}
