// Package confloader provides the configuration loading mechanism.
//
// This package implements a layered configuration loader built on koanf.
//
// Features:
//
//   - Multiple Sources: defaults map, YAML file, .env files, environment
//   - Watch Support: callbacks on config file changes via fsnotify
//   - Type Safety: unmarshaling into typed structs with koanf tags
//
// Priority (highest to lowest):
//
//  1. Environment variables (including values from .env files)
//  2. Configuration file
//  3. Default values
package confloader
