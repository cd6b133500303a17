// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the skillbot home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates with embedded defaults
//
// LoadSettings maps a ConfigStore onto domain.AppSettings and applies
// environment overrides; LoadEnvFiles reads .env files beforehand.
package file
