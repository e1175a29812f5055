// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.proctok/config.toml or a --config path
//   - PromptStore: user-editable LLM summary prompts
package file
