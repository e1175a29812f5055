package domain

// ContextWindow is a named model context size in tokens.
type ContextWindow struct {
	Model  string
	Tokens int
}

// ContextWindows lists common model context windows in report order.
var ContextWindows = []ContextWindow{
	{Model: "GPT-3.5-turbo", Tokens: 4096},
	{Model: "GPT-4", Tokens: 8192},
	{Model: "GPT-4-turbo", Tokens: 128000},
	{Model: "GPT-4o", Tokens: 128000},
	{Model: "Claude-3-haiku", Tokens: 200000},
	{Model: "Claude-3-sonnet", Tokens: 200000},
	{Model: "Claude-3-opus", Tokens: 200000},
	{Model: "Claude-3.5-sonnet", Tokens: 200000},
}
