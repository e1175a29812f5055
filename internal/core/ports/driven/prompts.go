package driven

// PromptStore supplies the LLM summary prompts. The file adapter reads
// overrides from the prompts directory and falls back to built-ins.
type PromptStore interface {
	Load(name string) (string, error)
}

// Prompt names.
const (
	// PromptSummarySystem takes no arguments.
	PromptSummarySystem = "summary_system"

	// PromptSummary is formatted with the target token count (%d) and the
	// document text (%s).
	PromptSummary = "summary"
)

// PromptStoreAware is implemented by services that accept custom prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
