package driven

// PromptStore serves the prompt templates sent to the LLM. The file store
// lets users override the built-in Persian defaults from the config dir.
type PromptStore interface {
	// Load returns the template called name, or ErrNotFound for names the
	// store has never heard of.
	Load(name string) (string, error)

	// Reload drops cached templates so the next Load reads disk again.
	Reload()
}

// Prompt names.
const (
	// PromptQueryRewrite turns history plus the newest question into a
	// standalone search query. No placeholders.
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswerPolicy is the system policy for answers. No placeholders.
	PromptAnswerPolicy = "answer_policy"

	// PromptSummarise folds evicted turns into the running summary. Takes
	// two %s: the previous summary, then the rendered turns.
	PromptSummarise = "summarise"
)
