package analysis

// Task identifiers known to the registry. The orchestrator runs the first
// three for every source; adding a task is a pure data change here.
const (
	TaskSummarization        = "summarization"
	TaskSentimentAnalysis    = "sentiment_analysis"
	TaskActionItemExtraction = "action_item_extraction"
	TaskCallCategorization   = "call_categorization"
)

// Task defines an analysis task: what the model should do and the shape its
// output must take. The schema text is advisory guidance injected into the
// prompt, not a mechanically enforced contract.
type Task struct {
	Description  string
	OutputSchema string
}

// Registry maps task identifiers to their definitions.
type Registry map[string]Task

// Lookup returns the task definition for id.
func (r Registry) Lookup(id string) (Task, bool) {
	t, ok := r[id]
	return t, ok
}

// IDs returns the registered task identifiers.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	return ids
}

// DefaultRegistry returns the built-in analysis tasks.
func DefaultRegistry() Registry {
	return Registry{
		TaskSummarization: {
			Description: "Generate a concise, neutral paragraph summarizing the key points and outcome of the conversation.",
			OutputSchema: `A JSON object with a single key "summary".
The value of "summary" should be a string containing the summary text.
Example: {"summary": "The customer called to report a billing issue and the agent resolved it by applying a credit."}`,
		},

		TaskSentimentAnalysis: {
			Description: "Analyze the sentiment of EACH utterance in the transcript.",
			OutputSchema: `A JSON object with a single key "utterance_sentiments".
The value of "utterance_sentiments" must be a list of JSON objects.
Each object in the list must have exactly these three keys:
1. "utterance_index": The integer index of the utterance from the provided transcript (e.g., 0, 1, 2).
2. "sentiment": A single string value, which must be one of ["POSITIVE", "NEGATIVE", "NEUTRAL"].
3. "score": A float value from -1.0 (most negative) to 1.0 (most positive), representing the intensity of the sentiment.
Example: {"utterance_sentiments": [{"utterance_index": 0, "sentiment": "NEUTRAL", "score": 0.1}]}`,
		},

		TaskActionItemExtraction: {
			Description: "Extract all explicit action items, follow-up tasks, or commitments made during the conversation.",
			OutputSchema: `A JSON object with a single key "action_items".
The value of "action_items" must be a list of JSON objects.
Each object in the list must have exactly these three keys:
- "task": A clear, concise string describing the action to be taken.
- "owner": A string identifying who is responsible for the action (e.g., "Support Agent", "Customer", "System").
- "context": The original string from the transcript that implies the action.
If no action items are found, the list should be empty.
Example: {"action_items": [{"task": "Send a confirmation email to the customer", "owner": "Support Agent", "context": "Okay, I will send you that confirmation email right away."}]}`,
		},

		TaskCallCategorization: {
			Description: "Categorize the primary purpose of the call into one of the following predefined categories: 'Sales Inquiry', 'Technical Support', 'Billing Issue', 'Account Management', or 'General Question'.",
			OutputSchema: `A JSON object with a single key "category".
The value of "category" must be a string that is one of the predefined categories.
Example: {"category": "Billing Issue"}`,
		},
	}
}
