package analysis

import (
	"fmt"
	"strings"

	"github.com/skillsenselab/callinsight/transcript"
)

// buildPrompt assembles the task prompt: instruction framing, the task
// description, the transcript as numbered speaker turns, and the expected
// output shape.
func buildPrompt(task Task, tr *transcript.TranscriptionResult) string {
	return fmt.Sprintf(`You are an expert analysis engine. Perform the following task:
TASK: %s

Based on this transcript:
---
%s
---

Your response MUST be a single, valid JSON object that strictly adheres to the following schema.
Do not include any other text, explanations, or markdown formatting.

JSON SCHEMA:
%s`, task.Description, tr.PromptText(true), task.OutputSchema)
}

// buildRepairPrompt asks the model to fix its own invalid output. The
// original request and the invalid response are included verbatim.
func buildRepairPrompt(originalPrompt, invalidResponse string) string {
	return fmt.Sprintf(`Your previous response was not valid JSON. Please correct it.

ORIGINAL REQUEST:
---
%s
---

INVALID RESPONSE:
---
%s
---

Please provide ONLY the corrected, valid JSON object.`, originalPrompt, invalidResponse)
}

// extractJSON pulls a JSON object from model output that may contain
// markdown fences or surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
