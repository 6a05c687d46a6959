package agent

import (
	"context"
	"encoding/json"

	"github.com/jpcolombo/mayordomo/model"
)

// Intent values the agents produce. Unknown intents are passed through
// untouched; the action executor ignores what it does not recognize.
const (
	IntentCreate = "create"
	IntentEdit   = "edit"
	IntentDelete = "delete"
	IntentQuery  = "query"
	IntentStatus = "status"
)

// Outcome is the parsed JSON answer of a domain agent. Response always
// carries the spoken reply; the remaining fields depend on the intent.
type Outcome struct {
	Intent   string         `json:"intent"`
	Response string         `json:"response"`
	Task     map[string]any `json:"task,omitempty"`
	Contact  map[string]any `json:"contact,omitempty"`
	ID       string         `json:"id,omitempty"`
	Updates  map[string]any `json:"updates,omitempty"`
	// MatchedTaskID is set by the status agent when it matches the user's
	// question to a finished background task.
	MatchedTaskID string `json:"matched_task_id,omitempty"`
}

// fallbackOutcome wraps an apology into a well-formed outcome so a model
// failure degrades to a spoken error instead of propagating.
func fallbackOutcome(msg string) Outcome {
	return Outcome{Intent: IntentQuery, Response: msg}
}

// completeJSON runs the prompt and parses the JSON outcome. Transport and
// parse failures both collapse into a spoken fallback, mirroring the policy
// that model faults become data, never errors crossing the processor.
func completeJSON(ctx context.Context, completer model.Completer, prompt string) Outcome {
	resp, err := completer.Complete(ctx, model.Request{Prompt: prompt, ExpectJSON: true})
	if err != nil {
		return fallbackOutcome("Lo siento, hubo un error al procesar tu solicitud: " + err.Error())
	}
	var out Outcome
	if err := json.Unmarshal([]byte(model.ExtractJSON(resp.Text)), &out); err != nil {
		return fallbackOutcome("Lo siento, la respuesta de la IA no fue válida.")
	}
	return out
}
