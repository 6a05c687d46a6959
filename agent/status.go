package agent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jpcolombo/mayordomo/model"
	"github.com/jpcolombo/mayordomo/task"
)

//go:embed prompts/status.md
var statusPrompt string

// resultPreviewMax bounds the result excerpt shown per completed task.
const resultPreviewMax = 100

// StatusAgent answers "what happened" queries about background work. It
// reads the ordered pending/finished listings, lets the model pick the task
// the user is asking about, and consumes the matched record so its result is
// delivered exactly once.
type StatusAgent struct {
	base
	completer model.Completer
	tasks     *task.Store
}

// NewStatusAgent constructs a StatusAgent bound to the task store.
func NewStatusAgent(completer model.Completer, tasks *task.Store, optFns ...func(o *Options)) *StatusAgent {
	return &StatusAgent{base: newBase(optFns...), completer: completer, tasks: tasks}
}

// Handle resolves a status query. No-work and pending-only cases answer
// without a model call.
func (a *StatusAgent) Handle(ctx context.Context, query string) Outcome {
	pending := a.tasks.ListPending()
	finished := a.tasks.ListCompletedUnconsumed()

	if len(pending) == 0 && len(finished) == 0 {
		return Outcome{Intent: IntentStatus, Response: "No tengo tareas procesando. ¿En qué te puedo ayudar?"}
	}
	if len(finished) == 0 {
		if len(pending) == 1 {
			return Outcome{Intent: IntentStatus, Response: "Todavía estoy trabajando en eso. Dame unos segundos más."}
		}
		return Outcome{
			Intent:   IntentStatus,
			Response: fmt.Sprintf("Tengo %d tareas procesando. Dame unos segundos más.", len(pending)),
		}
	}

	out := completeJSON(ctx, a.completer, a.buildPrompt(query, pending, finished))
	if out.MatchedTaskID == "" {
		return out
	}
	record, ok := a.tasks.Consume(out.MatchedTaskID)
	if !ok {
		// Already delivered or evicted; never re-deliver a stale result.
		a.logger.Debug("matched task not consumable", "task_id", out.MatchedTaskID)
		return Outcome{Intent: IntentStatus, Response: "No tengo nada nuevo que reportar sobre eso."}
	}
	if out.Response == "" {
		if record.Status == task.StatusFailed {
			out.Response = "Esa tarea falló: " + record.Err
		} else {
			out.Response = record.Result
		}
	}
	out.Intent = IntentStatus
	return out
}

func (a *StatusAgent) buildPrompt(query string, pending, finished []task.Record) string {
	var sb strings.Builder
	sb.WriteString(statusPrompt)
	sb.WriteString("\n\n--- DYNAMIC CONTEXT ---\n")
	sb.WriteString(a.timeContext())

	sb.WriteString("\nPENDING TASKS (still processing):\n")
	for _, t := range pending {
		fmt.Fprintf(&sb, "- ID: %s | Query: %q\n", t.ID, t.Query)
	}
	sb.WriteString("\nCOMPLETED TASKS (ready to return):\n")
	for _, t := range finished {
		preview := truncate(t.Result, resultPreviewMax)
		fmt.Fprintf(&sb, "- ID: %s | Query: %q | Result: %q", t.ID, t.Query, preview)
		if t.Err != "" {
			fmt.Fprintf(&sb, " | Error: %s", t.Err)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nUSER STATUS QUERY: %q", query)
	return sb.String()
}
