package agent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jpcolombo/mayordomo/model"
	"github.com/jpcolombo/mayordomo/notion"
	"github.com/jpcolombo/mayordomo/session"
)

//go:embed prompts/tasks.md
var tasksPrompt string

// TasksContext is the Notion data injected into the tasks prompt.
type TasksContext struct {
	Areas    []notion.Ref
	Projects []notion.Ref
	Tasks    []notion.Task
}

// TasksAgent handles to-do management queries.
type TasksAgent struct {
	base
	completer model.Completer
}

// NewTasksAgent constructs a TasksAgent.
func NewTasksAgent(completer model.Completer, optFns ...func(o *Options)) *TasksAgent {
	return &TasksAgent{base: newBase(optFns...), completer: completer}
}

// Handle classifies the task operation and produces the spoken response plus
// the structured payload the action executor needs.
func (a *TasksAgent) Handle(ctx context.Context, query string, tcx TasksContext, history []session.Turn) Outcome {
	var sb strings.Builder
	sb.WriteString(tasksPrompt)
	sb.WriteString("\n\n--- DYNAMIC CONTEXT ---\n")
	sb.WriteString(a.timeContext())
	sb.WriteString(historyBlock(history))

	sb.WriteString("\nAVAILABLE AREAS:\n")
	for _, area := range tcx.Areas {
		fmt.Fprintf(&sb, "- %s (ID: %s)\n", area.Name, area.ID)
	}
	sb.WriteString("\nAVAILABLE PROJECTS:\n")
	for _, proj := range tcx.Projects {
		fmt.Fprintf(&sb, "- %s (ID: %s)\n", proj.Name, proj.ID)
	}
	sb.WriteString("\nEXISTING TASKS (Recent/Active):\n")
	for _, t := range tcx.Tasks {
		fmt.Fprintf(&sb, "- %s (ID: %s)", t.Name, t.ID)
		if t.DueDate != "" {
			fmt.Fprintf(&sb, " | Due: %s", t.DueDate)
		}
		if t.Priority != "" {
			fmt.Fprintf(&sb, " | Priority: %s", t.Priority)
		}
		var flags []string
		if t.Urgent {
			flags = append(flags, "Urgent")
		}
		if t.Important {
			flags = append(flags, "Important")
		}
		if len(flags) > 0 {
			fmt.Fprintf(&sb, " | Flags: %s", strings.Join(flags, ", "))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nUSER INPUT: %q", query)
	return completeJSON(ctx, a.completer, sb.String())
}
