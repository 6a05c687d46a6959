package agent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jpcolombo/mayordomo/model"
	"github.com/jpcolombo/mayordomo/session"
)

//go:embed prompts/general.md
var generalPrompt string

// GeneralAgent handles conversation that fits neither domain.
type GeneralAgent struct {
	base
	completer model.Completer
}

// NewGeneralAgent constructs a GeneralAgent.
func NewGeneralAgent(completer model.Completer, optFns ...func(o *Options)) *GeneralAgent {
	return &GeneralAgent{base: newBase(optFns...), completer: completer}
}

// Handle produces a conversational response.
func (a *GeneralAgent) Handle(ctx context.Context, query string, history []session.Turn) Outcome {
	var sb strings.Builder
	sb.WriteString(generalPrompt)
	sb.WriteString("\n\n--- DYNAMIC CONTEXT ---\n")
	sb.WriteString(a.timeContext())
	sb.WriteString(historyBlock(history))
	fmt.Fprintf(&sb, "\nUSER INPUT: %q", query)
	return completeJSON(ctx, a.completer, sb.String())
}
