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

//go:embed prompts/contacts.md
var contactsPrompt string

// ContactsAgent handles people-related queries.
type ContactsAgent struct {
	base
	completer model.Completer
}

// NewContactsAgent constructs a ContactsAgent.
func NewContactsAgent(completer model.Completer, optFns ...func(o *Options)) *ContactsAgent {
	return &ContactsAgent{base: newBase(optFns...), completer: completer}
}

// Handle produces the spoken response and structured payload for a contact
// query. Contacts already enriched with page content expose it to the model.
func (a *ContactsAgent) Handle(ctx context.Context, query string, contacts []notion.Contact, history []session.Turn) Outcome {
	var sb strings.Builder
	sb.WriteString(contactsPrompt)
	sb.WriteString("\n\n--- DYNAMIC CONTEXT ---\n")
	sb.WriteString(a.timeContext())
	sb.WriteString(historyBlock(history))

	sb.WriteString("\nCONTACTS:\n")
	for _, c := range contacts {
		fmt.Fprintf(&sb, "- %s (ID: %s)", c.Name, c.ID)
		if c.Groups != "" {
			fmt.Fprintf(&sb, " | Group: %s", c.Groups)
		}
		if c.Company != "" {
			fmt.Fprintf(&sb, " | Company: %s", c.Company)
		}
		if c.Email != "" {
			fmt.Fprintf(&sb, " | Email: %s", c.Email)
		}
		if c.Birthday != "" {
			fmt.Fprintf(&sb, " | Birthday: %s", c.Birthday)
		}
		if c.Notes != "" {
			fmt.Fprintf(&sb, " | Notes: %s", c.Notes)
		}
		if c.Favorite {
			sb.WriteString(" | Favorite")
		}
		if c.PageContent != "" {
			fmt.Fprintf(&sb, " | Page Content: %s", c.PageContent)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nUSER INPUT: %q", query)
	return completeJSON(ctx, a.completer, sb.String())
}
