package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpcolombo/mayordomo/internal/testutil"
	"github.com/jpcolombo/mayordomo/notion"
	"github.com/jpcolombo/mayordomo/session"
)

func historyFixture(user, assistant string) []session.Turn {
	return []session.Turn{
		{Role: session.RoleUser, Content: user},
		{Role: session.RoleAssistant, Content: assistant},
	}
}

func TestTasksAgentPromptContext(t *testing.T) {
	c := &testutil.Completer{Responses: []string{`{"intent": "query", "response": "Tienes una tarea."}`}}
	a := NewTasksAgent(c)

	tcx := TasksContext{
		Areas:    []notion.Ref{{ID: "a1", Name: "Hogar"}},
		Projects: []notion.Ref{{ID: "p1", Name: "Mudanza"}},
		Tasks: []notion.Task{
			{ID: "t1", Name: "Comprar cajas", DueDate: "2026-03-01", Priority: "High", Urgent: true},
		},
	}

	out := a.Handle(context.Background(), "¿qué tengo pendiente?", tcx, nil)
	assert.Equal(t, "Tienes una tarea.", out.Response)

	calls := c.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Prompt

	assert.True(t, calls[0].ExpectJSON)
	assert.Contains(t, prompt, "Hogar (ID: a1)")
	assert.Contains(t, prompt, "Mudanza (ID: p1)")
	assert.Contains(t, prompt, "Comprar cajas (ID: t1)")
	assert.Contains(t, prompt, "Due: 2026-03-01")
	assert.Contains(t, prompt, "Priority: High")
	assert.Contains(t, prompt, "Flags: Urgent")
	assert.Contains(t, prompt, `USER INPUT: "¿qué tengo pendiente?"`)
}

func TestContactsAgentPromptContext(t *testing.T) {
	c := &testutil.Completer{Responses: []string{`{"intent": "query", "response": "Es el 2 de abril."}`}}
	a := NewContactsAgent(c)

	contacts := []notion.Contact{
		{ID: "c1", Name: "Ana", Groups: "Family", Email: "ana@example.com", Favorite: true, PageContent: "Le gusta el café."},
	}

	out := a.Handle(context.Background(), "¿cuándo cumple Ana?", contacts, nil)
	assert.Equal(t, "Es el 2 de abril.", out.Response)

	prompt := c.Calls()[0].Prompt
	assert.Contains(t, prompt, "Ana (ID: c1)")
	assert.Contains(t, prompt, "Group: Family")
	assert.Contains(t, prompt, "Email: ana@example.com")
	assert.Contains(t, prompt, "Favorite")
	assert.Contains(t, prompt, "Page Content: Le gusta el café.")
}

func TestGeneralAgentIncludesHistory(t *testing.T) {
	c := &testutil.Completer{Responses: []string{`{"intent": "query", "response": "Claro."}`}}
	a := NewGeneralAgent(c)

	history := historyFixture("¿me ayudas?", "Claro que sí.")

	out := a.Handle(context.Background(), "gracias", history)
	assert.Equal(t, "Claro.", out.Response)

	prompt := c.Calls()[0].Prompt
	assert.Contains(t, prompt, "User: ¿me ayudas?")
	assert.Contains(t, prompt, "Assistant: Claro que sí.")
}
