package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jpcolombo/mayordomo/internal/testutil"
)

func TestCompleteJSON(t *testing.T) {
	c := &testutil.Completer{Responses: []string{
		`{"intent": "create", "response": "Creada.", "task": {"name": "Comprar pan"}}`,
	}}

	out := completeJSON(context.Background(), c, "prompt")

	assert.Equal(t, IntentCreate, out.Intent)
	assert.Equal(t, "Creada.", out.Response)
	assert.Equal(t, "Comprar pan", out.Task["name"])
}

func TestCompleteJSONFencedOutput(t *testing.T) {
	c := &testutil.Completer{Responses: []string{
		"```json\n{\"intent\": \"edit\", \"response\": \"Actualizada.\", \"id\": \"p1\", \"updates\": {\"done\": true}}\n```",
	}}

	out := completeJSON(context.Background(), c, "prompt")

	assert.Equal(t, IntentEdit, out.Intent)
	assert.Equal(t, "p1", out.ID)
	assert.Equal(t, true, out.Updates["done"])
}

func TestCompleteJSONModelError(t *testing.T) {
	c := &testutil.Completer{Err: errors.New("rate limited")}

	out := completeJSON(context.Background(), c, "prompt")

	assert.Equal(t, IntentQuery, out.Intent)
	assert.Contains(t, out.Response, "Lo siento")
	assert.Contains(t, out.Response, "rate limited")
}

func TestCompleteJSONInvalidJSON(t *testing.T) {
	c := &testutil.Completer{Responses: []string{"this is not json"}}

	out := completeJSON(context.Background(), c, "prompt")

	assert.Equal(t, IntentQuery, out.Intent)
	assert.Equal(t, "Lo siento, la respuesta de la IA no fue válida.", out.Response)
}
