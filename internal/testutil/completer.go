package testutil

import (
	"context"
	"sync"

	"github.com/jpcolombo/mayordomo/model"
)

// Completer is a scripted model.Completer. Responses are returned in order;
// once the script runs out the last response repeats. Set Err to fail every
// call, or Fn to compute responses from the prompt.
type Completer struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Fn        func(prompt string) (string, error)

	calls []model.Request
	next  int
}

var _ model.Completer = (*Completer)(nil)

// Complete returns the next scripted response.
func (c *Completer) Complete(_ context.Context, req model.Request) (model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, req)

	if c.Err != nil {
		return model.Response{}, c.Err
	}

	if c.Fn != nil {
		text, err := c.Fn(req.Prompt)
		return model.Response{Text: text}, err
	}

	if len(c.Responses) == 0 {
		return model.Response{}, nil
	}

	i := c.next
	if i >= len(c.Responses) {
		i = len(c.Responses) - 1
	}
	c.next++

	return model.Response{Text: c.Responses[i]}, nil
}

// Calls returns a copy of every request seen so far.
func (c *Completer) Calls() []model.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Request(nil), c.calls...)
}
