package model

import "context"

// Request captures a single completion request. Prompt is the combined
// system + user text the agents assemble; adapters split it into provider
// messages (see SplitPrompt). ExpectJSON asks the provider for a JSON
// object response where the API supports it; the returned text is run
// through ExtractJSON either way so fenced output still parses.
type Request struct {
	Prompt     string
	ExpectJSON bool
}

// Response is the normalized completion output.
type Response struct {
	Text string
}

// Completer is the minimal model client interface. Implementations must be
// safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
