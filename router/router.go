// Package router classifies incoming queries into a handling domain before
// any expensive context is fetched. Status queries are detected by a cheap
// keyword scan so they never pay for a model call.
package router

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jpcolombo/mayordomo/logging"
	"github.com/jpcolombo/mayordomo/model"
)

//go:embed prompt.md
var routerPrompt string

// Domain is the handling category for a query.
type Domain string

// Known domains. Anything unrecognizable falls back to DomainGeneral.
const (
	DomainTasks    Domain = "tasks"
	DomainContacts Domain = "contacts"
	DomainGeneral  Domain = "general"
)

// statusKeywords flag "what happened" queries about background work.
var statusKeywords = []string{
	"qué pasó", "que paso", "terminaste", "resultado", "listo", "ya quedó", "ya quedo",
}

// IsStatusQuery reports whether the query asks about background task status.
func IsStatusQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range statusKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Options configure a Router.
type Options struct {
	Logger logging.Logger
}

// Router performs model-backed intent classification.
type Router struct {
	completer model.Completer
	logger    logging.Logger
}

// New constructs a Router using the given completer.
func New(completer model.Completer, optFns ...func(o *Options)) *Router {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{completer: completer, logger: opts.Logger}
}

// Classify maps a query to a domain. Any model failure or unparseable
// answer falls back to the general domain rather than surfacing an error.
func (r *Router) Classify(ctx context.Context, query string) Domain {
	prompt := fmt.Sprintf(
		"%s\n\nUSER INPUT: %q\n\nRespond with ONLY the domain name (tasks, contacts, or general):",
		routerPrompt, query,
	)
	resp, err := r.completer.Complete(ctx, model.Request{Prompt: prompt})
	if err != nil {
		r.logger.Warn("classification failed, defaulting to general", "error", err)
		return DomainGeneral
	}
	output := strings.ToLower(resp.Text)
	for _, d := range []Domain{DomainTasks, DomainContacts} {
		if strings.Contains(output, string(d)) {
			return d
		}
	}
	return DomainGeneral
}
