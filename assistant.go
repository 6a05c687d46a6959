// Package mayordomo implements a deadline-bound conversational assistant
// that manages Notion tasks and contacts through natural language. Queries
// race against a caller-supplied deadline: fast ones answer inline, slow
// ones detach into a background task whose result is retrieved later by
// asking what happened.
package mayordomo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jpcolombo/mayordomo/agent"
	"github.com/jpcolombo/mayordomo/background"
	"github.com/jpcolombo/mayordomo/calendar"
	"github.com/jpcolombo/mayordomo/logging"
	"github.com/jpcolombo/mayordomo/model"
	"github.com/jpcolombo/mayordomo/notion"
	"github.com/jpcolombo/mayordomo/router"
	"github.com/jpcolombo/mayordomo/session"
	"github.com/jpcolombo/mayordomo/store"
	"github.com/jpcolombo/mayordomo/task"
)

// Reply statuses reported to callers.
const (
	StatusCompleted  = "completed"
	StatusProcessing = "processing"
)

// NotionAPI is the subset of the Notion service the assistant depends on.
type NotionAPI interface {
	Areas(ctx context.Context) ([]notion.Ref, error)
	Projects(ctx context.Context) ([]notion.Ref, error)
	ActiveTasks(ctx context.Context) ([]notion.Task, error)
	Contacts(ctx context.Context) ([]notion.Contact, error)
	EnrichContacts(ctx context.Context, contacts []notion.Contact, queryWords []string) []notion.Contact
	AddTask(ctx context.Context, fields map[string]any) (string, error)
	UpdateTask(ctx context.Context, pageID string, fields map[string]any) error
	ArchiveTask(ctx context.Context, pageID string) error
	AddContact(ctx context.Context, fields map[string]any) (string, error)
	UpdateContact(ctx context.Context, pageID string, fields map[string]any) error
	ArchiveContact(ctx context.Context, pageID string) error
}

// CalendarAPI is the subset of the calendar service used for task syncing.
type CalendarAPI interface {
	CreateEvent(ctx context.Context, summary, start, description string) (string, error)
	UpdateEvent(ctx context.Context, eventID string, update calendar.EventUpdate) error
	DeleteEvent(ctx context.Context, eventID string) error
}

var (
	_ NotionAPI   = (*notion.Service)(nil)
	_ CalendarAPI = (*calendar.Service)(nil)
)

// Options configures the assistant.
type Options struct {
	// Completer is the language model backing the router and agents.
	Completer model.Completer

	// Notion is the task and contact backend. Required.
	Notion NotionAPI

	// Calendar enables Google Calendar sync for dated tasks when set.
	Calendar CalendarAPI

	// Deadline is the default time budget for a query when the caller
	// does not supply one.
	Deadline time.Duration

	// Timezone anchors date and time context given to the agents.
	Timezone *time.Location

	SessionMaxTurns int
	SessionTTL      time.Duration
	TaskTTL         time.Duration
	TaskMaxRecords  int

	// Placeholder overrides the response returned when a query misses
	// its deadline.
	Placeholder string

	Clock  store.Clock
	Logger logging.Logger
}

// Query is a single user utterance addressed to the assistant.
type Query struct {
	// Text is the user input.
	Text string

	// SessionID groups turns into a conversation. Empty disables memory.
	SessionID string

	// Deadline is the time budget before the assistant answers with a
	// placeholder. Zero selects the assistant's default; a negative value
	// answers with the placeholder immediately while the work continues
	// in the background.
	Deadline time.Duration
}

// Reply is the assistant's answer to a query.
type Reply struct {
	// Response is the spoken answer.
	Response string

	// Status is StatusCompleted when the work finished within the
	// deadline and StatusProcessing when a placeholder was returned.
	Status string

	// TaskID identifies the background task backing this query.
	TaskID string
}

// Assistant wires the router, domain agents and backend services behind a
// single HandleQuery entry point.
type Assistant struct {
	notion   NotionAPI
	calendar CalendarAPI

	tasks     *task.Store
	sessions  *session.Store
	processor *background.Processor
	router    *router.Router

	tasksAgent    *agent.TasksAgent
	contactsAgent *agent.ContactsAgent
	generalAgent  *agent.GeneralAgent
	statusAgent   *agent.StatusAgent

	// areas and projects are cached at startup. They change rarely and
	// keeping them out of the per-query path saves two Notion round trips.
	areas    []notion.Ref
	projects []notion.Ref

	deadline time.Duration
	logger   logging.Logger
}

// New creates an Assistant and primes its Notion area and project caches.
func New(ctx context.Context, optFns ...func(o *Options)) (*Assistant, error) {
	opts := Options{
		Deadline:        6 * time.Second,
		Timezone:        time.UTC,
		SessionMaxTurns: 5,
		SessionTTL:      2 * time.Minute,
		TaskTTL:         5 * time.Minute,
		TaskMaxRecords:  50,
		Clock:           time.Now,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Completer == nil {
		return nil, fmt.Errorf("assistant: completer is required")
	}

	if opts.Notion == nil {
		return nil, fmt.Errorf("assistant: notion backend is required")
	}

	areas, err := opts.Notion.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("assistant: load areas: %w", err)
	}

	projects, err := opts.Notion.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("assistant: load projects: %w", err)
	}

	tasks := task.NewStore(func(o *task.Options) {
		o.MaxRecords = opts.TaskMaxRecords
		o.TTL = opts.TaskTTL
		o.Clock = opts.Clock
	})

	sessions := session.NewStore(func(o *session.Options) {
		o.MaxTurns = opts.SessionMaxTurns
		o.TTL = opts.SessionTTL
		o.Clock = opts.Clock
	})

	processor := background.NewProcessor(tasks, func(o *background.Options) {
		o.Logger = opts.Logger
		if opts.Placeholder != "" {
			o.Placeholder = opts.Placeholder
		}
	})

	agentOpts := func(o *agent.Options) {
		o.Timezone = opts.Timezone
		o.Clock = opts.Clock
		o.Logger = opts.Logger
	}

	return &Assistant{
		notion:        opts.Notion,
		calendar:      opts.Calendar,
		tasks:         tasks,
		sessions:      sessions,
		processor:     processor,
		router:        router.New(opts.Completer, func(o *router.Options) { o.Logger = opts.Logger }),
		tasksAgent:    agent.NewTasksAgent(opts.Completer, agentOpts),
		contactsAgent: agent.NewContactsAgent(opts.Completer, agentOpts),
		generalAgent:  agent.NewGeneralAgent(opts.Completer, agentOpts),
		statusAgent:   agent.NewStatusAgent(opts.Completer, tasks, agentOpts),
		areas:         areas,
		projects:      projects,
		deadline:      opts.Deadline,
		logger:        opts.Logger,
	}, nil
}

// HandleQuery answers a user query. Status queries are answered inline from
// the task store. Everything else runs against the query's deadline and
// falls back to a placeholder when the work takes longer.
func (a *Assistant) HandleQuery(ctx context.Context, q Query) Reply {
	text := strings.TrimSpace(q.Text)

	if router.IsStatusQuery(text) {
		outcome := a.statusAgent.Handle(ctx, text)

		return Reply{Response: outcome.Response, Status: StatusCompleted}
	}

	deadline := q.Deadline
	if deadline == 0 {
		deadline = a.deadline
	}

	result := a.processor.Run(ctx, text, a.work(text, q.SessionID), deadline)

	status := StatusProcessing
	if result.Completed || result.Failed {
		status = StatusCompleted
	}

	return Reply{Response: result.Response, Status: status, TaskID: result.TaskID}
}

// EvictSessions drops conversations idle past their TTL and reports how
// many were removed.
func (a *Assistant) EvictSessions() int {
	return a.sessions.EvictExpired()
}

// work builds the background pipeline for a query: classify the intent,
// gather domain context, ask the matching agent and execute its actions.
// Session turns are recorded only once the pipeline produced an answer.
func (a *Assistant) work(text, sessionID string) background.Work {
	return func(ctx context.Context) (string, error) {
		history := a.sessions.RecentTurns(sessionID)
		domain := a.router.Classify(ctx, text)

		a.logger.Debug("query routed", "domain", string(domain), "session_id", sessionID)

		response, err := a.handle(ctx, domain, text, history)
		if err != nil {
			return "", err
		}

		a.sessions.AppendTurn(sessionID, session.RoleUser, text)
		a.sessions.AppendTurn(sessionID, session.RoleAssistant, response)

		return response, nil
	}
}

func (a *Assistant) handle(ctx context.Context, domain router.Domain, text string, history []session.Turn) (string, error) {
	switch domain {
	case router.DomainTasks:
		active, err := a.notion.ActiveTasks(ctx)
		if err != nil {
			return "", fmt.Errorf("load tasks: %w", err)
		}

		outcome := a.tasksAgent.Handle(ctx, text, agent.TasksContext{
			Areas:    a.areas,
			Projects: a.projects,
			Tasks:    active,
		}, history)

		return a.executeTaskActions(ctx, outcome, active), nil
	case router.DomainContacts:
		contacts, err := a.notion.Contacts(ctx)
		if err != nil {
			return "", fmt.Errorf("load contacts: %w", err)
		}

		contacts = a.notion.EnrichContacts(ctx, contacts, strings.Fields(strings.ToLower(text)))

		outcome := a.contactsAgent.Handle(ctx, text, contacts, history)

		return a.executeContactActions(ctx, outcome), nil
	default:
		outcome := a.generalAgent.Handle(ctx, text, history)

		return outcome.Response, nil
	}
}
