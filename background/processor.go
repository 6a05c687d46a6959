package background

import (
	"context"
	"fmt"
	"time"

	"github.com/jpcolombo/mayordomo/logging"
	"github.com/jpcolombo/mayordomo/task"
)

// Work is a unit of background work producing a spoken response. It carries
// all required input via closure capture; the context it receives is
// detached from the caller's so it survives the caller-facing deadline.
type Work func(ctx context.Context) (string, error)

// Reply is the caller-facing result of Run.
type Reply struct {
	// TaskID identifies the record tracking this work in the task store.
	TaskID string
	// Response is the spoken answer: the work's real output when it finished
	// in time, otherwise a placeholder.
	Response string
	// Completed reports whether the work finished before the deadline.
	Completed bool
	// Failed reports that the work finished in time but with an error.
	Failed bool
}

// Default spoken strings. The placeholder tells the user to ask back for
// the result; the failure format wraps the error text.
const (
	defaultPlaceholder   = "Procesando tu solicitud, pregúntame en unos segundos qué pasó."
	defaultFailureFormat = "Hubo un error procesando tu solicitud: %s"
)

// Options configure a Processor.
type Options struct {
	// Placeholder is returned when the deadline elapses first.
	Placeholder string
	// FailureFormat renders the spoken response for a work error; it must
	// contain a single %s verb for the error text.
	FailureFormat string
	// Logger receives processing events.
	Logger logging.Logger
}

// Processor races a unit of work against a deadline and guarantees the
// work's outcome is recorded in the task store exactly once, whichever
// branch fires first. Safe for concurrent use.
type Processor struct {
	tasks         *task.Store
	placeholder   string
	failureFormat string
	logger        logging.Logger
}

// NewProcessor constructs a Processor bound to a task store.
func NewProcessor(tasks *task.Store, optFns ...func(o *Options)) *Processor {
	opts := Options{
		Placeholder:   defaultPlaceholder,
		FailureFormat: defaultFailureFormat,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Processor{
		tasks:         tasks,
		placeholder:   opts.Placeholder,
		failureFormat: opts.FailureFormat,
		logger:        opts.Logger,
	}
}

type outcome struct {
	response string
	err      error
}

// Run creates a pending task record, starts work concurrently and waits for
// whichever comes first: completion, the deadline, or cancellation of the
// caller's wait. The work itself is never cancelled; after a deadline miss
// it keeps running and its eventual outcome stays retrievable through the
// task store. The outcome is written to the store before Run returns it, so
// a completed reply is always observable by an immediate status query.
func (p *Processor) Run(ctx context.Context, query string, work Work, deadline time.Duration) Reply {
	id := p.tasks.Create(query)
	logger := &taskLogger{base: p.logger, id: id}

	done := make(chan outcome, 1)
	go p.execute(context.WithoutCancel(ctx), id, work, done, logger)

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case o := <-done:
		if o.err != nil {
			return Reply{
				TaskID:    id,
				Response:  fmt.Sprintf(p.failureFormat, o.err),
				Completed: true,
				Failed:    true,
			}
		}
		return Reply{TaskID: id, Response: o.response, Completed: true}
	case <-timer.C:
		logger.Info("deadline elapsed, work continues in background")
	case <-ctx.Done():
		logger.Info("caller wait cancelled, work continues in background")
	}
	return Reply{TaskID: id, Response: p.placeholder}
}

// execute runs the work and records its outcome. The store transition
// happens before the completion signal so the happens-before ordering
// toward status queries holds on both race branches.
func (p *Processor) execute(ctx context.Context, id string, work Work, done chan<- outcome, logger *taskLogger) {
	response, err := invoke(ctx, work)
	if err != nil {
		if p.tasks.Fail(id, err.Error()) {
			logger.Error("work failed", "error", err)
		} else {
			// Benign double transition; the record already left pending.
			logger.Debug("failure transition skipped, record not pending")
		}
		done <- outcome{err: err}
		return
	}
	if p.tasks.Complete(id, response) {
		logger.Info("work completed")
	} else {
		logger.Debug("completion transition skipped, record not pending")
	}
	done <- outcome{response: response}
}

// invoke shields the processor from panicking work by converting the panic
// into an error outcome.
func invoke(ctx context.Context, work Work) (response string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work panicked: %v", r)
		}
	}()
	return work(ctx)
}

// taskLogger prefixes every record with the task id.
type taskLogger struct {
	base logging.Logger
	id   string
}

func (l *taskLogger) Debug(msg string, args ...any) {
	l.base.Debug(msg, append([]any{"task_id", l.id}, args...)...)
}

func (l *taskLogger) Info(msg string, args ...any) {
	l.base.Info(msg, append([]any{"task_id", l.id}, args...)...)
}

func (l *taskLogger) Error(msg string, args ...any) {
	l.base.Error(msg, append([]any{"task_id", l.id}, args...)...)
}
