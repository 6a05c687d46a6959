// Command mayordomo runs the assistant HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/jpcolombo/mayordomo"
	"github.com/jpcolombo/mayordomo/calendar"
	"github.com/jpcolombo/mayordomo/config"
	"github.com/jpcolombo/mayordomo/logging"
	"github.com/jpcolombo/mayordomo/model"
	anthropicmodel "github.com/jpcolombo/mayordomo/model/anthropic"
	openaimodel "github.com/jpcolombo/mayordomo/model/openai"
	"github.com/jpcolombo/mayordomo/notion"
	"github.com/jpcolombo/mayordomo/server"
)

// sessionEvictInterval is how often idle conversations are swept. Eviction
// is also lazy on access; the sweep only bounds memory between accesses.
const sessionEvictInterval = time.Minute

func main() {
	root := &cobra.Command{
		Use:          "mayordomo",
		Short:        "Voice assistant server for Notion tasks and contacts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(func(o *logging.Options) {
		o.Level = cfg.Server.LogLevel
		o.Format = cfg.Server.LogFormat
	})

	tz, err := time.LoadLocation(cfg.Assistant.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Assistant.Timezone, err)
	}

	notionSvc, err := notion.NewService(cfg.Notion.APIKey, func(o *notion.Options) {
		o.TasksDatabaseID = cfg.Notion.TasksDatabaseID
		o.AreasDatabaseID = cfg.Notion.AreasDatabaseID
		o.ProjectsDatabaseID = cfg.Notion.ProjectsDatabaseID
		o.ContactsDatabaseID = cfg.Notion.ContactsDatabaseID
		o.Logger = logger
	})
	if err != nil {
		return fmt.Errorf("notion service: %w", err)
	}

	var calendarSvc mayordomo.CalendarAPI
	if cfg.Calendar.Enabled {
		svc, err := calendar.NewService(ctx, cfg.Calendar.CredentialsFile, cfg.Calendar.TokenFile, func(o *calendar.Options) {
			o.CalendarID = cfg.Calendar.CalendarID
			o.Timezone = tz
			o.Logger = logger
		})
		if err != nil {
			return fmt.Errorf("calendar service: %w", err)
		}
		calendarSvc = svc
	}

	assistant, err := mayordomo.New(ctx, func(o *mayordomo.Options) {
		o.Completer = newCompleter(cfg.Model)
		o.Notion = notionSvc
		o.Calendar = calendarSvc
		o.Deadline = secondsToDuration(cfg.Assistant.DeadlineSeconds)
		o.Timezone = tz
		o.SessionMaxTurns = cfg.Assistant.SessionMaxTurns
		o.SessionTTL = secondsToDuration(cfg.Assistant.SessionTTLSeconds)
		o.TaskTTL = secondsToDuration(cfg.Assistant.TaskTTLSeconds)
		o.TaskMaxRecords = cfg.Assistant.TaskMaxRecords
		o.Logger = logger
	})
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}

	go evictSessions(ctx, assistant, logger)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(assistant, func(o *server.Options) { o.Logger = logger }),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func newCompleter(cfg config.ModelConfig) model.Completer {
	if cfg.Provider == "anthropic" {
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			if cfg.Name != "" {
				o.Model = anthropic.Model(cfg.Name)
			}
		})
	}

	return openaimodel.NewModel(func(o *openaimodel.Options) {
		o.APIKey = cfg.OpenAIAPIKey
		if cfg.Name != "" {
			o.Model = cfg.Name
		}
	})
}

func evictSessions(ctx context.Context, assistant *mayordomo.Assistant, logger logging.Logger) {
	ticker := time.NewTicker(sessionEvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := assistant.EvictSessions(); n > 0 {
				logger.Debug("sessions evicted", "count", n)
			}
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
