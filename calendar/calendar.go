// Package calendar syncs tasks with Google Calendar events. Failures here
// never fail the surrounding task; callers degrade to a spoken warning.
package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/jpcolombo/mayordomo/logging"
)

// defaultEventDuration is used when a task only carries a start time.
const defaultEventDuration = time.Hour

// Options configure a Service.
type Options struct {
	// CalendarID defaults to the account's primary calendar.
	CalendarID string
	// Timezone is attached to event start/end times.
	Timezone *time.Location
	// Logger receives request diagnostics.
	Logger logging.Logger
}

// EventUpdate carries the task fields that affect a calendar event.
type EventUpdate struct {
	Name    string
	DueDate string
}

// Service wraps the Google Calendar events API.
type Service struct {
	events     *calendarapi.EventsService
	calendarID string
	tz         *time.Location
	logger     logging.Logger
}

// NewService builds a Service from an OAuth client credentials file and a
// previously stored token file (the interactive consent flow that produces
// the token lives outside this service).
func NewService(ctx context.Context, credentialsFile, tokenFile string, optFns ...func(o *Options)) (*Service, error) {
	opts := Options{CalendarID: "primary", Timezone: time.UTC, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(creds, calendarapi.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	token, err := readToken(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar token: %w", err)
	}

	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}
	return &Service{
		events:     svc.Events,
		calendarID: opts.CalendarID,
		tz:         opts.Timezone,
		logger:     opts.Logger,
	}, nil
}

// CreateEvent creates an event starting at the given ISO time with the
// default duration and returns the event id.
func (s *Service) CreateEvent(ctx context.Context, summary, startISO, description string) (string, error) {
	start, err := parseEventTime(startISO, s.tz)
	if err != nil {
		return "", err
	}
	event := &calendarapi.Event{
		Summary:     summary,
		Description: description,
		Start:       s.eventTime(start),
		End:         s.eventTime(start.Add(defaultEventDuration)),
	}
	created, err := s.events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create calendar event: %w", err)
	}
	s.logger.Info("calendar event created", "event_id", created.Id, "summary", summary)
	return created.Id, nil
}

// UpdateEvent patches an event's summary and/or start time.
func (s *Service) UpdateEvent(ctx context.Context, eventID string, update EventUpdate) error {
	patch := &calendarapi.Event{}
	if update.Name != "" {
		patch.Summary = update.Name
	}
	if update.DueDate != "" {
		start, err := parseEventTime(update.DueDate, s.tz)
		if err != nil {
			return err
		}
		patch.Start = s.eventTime(start)
		patch.End = s.eventTime(start.Add(defaultEventDuration))
	}
	if _, err := s.events.Patch(s.calendarID, eventID, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.events.Delete(s.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

func (s *Service) eventTime(t time.Time) *calendarapi.EventDateTime {
	return &calendarapi.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: s.tz.String(),
	}
}

// parseEventTime accepts RFC3339 datetimes, naive datetimes (interpreted in
// the local timezone) and bare dates; bare dates start at 09:00 local time,
// matching how spoken all-day reminders behave.
func parseEventTime(value string, tz *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, tz); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event time %q: %w", value, err)
	}
	return t.Add(9 * time.Hour), nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := decodeToken(f, token); err != nil {
		return nil, err
	}
	return token, nil
}
