package agent

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jpcolombo/mayordomo/logging"
	"github.com/jpcolombo/mayordomo/session"
	"github.com/jpcolombo/mayordomo/store"
)

const (
	// historyTurns bounds the conversation turns injected into prompts.
	historyTurns = 6
	// historyContentMax truncates assistant turns to keep prompts small.
	historyContentMax = 150
)

// Options configure agent construction.
type Options struct {
	// Timezone anchors the time context block. Defaults to UTC.
	Timezone *time.Location
	// Clock overrides the time source.
	Clock store.Clock
	// Logger receives agent diagnostics.
	Logger logging.Logger
}

// base carries the fields every agent shares.
type base struct {
	tz     *time.Location
	clock  store.Clock
	logger logging.Logger
}

func newBase(optFns ...func(o *Options)) base {
	opts := Options{Timezone: time.UTC, Clock: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return base{tz: opts.Timezone, clock: opts.Clock, logger: opts.Logger}
}

// timeContext renders the current date/time block injected into every prompt.
func (b base) timeContext() string {
	now := b.clock().In(b.tz)
	return fmt.Sprintf("CURRENT DATE: %s\nCURRENT TIME: %s (Timezone: %s)\n",
		now.Format("2006-01-02 Monday"), now.Format("15:04:05"), b.tz.String())
}

// historyBlock formats recent conversation turns for prompt injection.
// Assistant turns are truncated to keep token usage low.
func historyBlock(turns []session.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}
	var sb strings.Builder
	sb.WriteString("\n--- CONVERSATION HISTORY ---\n")
	sb.WriteString("(Previous turns in this session for context)\n")
	for _, t := range turns {
		content := t.Content
		if t.Role == session.RoleAssistant {
			content = truncate(content, historyContentMax)
		}
		switch t.Role {
		case session.RoleAssistant:
			sb.WriteString("Assistant: " + content + "\n")
		default:
			sb.WriteString("User: " + content + "\n")
		}
	}
	sb.WriteString("--- END CONVERSATION HISTORY ---\n")
	return sb.String()
}

// truncate shortens s to at most max bytes plus an ellipsis, backing up to a
// rune boundary so multi-byte text is never split mid-rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
