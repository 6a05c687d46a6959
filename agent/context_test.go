package agent

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jpcolombo/mayordomo/session"
)

func TestTimeContext(t *testing.T) {
	tz, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)

	b := newBase(func(o *Options) {
		o.Timezone = tz
		o.Clock = func() time.Time { return at }
	})

	got := b.timeContext()

	assert.Contains(t, got, "CURRENT DATE: 2026-03-14 Saturday")
	assert.Contains(t, got, "CURRENT TIME: 15:30:00")
	assert.Contains(t, got, "America/Bogota")
}

func TestHistoryBlockEmpty(t *testing.T) {
	assert.Empty(t, historyBlock(nil))
}

func TestHistoryBlockFormats(t *testing.T) {
	got := historyBlock([]session.Turn{
		{Role: session.RoleUser, Content: "crea una tarea"},
		{Role: session.RoleAssistant, Content: "Listo, la creé."},
	})

	assert.Contains(t, got, "User: crea una tarea")
	assert.Contains(t, got, "Assistant: Listo, la creé.")
	assert.Contains(t, got, "CONVERSATION HISTORY")
}

func TestHistoryBlockTruncatesAssistant(t *testing.T) {
	long := strings.Repeat("a", historyContentMax+50)

	got := historyBlock([]session.Turn{
		{Role: session.RoleAssistant, Content: long},
		{Role: session.RoleUser, Content: long},
	})

	assert.Contains(t, got, "Assistant: "+long[:historyContentMax]+"...")
	// User turns are never truncated.
	assert.Contains(t, got, "User: "+long)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	// One leading ASCII byte shifts every two-byte rune onto an odd offset,
	// so a byte-index cut at historyContentMax would land mid-rune.
	long := "x" + strings.Repeat("ó", historyContentMax)

	got := truncate(long, historyContentMax)

	assert.True(t, utf8.ValidString(got), "truncated text must stay valid UTF-8")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), historyContentMax+len("..."))
}

func TestTruncateShortStringUntouched(t *testing.T) {
	assert.Equal(t, "hola", truncate("hola", historyContentMax))
}

func TestHistoryBlockTruncationIsValidUTF8(t *testing.T) {
	long := "x" + strings.Repeat("ñ", historyContentMax)

	got := historyBlock([]session.Turn{
		{Role: session.RoleAssistant, Content: long},
	})

	assert.True(t, utf8.ValidString(got))
}

func TestHistoryBlockWindow(t *testing.T) {
	var turns []session.Turn
	for i := 0; i < historyTurns+3; i++ {
		turns = append(turns, session.Turn{Role: session.RoleUser, Content: string(rune('a' + i))})
	}

	got := historyBlock(turns)

	assert.NotContains(t, got, "User: a\n")
	assert.Contains(t, got, "User: d\n")
}
