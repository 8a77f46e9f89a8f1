package notesmeta

import (
	"alcyxob/fitness-tracker/internal/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestCompose_KnownPayload(t *testing.T) {
	notes, err := Compose(domain.CompletionMetadata{
		ExercisesCompleted: intp(8),
		TotalExercises:     intp(10),
		Duration:           intp(45),
		UserNotes:          "Great!",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(notes,
		`[DATA:{"exercisesCompleted":8,"totalExercises":10,"duration":45,"userNotes":"Great!"}]`))
	assert.True(t, strings.HasPrefix(notes, "Completed 8/10 exercises\nDuration: 45 minutes\nGreat!\n\n"))
	assert.Equal(t, 1, strings.Count(notes, sentinelOpen))
}

func TestComposeExtract_RoundTrip(t *testing.T) {
	cases := []domain.CompletionMetadata{
		{},
		{ExercisesCompleted: intp(0), TotalExercises: intp(0)},
		{Duration: intp(30)},
		{ExercisesCompleted: intp(3), UserNotes: "knee felt <ok> & stable"},
		{UserNotes: "quotes \" and ] brackets [DATA:{}] inside"},
		{ExercisesCompleted: intp(5), TotalExercises: intp(6), Duration: intp(50), UserNotes: "line one\nline two"},
	}

	for _, m := range cases {
		notes, err := Compose(m)
		require.NoError(t, err)

		got, ok := Extract(notes)
		require.True(t, ok, "notes: %q", notes)
		assert.Equal(t, m, *got)
	}
}

func TestComposeExtract_InvalidUTF8(t *testing.T) {
	m := domain.CompletionMetadata{Duration: intp(20), UserNotes: "ok\xff"}

	notes, err := Compose(m)
	require.NoError(t, err)
	got, ok := Extract(notes)
	require.True(t, ok)

	assert.Equal(t, Sanitize(m), *got)
	assert.Equal(t, "ok\uFFFD", got.UserNotes)

	// Sanitizing first makes the round trip exact.
	clean := Sanitize(m)
	notes, err = Compose(clean)
	require.NoError(t, err)
	got, ok = Extract(notes)
	require.True(t, ok)
	assert.Equal(t, clean, *got)
}

func TestExtract_NoSentinel(t *testing.T) {
	for _, notes := range []string{
		"",
		"felt great today",
		"[DATA:not json]",
		"[DATA:{\"duration\":45}] trailing text",
		"[DATA:{\"duration\":45}",
	} {
		m, ok := Extract(notes)
		assert.False(t, ok, notes)
		assert.Nil(t, m, notes)
	}
}

func TestExtract_ToleratesTrailingWhitespace(t *testing.T) {
	m, ok := Extract("old record\n[DATA:{\"duration\":20}]\n  ")
	require.True(t, ok)
	require.NotNil(t, m.Duration)
	assert.Equal(t, 20, *m.Duration)
}

func TestStrip(t *testing.T) {
	notes, err := Compose(domain.CompletionMetadata{Duration: intp(12), UserNotes: "short one"})
	require.NoError(t, err)

	assert.Equal(t, "Duration: 12 minutes\nshort one", Strip(notes))
	assert.Equal(t, "legacy note", Strip("legacy note"))
}
