// Package notesmeta embeds completion metadata in a free-text notes field.
//
// Composed notes look like
//
//	Completed 8/10 exercises
//	Duration: 45 minutes
//	Great!
//
//	[DATA:{"exercisesCompleted":8,"totalExercises":10,"duration":45,"userNotes":"Great!"}]
//
// The trailing [DATA:...] block is read back by Extract. Its JSON shape is
// stored in historical records, so field names and order must stay as they are.
// JSON carries only valid UTF-8, so Compose replaces invalid bytes in
// UserNotes with U+FFFD; Extract returns the sanitized text.
package notesmeta

import (
	"alcyxob/fitness-tracker/internal/domain"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	sentinelOpen  = "[DATA:"
	sentinelClose = "]"
)

// Encode returns the compact JSON form of m.
func Encode(m domain.CompletionMetadata) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("encode completion metadata: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Sanitize returns m with invalid UTF-8 in UserNotes replaced by U+FFFD,
// which is what a composed sentinel decodes back to.
func Sanitize(m domain.CompletionMetadata) domain.CompletionMetadata {
	m.UserNotes = strings.ToValidUTF8(m.UserNotes, "\uFFFD")
	return m
}

// Summary renders the human readable lines that precede the sentinel.
func Summary(m domain.CompletionMetadata) string {
	var lines []string
	switch {
	case m.ExercisesCompleted != nil && m.TotalExercises != nil:
		lines = append(lines, fmt.Sprintf("Completed %d/%d exercises", *m.ExercisesCompleted, *m.TotalExercises))
	case m.ExercisesCompleted != nil:
		lines = append(lines, fmt.Sprintf("Completed %d exercises", *m.ExercisesCompleted))
	}
	if m.Duration != nil {
		lines = append(lines, fmt.Sprintf("Duration: %d minutes", *m.Duration))
	}
	if notes := strings.TrimSpace(m.UserNotes); notes != "" {
		lines = append(lines, notes)
	}
	return strings.Join(lines, "\n")
}

// Compose builds the notes string: summary, blank line, then exactly one
// sentinel at the very end.
func Compose(m domain.CompletionMetadata) (string, error) {
	m = Sanitize(m)
	payload, err := Encode(m)
	if err != nil {
		return "", err
	}
	sentinel := sentinelOpen + payload + sentinelClose
	if summary := Summary(m); summary != "" {
		return summary + "\n\n" + sentinel, nil
	}
	return sentinel, nil
}

// Extract decodes the trailing sentinel of notes. ok is false when notes
// carry no sentinel or an unreadable one; that is normal for older records.
func Extract(notes string) (m *domain.CompletionMetadata, ok bool) {
	_, m, ok = split(notes)
	return m, ok
}

// Strip returns notes without the trailing sentinel, or notes unchanged when
// there is none.
func Strip(notes string) string {
	text, _, ok := split(notes)
	if !ok {
		return notes
	}
	return text
}

func split(notes string) (string, *domain.CompletionMetadata, bool) {
	s := strings.TrimRight(notes, " \t\r\n")
	if !strings.HasSuffix(s, sentinelClose) {
		return "", nil, false
	}
	body := s[:len(s)-len(sentinelClose)]

	// User text may itself contain "[DATA:", so walk candidates from the right
	// and take the first one whose remainder is a JSON object.
	for end := len(body); end > 0; {
		i := strings.LastIndex(body[:end], sentinelOpen)
		if i < 0 {
			break
		}
		payload := body[i+len(sentinelOpen):]
		if strings.HasPrefix(payload, "{") && json.Valid([]byte(payload)) {
			var m domain.CompletionMetadata
			if err := json.Unmarshal([]byte(payload), &m); err == nil {
				return strings.TrimRight(body[:i], " \t\r\n"), &m, true
			}
		}
		end = i
	}
	return "", nil, false
}
