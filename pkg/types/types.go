package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Level is the severity of a single health check, ordered ok < warning < issue
type Level string

const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelIssue   Level = "issue"
)

// Severity returns the position of the level on the severity scale.
// Unknown levels rank above issue so they are never hidden.
func (l Level) Severity() int {
	switch l {
	case LevelOK:
		return 0
	case LevelWarning:
		return 1
	case LevelIssue:
		return 2
	default:
		return 3
	}
}

// Worse reports whether l is more severe than other
func (l Level) Worse(other Level) bool {
	return l.Severity() > other.Severity()
}

// Valid reports whether l is one of the three known levels
func (l Level) Valid() bool {
	return l == LevelOK || l == LevelWarning || l == LevelIssue
}

// String implements fmt.Stringer
func (l Level) String() string {
	return string(l)
}

// HealthRecord is one line of the health column
type HealthRecord struct {
	ServiceName string `json:"serviceName"`
	Level       Level  `json:"level"`
}

// Automation is a scheduled job with its human-readable next-run label
type Automation struct {
	Name         string `json:"name"`
	NextRunLabel string `json:"nextRunLabel"`
}

// MaxAutomations caps the automations list of a snapshot
const MaxAutomations = 8

// StatusSnapshot is one complete status payload produced by the aggregator
type StatusSnapshot struct {
	GeneratedAt    time.Time      `json:"generatedAt"`
	Automations    []Automation   `json:"automations"`
	ActiveTasks    []string       `json:"activeTasks"`
	CompletedTasks []string       `json:"completedTasks"`
	HealthChecks   []HealthRecord `json:"healthChecks"`
	Notes          Notes          `json:"notes"`
}

// WorstLevel returns the most severe level across all health checks,
// or LevelOK when there are none
func (s *StatusSnapshot) WorstLevel() Level {
	worst := LevelOK
	for _, rec := range s.HealthChecks {
		if rec.Level.Worse(worst) {
			worst = rec.Level
		}
	}
	return worst
}

// Note is a single key/value entry of Notes
type Note struct {
	Key   string
	Value string
}

// Notes maps short keys to human-readable strings and keeps insertion order.
// It encodes as a JSON object whose members appear in insertion order.
type Notes struct {
	entries []Note
}

// Set adds or replaces a note. Replacing keeps the original position.
func (n *Notes) Set(key, value string) {
	for i := range n.entries {
		if n.entries[i].Key == key {
			n.entries[i].Value = value
			return
		}
	}
	n.entries = append(n.entries, Note{Key: key, Value: value})
}

// Get returns the note stored under key
func (n Notes) Get(key string) (string, bool) {
	for _, e := range n.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Len returns the number of notes
func (n Notes) Len() int {
	return len(n.entries)
}

// Keys returns the keys in insertion order
func (n Notes) Keys() []string {
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the notes in insertion order
func (n Notes) Entries() []Note {
	out := make([]Note, len(n.entries))
	copy(out, n.entries)
	return out
}

// MarshalJSON encodes the notes as an object in insertion order
func (n Notes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range n.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping member order
func (n *Notes) UnmarshalJSON(data []byte) error {
	n.entries = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("notes: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("notes: expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("notes: value for %q: %w", key, err)
		}
		n.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
