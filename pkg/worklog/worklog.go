package worklog

import "time"

// Entry is one line of the work log. It is listed once the local hour
// reaches After.
type Entry struct {
	Text  string
	After int
}

// Log holds the in-progress and finished work shown on the board
type Log struct {
	Active    []Entry
	Completed []Entry
}

// Default returns the standing work log
func Default() *Log {
	return &Log{
		Active: []Entry{
			{Text: "Building Mission Control app (Codex)"},
			{Text: "Reddit intelligence analysis"},
			{Text: "API integrations in progress"},
		},
		Completed: []Entry{
			{Text: "Updated morning brief format", After: 7},
			{Text: "Optimized heartbeat to Haiku", After: 9},
			{Text: "Installed Codex agent", After: 12},
			{Text: "Created GitHub backups", After: 20},
		},
	}
}

// ActiveTasks returns the in-progress entries visible at now
func (l *Log) ActiveTasks(now time.Time) []string {
	return visible(l.Active, now)
}

// CompletedTasks returns the finished entries whose threshold hour has passed
func (l *Log) CompletedTasks(now time.Time) []string {
	return visible(l.Completed, now)
}

func visible(entries []Entry, now time.Time) []string {
	hour := now.Hour()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if hour >= e.After {
			out = append(out, e.Text)
		}
	}
	return out
}
