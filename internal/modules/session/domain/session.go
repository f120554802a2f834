package domain

import "time"

const SchemaVersion = 1

// ActiveSession is the practice run in progress, kept on disk so that a
// restarted app can resume counting.
type ActiveSession struct {
	SessionID   string    `json:"session_id"`
	Title       string    `json:"title"`
	StartedAt   time.Time `json:"started_at"`
	DeckSize    int       `json:"deck_size"`
	UnitSeconds float64   `json:"unit_seconds"`
	Cycles      int       `json:"cycles"`
}

// Session is a finished practice run as written to its note.
type Session struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	StartedAt   time.Time `yaml:"started_at"`
	EndedAt     time.Time `yaml:"ended_at"`
	DurationMin int       `yaml:"duration_minutes"`
	DeckSize    int       `yaml:"deck_size"`
	CardsRead   int       `yaml:"cards_read"`
	Cycles      int       `yaml:"cycles"`
	UnitSeconds float64   `yaml:"unit_seconds"`
	Outcome     string    `yaml:"outcome"`
}

// Note is the frontmatter layout of a session note.
type Note struct {
	SchemaVersion int `yaml:"schema_version"`
	Session       `yaml:",inline"`
}
