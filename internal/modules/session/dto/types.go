package dto

import "time"

type StartInput struct {
	Title       string
	DeckSize    int
	UnitSeconds float64
}

type StartOutput struct {
	SessionID string
	StartedAt time.Time
}

type EndInput struct {
	SessionID string
	Outcome   string
	CardsRead int
}

type EndOutput struct {
	SessionID   string
	Path        string
	DurationMin int
	CardsRead   int
	Cycles      int
}

type ActiveSessionOutput struct {
	SessionID   string
	Title       string
	StartedAt   time.Time
	DeckSize    int
	UnitSeconds float64
	Cycles      int
}

type SessionOutput struct {
	SessionID   string
	Title       string
	StartedAt   time.Time
	DurationMin int
	CardsRead   int
	Cycles      int
	UnitSeconds float64
	Outcome     string
}
