package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// EventKind names a timer moment a cue plugin can react to.
type EventKind string

const (
	EventSegment  EventKind = "segment"
	EventComplete EventKind = "complete"
	EventReset    EventKind = "reset"
)

var (
	ErrPluginDisabled   = errors.New("plugin is disabled")
	ErrPluginNotFound   = errors.New("plugin not found")
	ErrChecksumMismatch = errors.New("plugin checksum mismatch")
	ErrPluginTimeout    = errors.New("plugin timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Binary  string      `json:"binary"`
	SHA256  string      `json:"sha256"`
	Enabled bool        `json:"enabled"`
	Events  []EventKind `json:"events"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("plugin events are required")
	}
	seen := map[EventKind]struct{}{}
	for _, kind := range m.Events {
		if err := kind.Validate(); err != nil {
			return err
		}
		if _, ok := seen[kind]; ok {
			return fmt.Errorf("duplicate event: %s", kind)
		}
		seen[kind] = struct{}{}
	}
	return nil
}

func (k EventKind) Validate() error {
	switch k {
	case EventSegment, EventComplete, EventReset:
		return nil
	default:
		return fmt.Errorf("unknown event: %s", k)
	}
}

func (m Manifest) Subscribes(kind EventKind) bool {
	for _, k := range m.Events {
		if k == kind {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name    string
	Version string
	Events  []EventKind
}

// Event is what the host sends to subscribed plugins.
type Event struct {
	Kind         EventKind
	SegmentIndex int
	SegmentLabel string
	CardID       int
	At           time.Time
}

func (e Event) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.Kind == EventSegment && e.SegmentIndex < 0 {
		return fmt.Errorf("segment index must be non-negative")
	}
	return nil
}

type NotifyResult struct {
	Acknowledged bool
	Message      string
}
