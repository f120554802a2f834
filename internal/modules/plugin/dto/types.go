package dto

import "time"

type PluginInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Events  []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

// EventInput describes a timer moment. Kind is one of segment, complete or reset.
type EventInput struct {
	Kind         string
	SegmentIndex int
	SegmentLabel string
	CardID       int
	At           time.Time
}

type DispatchResult struct {
	Name         string
	Acknowledged bool
	Message      string
	Error        string
}
