package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Segment describes one slice of the practice cycle as configured by the user.
type Segment struct {
	Label  string  `yaml:"label"`
	Weight float64 `yaml:"weight"`
	Color  string  `yaml:"color"`
}

// Settings holds user-authored preferences read from settings.yaml.
type Settings struct {
	Segments       []Segment `yaml:"segments"`
	UnitSeconds    float64   `yaml:"unit_seconds"`
	MinUnitSeconds float64   `yaml:"min_unit_seconds"`
	FrameRate      int       `yaml:"frame_rate"`
	CardsFile      string    `yaml:"cards_file,omitempty"`
	LogLevel       string    `yaml:"log_level"`
}

var defaultPalette = []string{"#22c55e", "#f59e0b", "#3b82f6", "#ef4444"}

// DefaultSettings mirrors a classic reading rhythm: lower verse, afterglow,
// interval, upper verse.
func DefaultSettings() Settings {
	return Settings{
		Segments: []Segment{
			{Label: "下の句", Weight: 5, Color: defaultPalette[0]},
			{Label: "余韻", Weight: 3, Color: defaultPalette[1]},
			{Label: "間合い", Weight: 1, Color: defaultPalette[2]},
			{Label: "上の句", Weight: 6, Color: defaultPalette[3]},
		},
		UnitSeconds:    1.0,
		MinUnitSeconds: 0.1,
		FrameRate:      60,
		LogLevel:       "info",
	}
}

// LoadSettings reads settings from path. A missing file yields defaults.
// Segment weights are passed through untouched so that an invalid cycle is
// reported where the segment model gets built.
func LoadSettings(fs afero.Fs, path string) (Settings, error) {
	settings := DefaultSettings()
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData Settings
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	applyFileSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes settings to path, creating parent directories.
func SaveSettings(fs afero.Fs, path string, settings Settings) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	serialized, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := afero.WriteFile(fs, path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func applyFileSettings(settings *Settings, fileData Settings) {
	if len(fileData.Segments) > 0 {
		segments := make([]Segment, len(fileData.Segments))
		for i, segment := range fileData.Segments {
			if segment.Label == "" {
				segment.Label = fmt.Sprintf("segment %d", i+1)
			}
			if segment.Color == "" {
				segment.Color = defaultPalette[i%len(defaultPalette)]
			}
			segments[i] = segment
		}
		settings.Segments = segments
	}
	if positiveFinite(fileData.MinUnitSeconds) {
		settings.MinUnitSeconds = fileData.MinUnitSeconds
	}
	if positiveFinite(fileData.UnitSeconds) {
		settings.UnitSeconds = fileData.UnitSeconds
	}
	if fileData.FrameRate > 0 && fileData.FrameRate <= 240 {
		settings.FrameRate = fileData.FrameRate
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	settings.CardsFile = fileData.CardsFile
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (s Settings) Weights() []float64 {
	out := make([]float64, len(s.Segments))
	for i, segment := range s.Segments {
		out[i] = segment.Weight
	}
	return out
}

func (s Settings) Labels() []string {
	out := make([]string, len(s.Segments))
	for i, segment := range s.Segments {
		out[i] = segment.Label
	}
	return out
}

func (s Settings) Colors() []string {
	out := make([]string, len(s.Segments))
	for i, segment := range s.Segments {
		out[i] = segment.Color
	}
	return out
}

// FrameInterval is the delay between two timer frames.
func (s Settings) FrameInterval() time.Duration {
	rate := s.FrameRate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}
