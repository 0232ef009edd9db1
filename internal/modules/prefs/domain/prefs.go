package domain

import (
	"fmt"
	"strings"
)

type Preset string

const (
	PresetThreatNonThreat Preset = "THREAT_NON_THREAT"
	PresetShootNoShoot    Preset = "SHOOT_NO_SHOOT"
	PresetCustom          Preset = "CUSTOM"
)

func ParsePreset(raw string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	switch p {
	case PresetThreatNonThreat, PresetShootNoShoot, PresetCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown label preset %q", raw)
	}
}

// Labels are the words shown for the two classifications.
type Labels struct {
	Threat    string
	NonThreat string
}

var presetLabels = map[Preset]Labels{
	PresetThreatNonThreat: {Threat: "Threat", NonThreat: "Non-Threat"},
	PresetShootNoShoot:    {Threat: "Shoot", NonThreat: "No-Shoot"},
}

type LabelConfig struct {
	Preset          Preset `yaml:"preset"`
	CustomThreat    string `yaml:"custom_threat,omitempty"`
	CustomNonThreat string `yaml:"custom_non_threat,omitempty"`
}

// Resolve maps the configuration to display labels. Unknown presets fall
// back to Threat/Non-Threat, as do blank custom labels.
func (c LabelConfig) Resolve() Labels {
	def := presetLabels[PresetThreatNonThreat]
	if c.Preset == PresetCustom {
		out := def
		if v := strings.TrimSpace(c.CustomThreat); v != "" {
			out.Threat = v
		}
		if v := strings.TrimSpace(c.CustomNonThreat); v != "" {
			out.NonThreat = v
		}
		return out
	}
	if labels, ok := presetLabels[c.Preset]; ok {
		return labels
	}
	return def
}

// For returns the label for a classification name.
func (l Labels) For(class string) string {
	if class == "THREAT" {
		return l.Threat
	}
	return l.NonThreat
}

const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 30
)

type SessionDefaults struct {
	IncludeVideos   bool `yaml:"include_videos"`
	IncludePhotos   bool `yaml:"include_photos"`
	DurationMinutes int  `yaml:"duration_minutes"`
}

func (d SessionDefaults) Validate() error {
	if !d.IncludeVideos && !d.IncludePhotos {
		return fmt.Errorf("select at least one media type")
	}
	if d.DurationMinutes < MinDurationMinutes || d.DurationMinutes > MaxDurationMinutes {
		return fmt.Errorf("duration must be between %d and %d minutes, got %d", MinDurationMinutes, MaxDurationMinutes, d.DurationMinutes)
	}
	return nil
}

type Prefs struct {
	Labels  LabelConfig     `yaml:"labels"`
	Session SessionDefaults `yaml:"session"`
}

func Default() Prefs {
	return Prefs{
		Labels:  LabelConfig{Preset: PresetThreatNonThreat},
		Session: SessionDefaults{IncludeVideos: true, IncludePhotos: true, DurationMinutes: 1},
	}
}

// Normalize repairs values a hand-edited file may carry.
func (p Prefs) Normalize() Prefs {
	if preset, err := ParsePreset(string(p.Labels.Preset)); err == nil {
		p.Labels.Preset = preset
	} else {
		p.Labels.Preset = PresetThreatNonThreat
	}
	if p.Session.Validate() != nil {
		def := Default().Session
		if !p.Session.IncludeVideos && !p.Session.IncludePhotos {
			p.Session.IncludeVideos, p.Session.IncludePhotos = def.IncludeVideos, def.IncludePhotos
		}
		p.Session.DurationMinutes = min(max(p.Session.DurationMinutes, MinDurationMinutes), MaxDurationMinutes)
	}
	return p
}
