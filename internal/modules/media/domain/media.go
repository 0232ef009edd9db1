package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

type Kind string

const (
	KindVideo Kind = "VIDEO"
	KindPhoto Kind = "PHOTO"
)

func (k Kind) Validate() error {
	switch k {
	case KindVideo, KindPhoto:
		return nil
	default:
		return fmt.Errorf("invalid media kind: %q", k)
	}
}

// ParseKind accepts the canonical names and the directory names used in the
// media root.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "VIDEO", "VIDEOS":
		return KindVideo, nil
	case "PHOTO", "PHOTOS":
		return KindPhoto, nil
	default:
		return "", fmt.Errorf("invalid media kind: %q", raw)
	}
}

// Dir is the media root subdirectory holding items of this kind.
func (k Kind) Dir() string {
	if k == KindVideo {
		return "videos"
	}
	return "photos"
}

type Classification string

const (
	Threat    Classification = "THREAT"
	NonThreat Classification = "NON_THREAT"
)

func (c Classification) Validate() error {
	switch c {
	case Threat, NonThreat:
		return nil
	default:
		return fmt.Errorf("invalid classification: %q", c)
	}
}

func ParseClassification(raw string) (Classification, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	switch Classification(norm) {
	case Threat, NonThreat:
		return Classification(norm), nil
	default:
		return "", fmt.Errorf("invalid classification: %q", raw)
	}
}

func (c Classification) Dir() string {
	if c == Threat {
		return "threat"
	}
	return "non_threat"
}

type Source string

const (
	SourceBuiltIn Source = "BUILT_IN"
	SourceUser    Source = "USER"
)

const UserScheme = "user://"

func UserLocation(id string) string {
	return UserScheme + id
}

// UserID extracts the id from a user media location.
func UserID(location string) (string, bool) {
	id, ok := strings.CutPrefix(location, UserScheme)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func SourceOf(location string) Source {
	if strings.HasPrefix(location, UserScheme) {
		return SourceUser
	}
	return SourceBuiltIn
}

var (
	videoExtensions = map[string]struct{}{".mp4": {}, ".webm": {}}
	photoExtensions = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {}}
)

// Accepts reports whether name has a supported extension for the kind.
// Matching is case-insensitive.
func (k Kind) Accepts(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	switch k {
	case KindVideo:
		_, ok := videoExtensions[ext]
		return ok
	case KindPhoto:
		_, ok := photoExtensions[ext]
		return ok
	default:
		return false
	}
}

// KindFor guesses the kind from a file name.
func KindFor(name string) (Kind, bool) {
	switch {
	case KindVideo.Accepts(name):
		return KindVideo, true
	case KindPhoto.Accepts(name):
		return KindPhoto, true
	default:
		return "", false
	}
}

// Item is one catalog entry with its ground-truth classification.
type Item struct {
	Location string         `yaml:"location"`
	Name     string         `yaml:"name"`
	Kind     Kind           `yaml:"kind"`
	Class    Classification `yaml:"class"`
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Location) == "" {
		return fmt.Errorf("location is required")
	}
	if err := i.Kind.Validate(); err != nil {
		return err
	}
	return i.Class.Validate()
}

// BuiltInLocation is the location of a file under the media root.
func BuiltInLocation(kind Kind, class Classification, name string) string {
	return "/" + path.Join(kind.Dir(), class.Dir(), name)
}

// Manifest is the persisted result of a media root scan.
type Manifest struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Root        string    `yaml:"root"`
	Items       []Item    `yaml:"items"`
}

// UserMedia is an imported file kept in the document store.
type UserMedia struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Kind       Kind           `json:"kind"`
	Class      Classification `json:"class"`
	Size       int64          `json:"size"`
	ImportedAt time.Time      `json:"imported_at"`
}

func (u UserMedia) Location() string { return UserLocation(u.ID) }

func (u UserMedia) Item() Item {
	return Item{Location: u.Location(), Name: u.Name, Kind: u.Kind, Class: u.Class}
}

func (u UserMedia) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user media id is required")
	}
	if err := u.Kind.Validate(); err != nil {
		return err
	}
	if err := u.Class.Validate(); err != nil {
		return err
	}
	if !u.Kind.Accepts(u.Name) {
		return fmt.Errorf("%q is not a supported %s file", u.Name, strings.ToLower(string(u.Kind)))
	}
	return nil
}
