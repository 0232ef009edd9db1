package dto

import "time"

type EligibleInput struct {
	IncludeVideos bool
	IncludePhotos bool
}

type ItemOutput struct {
	Location string
	Kind     string
	Class    string
}

type GalleryInput struct {
	Kind     string
	Class    string
	Source   string
	Excluded *bool
	Query    string
}

type EntryOutput struct {
	Location      string
	Name          string
	Kind          string
	Class         string
	OriginalClass string
	Source        string
	Excluded      bool
	Overridden    bool
}

type GalleryOutput struct {
	Entries  []EntryOutput
	Total    int
	Videos   int
	Photos   int
	Threat   int
	Excluded int
	User     int
}

type ScanOutput struct {
	ManifestPath string
	GeneratedAt  time.Time
	Videos       int
	Photos       int
}

type ImportInput struct {
	Name  string
	Data  []byte
	Kind  string
	Class string
}

type SetExcludedInput struct {
	Locations []string
	Excluded  bool
}

// SetClassInput reclassifies items. An empty Class removes the override.
type SetClassInput struct {
	Locations []string
	Class     string
}
