package dto

type LabelsOutput struct {
	Preset          string
	CustomThreat    string
	CustomNonThreat string
	Threat          string
	NonThreat       string
}

type SetLabelsInput struct {
	Preset          string
	CustomThreat    string
	CustomNonThreat string
}

type SessionDefaults struct {
	IncludeVideos   bool
	IncludePhotos   bool
	DurationMinutes int
}

type PrefsOutput struct {
	Labels  LabelsOutput
	Session SessionDefaults
}
