package model

// Finding is a single check result attributed to a resource and region.
type Finding struct {
	Check          string
	Service        string
	Severity       string
	Region         string
	ResourceARN    string
	ResourceID     string
	Description    string
	Recommendation string
}
