package model

// Flags represents the command line flags.
type Flags struct {
	Profile         string
	Region          string
	Regions         []string
	Partition       string
	RoleARN         string
	ExternalID      string
	SessionDuration int32
	ResourceARNs    []string
	Output          string
	Store           bool
	DBPath          string
	Version         bool
}
