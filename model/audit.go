package model

// AssumedRoleDescriptor describes the role assumption used to enter the audited
// account. It is present only when the audit runs under an assumed role.
type AssumedRoleDescriptor struct {
	RoleARN         string
	ExternalID      string
	DurationSeconds int32
}

// AuditIdentity is the immutable description of who is being audited and how.
// It is constructed once from the CLI flags and never mutated afterwards.
type AuditIdentity struct {
	AccountID     string
	Partition     string
	Profile       string
	ProfileRegion string
	// Regions is the caller-supplied allow-list. Empty means all regions the
	// service supports in the partition.
	Regions []string
	// ResourceARNs narrows the audit to specific resources. Empty means no
	// narrowing.
	ResourceARNs []string
	AssumedRole  *AssumedRoleDescriptor
}
