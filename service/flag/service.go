// Package flag parses the command-line interface into model.Flags.
package flag

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/thirukguru/aws-auditor/model"
)

// NewService creates a new flag service.
func NewService() Service {
	return &service{}
}

// GetParsedFlags parses and returns the command-line flags.
func (s *service) GetParsedFlags() (model.Flags, error) {
	profile := pflag.StringP("profile", "p", "", "AWS profile to use")
	region := pflag.StringP("region", "r", "", "AWS region to use")
	regions := pflag.String("regions", "", "Comma-separated AWS regions to audit")
	partition := pflag.String("partition", "aws", "AWS partition (aws, aws-cn, or aws-us-gov)")
	roleARN := pflag.String("role-arn", "", "IAM role ARN to assume for the audit")
	externalID := pflag.String("external-id", "", "External ID for the role assumption")
	sessionDuration := pflag.Int32("session-duration", 3600, "Assumed role session duration in seconds")
	resourceARNs := pflag.String("resource-arns", "", "Comma-separated resource ARNs to restrict the audit to")
	output := pflag.StringP("output", "o", "table", "Output format (table or json)")
	store := pflag.Bool("store", false, "Persist audit results in local SQLite database")
	dbPath := pflag.String("db-path", "", "Custom SQLite database path (default ~/.aws-auditor/history.db)")
	version := pflag.BoolP("version", "v", false, "Show version information")

	pflag.Parse()

	if *sessionDuration < 900 {
		return model.Flags{}, fmt.Errorf("session duration must be at least 900 seconds, got %d", *sessionDuration)
	}

	flags := model.Flags{
		Profile:         *profile,
		Region:          *region,
		Regions:         splitCommaList(*regions),
		Partition:       *partition,
		RoleARN:         *roleARN,
		ExternalID:      *externalID,
		SessionDuration: *sessionDuration,
		ResourceARNs:    splitCommaList(*resourceARNs),
		Output:          *output,
		Store:           *store,
		DBPath:          *dbPath,
		Version:         *version,
	}

	return flags, nil
}

func splitCommaList(raw string) []string {
	if raw == "" {
		return nil
	}

	var parsed []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			parsed = append(parsed, item)
		}
	}

	return parsed
}
