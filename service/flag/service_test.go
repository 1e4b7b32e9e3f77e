package flag

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func resetFlagState(t *testing.T, args []string) func() {
	t.Helper()
	oldCommandLine := pflag.CommandLine
	oldArgs := os.Args
	pflag.CommandLine = pflag.NewFlagSet("test", pflag.ContinueOnError)
	os.Args = append([]string{"aws-auditor"}, args...)
	return func() {
		pflag.CommandLine = oldCommandLine
		os.Args = oldArgs
	}
}

func TestGetParsedFlagsAllOptions(t *testing.T) {
	cleanup := resetFlagState(t, []string{
		"--profile", "prod",
		"--region", "us-east-1",
		"--regions", "us-east-1, us-west-2",
		"--partition", "aws-us-gov",
		"--role-arn", "arn:aws:iam::123456789012:role/Audit",
		"--external-id", "ext-123",
		"--session-duration", "1800",
		"--resource-arns", "arn:aws:lambda:us-east-1:123456789012:function:api, arn:aws:s3:::bucket",
		"--output", "json",
		"--store",
		"--db-path", "/tmp/history.db",
	})
	defer cleanup()

	flags, err := NewService().GetParsedFlags()
	if err != nil {
		t.Fatalf("GetParsedFlags failed: %v", err)
	}

	if flags.Profile != "prod" {
		t.Errorf("Profile = %q, want prod", flags.Profile)
	}
	if flags.Region != "us-east-1" {
		t.Errorf("Region = %q, want us-east-1", flags.Region)
	}
	if len(flags.Regions) != 2 || flags.Regions[0] != "us-east-1" || flags.Regions[1] != "us-west-2" {
		t.Errorf("Regions = %v, want [us-east-1 us-west-2]", flags.Regions)
	}
	if flags.Partition != "aws-us-gov" {
		t.Errorf("Partition = %q, want aws-us-gov", flags.Partition)
	}
	if flags.RoleARN != "arn:aws:iam::123456789012:role/Audit" {
		t.Errorf("RoleARN = %q", flags.RoleARN)
	}
	if flags.ExternalID != "ext-123" {
		t.Errorf("ExternalID = %q, want ext-123", flags.ExternalID)
	}
	if flags.SessionDuration != 1800 {
		t.Errorf("SessionDuration = %d, want 1800", flags.SessionDuration)
	}
	if len(flags.ResourceARNs) != 2 || flags.ResourceARNs[1] != "arn:aws:s3:::bucket" {
		t.Errorf("ResourceARNs = %v", flags.ResourceARNs)
	}
	if flags.Output != "json" {
		t.Errorf("Output = %q, want json", flags.Output)
	}
	if !flags.Store {
		t.Error("Store = false, want true")
	}
	if flags.DBPath != "/tmp/history.db" {
		t.Errorf("DBPath = %q", flags.DBPath)
	}
}

func TestGetParsedFlagsDefaults(t *testing.T) {
	cleanup := resetFlagState(t, nil)
	defer cleanup()

	flags, err := NewService().GetParsedFlags()
	if err != nil {
		t.Fatalf("GetParsedFlags failed: %v", err)
	}

	if flags.Partition != "aws" {
		t.Errorf("Partition = %q, want aws", flags.Partition)
	}
	if flags.SessionDuration != 3600 {
		t.Errorf("SessionDuration = %d, want 3600", flags.SessionDuration)
	}
	if flags.Output != "table" {
		t.Errorf("Output = %q, want table", flags.Output)
	}
	if flags.Regions != nil {
		t.Errorf("Regions = %v, want nil", flags.Regions)
	}
	if flags.Store || flags.Version {
		t.Error("boolean flags should default to false")
	}
}

func TestGetParsedFlagsRejectsShortSessionDuration(t *testing.T) {
	cleanup := resetFlagState(t, []string{"--session-duration", "60"})
	defer cleanup()

	if _, err := NewService().GetParsedFlags(); err == nil {
		t.Fatal("expected error for session duration below 900 seconds")
	}
}
