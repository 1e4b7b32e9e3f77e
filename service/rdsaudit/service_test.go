package rdsaudit

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/thirukguru/aws-auditor/service/regional"
)

type fakeRDSAPI struct {
	instancePages [][]rdstypes.DBInstance
	snapshots     []rdstypes.DBClusterSnapshot
	instanceCalls int
}

func (f *fakeRDSAPI) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	page := f.instanceCalls
	f.instanceCalls++
	out := &rds.DescribeDBInstancesOutput{}
	if page < len(f.instancePages) {
		out.DBInstances = f.instancePages[page]
	}
	if page+1 < len(f.instancePages) {
		out.Marker = aws.String("next")
	}
	return out, nil
}

func (f *fakeRDSAPI) DescribeDBClusterSnapshots(ctx context.Context, params *rds.DescribeDBClusterSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBClusterSnapshotsOutput, error) {
	return &rds.DescribeDBClusterSnapshotsOutput{DBClusterSnapshots: f.snapshots}, nil
}

func dbInstance(arn, id string, encrypted, multiAZ, public bool) rdstypes.DBInstance {
	return rdstypes.DBInstance{
		DBInstanceArn:        aws.String(arn),
		DBInstanceIdentifier: aws.String(id),
		Engine:               aws.String("postgres"),
		StorageEncrypted:     aws.Bool(encrypted),
		MultiAZ:              aws.Bool(multiAZ),
		PubliclyAccessible:   aws.Bool(public),
	}
}

func TestCollectInstancesAndSnapshots(t *testing.T) {
	api := &fakeRDSAPI{
		instancePages: [][]rdstypes.DBInstance{
			{dbInstance("arn:aws:rds:eu-west-1:123456789012:db:a", "a", true, true, false)},
			{dbInstance("arn:aws:rds:eu-west-1:123456789012:db:b", "b", false, false, true)},
		},
		snapshots: []rdstypes.DBClusterSnapshot{{
			DBClusterSnapshotArn:        aws.String("arn:aws:rds:eu-west-1:123456789012:cluster-snapshot:s"),
			DBClusterSnapshotIdentifier: aws.String("s"),
			StorageEncrypted:            aws.Bool(false),
		}},
	}
	clients := map[string]regional.Client[API]{
		"eu-west-1": {Region: "eu-west-1", API: api},
	}

	c := New(clients, nil)
	c.Collect(context.Background())

	if len(c.Instances) != 2 {
		t.Fatalf("expected 2 instances across pages, got %d", len(c.Instances))
	}
	if len(c.ClusterSnapshots) != 1 {
		t.Fatalf("expected 1 cluster snapshot, got %d", len(c.ClusterSnapshots))
	}
	if c.Instances[0].Region != "eu-west-1" || c.ClusterSnapshots[0].Region != "eu-west-1" {
		t.Fatal("records must carry their client's region")
	}
}

func TestCollectAppliesResourceFilter(t *testing.T) {
	api := &fakeRDSAPI{
		instancePages: [][]rdstypes.DBInstance{{
			dbInstance("arn:aws:rds:eu-west-1:123456789012:db:keep", "keep", true, true, false),
			dbInstance("arn:aws:rds:eu-west-1:123456789012:db:drop", "drop", true, true, false),
		}},
	}
	clients := map[string]regional.Client[API]{
		"eu-west-1": {Region: "eu-west-1", API: api},
	}

	c := New(clients, []string{"arn:aws:rds:eu-west-1:123456789012:db:keep"})
	c.Collect(context.Background())

	if len(c.Instances) != 1 || c.Instances[0].ID != "keep" {
		t.Fatalf("expected only the filtered instance, got %+v", c.Instances)
	}
}

func TestInstanceChecks(t *testing.T) {
	c := New(nil, nil)
	c.Instances = []Instance{
		{ARN: "arn:bad", ID: "bad", Region: "us-east-1", StorageEncrypted: false, MultiAZ: false, PubliclyAccessible: true},
		{ARN: "arn:good", ID: "good", Region: "us-east-1", StorageEncrypted: true, MultiAZ: true, PubliclyAccessible: false},
	}

	findings := c.RunChecks([]string{
		"rds_instance_storage_encrypted",
		"rds_instance_multi_az",
		"rds_instance_no_public_access",
	})

	if len(findings) != 3 {
		t.Fatalf("expected 3 findings for the bad instance, got %+v", findings)
	}
	for _, f := range findings {
		if f.ResourceID != "bad" {
			t.Fatalf("unexpected resource in finding: %+v", f)
		}
	}
}

func TestPublicAccessSeverity(t *testing.T) {
	c := New(nil, nil)
	c.Instances = []Instance{{ARN: "arn:bad", ID: "bad", Region: "us-east-1", StorageEncrypted: true, MultiAZ: true, PubliclyAccessible: true}}

	findings := c.RunChecks([]string{"rds_instance_no_public_access"})
	if len(findings) != 1 || findings[0].Severity != SeverityCritical {
		t.Fatalf("expected one critical finding, got %+v", findings)
	}
}

func TestSnapshotsEncryptedCheck(t *testing.T) {
	c := New(nil, nil)
	c.ClusterSnapshots = []ClusterSnapshot{
		{ARN: "arn:plain", ID: "plain", Region: "us-east-1", StorageEncrypted: false},
		{ARN: "arn:enc", ID: "enc", Region: "us-east-1", StorageEncrypted: true},
	}

	findings := c.RunChecks([]string{"rds_snapshots_encrypted"})
	if len(findings) != 1 || findings[0].ResourceID != "plain" {
		t.Fatalf("expected only the unencrypted snapshot, got %+v", findings)
	}
}
