// Package rdsaudit collects RDS inventory across regions.
package rdsaudit

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/scanfilter"
)

// API is the RDS surface the collector needs.
type API interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	DescribeDBClusterSnapshots(ctx context.Context, params *rds.DescribeDBClusterSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBClusterSnapshotsOutput, error)
}

// Instance is one RDS DB instance.
type Instance struct {
	ARN                string
	ID                 string
	Region             string
	Engine             string
	StorageEncrypted   bool
	MultiAZ            bool
	PubliclyAccessible bool
}

// ClusterSnapshot is one RDS cluster snapshot.
type ClusterSnapshot struct {
	ARN              string
	ID               string
	Region           string
	StorageEncrypted bool
}

// Collector gathers DB instances and cluster snapshots, one concurrent
// worker per region per listing operation.
type Collector struct {
	clients map[string]regional.Client[API]
	filter  []string

	mu               sync.Mutex
	Instances        []Instance
	ClusterSnapshots []ClusterSnapshot
}

// New creates an RDS collector over the given regional clients.
func New(clients map[string]regional.Client[API], filter []string) *Collector {
	return &Collector{clients: clients, filter: filter}
}

// Collect runs every listing operation to exhaustion and blocks until all
// regional workers have finished.
func (c *Collector) Collect(ctx context.Context) {
	regional.ForEach(ctx, "rds", c.clients, c.describeDBInstances)
	regional.ForEach(ctx, "rds", c.clients, c.describeClusterSnapshots)
}

func (c *Collector) keep(arn string) bool {
	return len(c.filter) == 0 || scanfilter.IsIncluded(arn, c.filter)
}

func (c *Collector) describeDBInstances(ctx context.Context, rc regional.Client[API]) error {
	paginator := rds.NewDescribeDBInstancesPaginator(rc.API, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, db := range page.DBInstances {
			arn := aws.ToString(db.DBInstanceArn)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.Instances = append(c.Instances, Instance{
				ARN:                arn,
				ID:                 aws.ToString(db.DBInstanceIdentifier),
				Region:             rc.Region,
				Engine:             aws.ToString(db.Engine),
				StorageEncrypted:   aws.ToBool(db.StorageEncrypted),
				MultiAZ:            aws.ToBool(db.MultiAZ),
				PubliclyAccessible: aws.ToBool(db.PubliclyAccessible),
			})
			c.mu.Unlock()
		}
	}
	return nil
}

func (c *Collector) describeClusterSnapshots(ctx context.Context, rc regional.Client[API]) error {
	paginator := rds.NewDescribeDBClusterSnapshotsPaginator(rc.API, &rds.DescribeDBClusterSnapshotsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, snap := range page.DBClusterSnapshots {
			arn := aws.ToString(snap.DBClusterSnapshotArn)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.ClusterSnapshots = append(c.ClusterSnapshots, ClusterSnapshot{
				ARN:              arn,
				ID:               aws.ToString(snap.DBClusterSnapshotIdentifier),
				Region:           rc.Region,
				StorageEncrypted: aws.ToBool(snap.StorageEncrypted),
			})
			c.mu.Unlock()
		}
	}
	return nil
}
