// Package dnsaudit collects Route 53 hosted zone inventory. Route 53 is a
// global service; the factory hands this collector a single regional client.
package dnsaudit

import (
	"context"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/scanfilter"
)

// API is the Route 53 surface the collector needs.
type API interface {
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ListQueryLoggingConfigs(ctx context.Context, params *route53.ListQueryLoggingConfigsInput, optFns ...func(*route53.Options)) (*route53.ListQueryLoggingConfigsOutput, error)
}

// HostedZone is one Route 53 hosted zone. Region records the representative
// region that produced it; hosted zone ARNs themselves carry none.
type HostedZone struct {
	ARN          string
	ID           string
	Name         string
	Region       string
	PrivateZone  bool
	QueryLogging bool
}

// Collector gathers hosted zones and their query logging state.
type Collector struct {
	clients map[string]regional.Client[API]
	filter  []string

	mu          sync.Mutex
	HostedZones []HostedZone
}

// New creates a Route 53 collector over the given regional clients.
func New(clients map[string]regional.Client[API], filter []string) *Collector {
	return &Collector{clients: clients, filter: filter}
}

// Collect lists hosted zones and blocks until the worker has finished.
func (c *Collector) Collect(ctx context.Context) {
	regional.ForEach(ctx, "route53", c.clients, c.listHostedZones)
}

func (c *Collector) keep(arn string) bool {
	return len(c.filter) == 0 || scanfilter.IsIncluded(arn, c.filter)
}

func (c *Collector) listHostedZones(ctx context.Context, rc regional.Client[API]) error {
	logged, err := queryLoggedZones(ctx, rc.API)
	if err != nil {
		return err
	}

	paginator := route53.NewListHostedZonesPaginator(rc.API, &route53.ListHostedZonesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, zone := range page.HostedZones {
			id := strings.TrimPrefix(aws.ToString(zone.Id), "/hostedzone/")
			arn := "arn:aws:route53:::hostedzone/" + id
			if !c.keep(arn) {
				continue
			}
			private := false
			if zone.Config != nil {
				private = zone.Config.PrivateZone
			}
			c.mu.Lock()
			c.HostedZones = append(c.HostedZones, HostedZone{
				ARN:          arn,
				ID:           id,
				Name:         aws.ToString(zone.Name),
				Region:       rc.Region,
				PrivateZone:  private,
				QueryLogging: logged[id],
			})
			c.mu.Unlock()
		}
	}
	return nil
}

func queryLoggedZones(ctx context.Context, api API) (map[string]bool, error) {
	logged := map[string]bool{}
	paginator := route53.NewListQueryLoggingConfigsPaginator(api, &route53.ListQueryLoggingConfigsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, cfg := range page.QueryLoggingConfigs {
			logged[aws.ToString(cfg.HostedZoneId)] = true
		}
	}
	return logged, nil
}
