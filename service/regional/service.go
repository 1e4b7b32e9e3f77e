// Package regional turns a session into per-region service clients.
package regional

import (
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/thirukguru/aws-auditor/model"
)

// Client binds one provider client to exactly one region. Region is fixed at
// construction and never mutated; collectors borrow the client and attribute
// every record they produce to this region.
type Client[T any] struct {
	Region string
	API    T
}

// RegionCatalog is the (service, partition) -> regions lookup the factory
// consults.
type RegionCatalog interface {
	Regions(service, partition string) ([]string, bool)
}

// BuildFunc instantiates a service client from a region-bound config.
type BuildFunc[T any] func(cfg aws.Config) (T, error)

// BuildClients returns one client per effective region for the service.
// Effective regions are the catalog regions intersected with the identity's
// allow-list when one is given. Global services collapse to a single region,
// preferring the profile region when it is in the effective set. A build
// failure for one region is logged and skipped; partial availability is
// expected (for example opt-in regions that were never activated) and must
// not abort the other regions.
func BuildClients[T any](cfg aws.Config, cat RegionCatalog, identity model.AuditIdentity, service string, global bool, build BuildFunc[T]) map[string]Client[T] {
	regions := effectiveRegions(cat, identity, service)
	if global && len(regions) > 0 {
		if slices.Contains(regions, identity.ProfileRegion) {
			regions = []string{identity.ProfileRegion}
		} else {
			regions = regions[:1]
		}
	}

	clients := make(map[string]Client[T], len(regions))
	for _, region := range regions {
		regionCfg := cfg.Copy()
		regionCfg.Region = region
		api, err := build(regionCfg)
		if err != nil {
			slog.Warn("skipping region, client instantiation failed",
				"service", service, "region", region, "error", err)
			continue
		}
		clients[region] = Client[T]{Region: region, API: api}
	}
	return clients
}

func effectiveRegions(cat RegionCatalog, identity model.AuditIdentity, service string) []string {
	catalogRegions, ok := cat.Regions(service, identity.Partition)
	if !ok {
		// The service has no known regions in this partition; zero clients.
		return nil
	}
	if len(identity.Regions) == 0 {
		return catalogRegions
	}
	var out []string
	for _, r := range catalogRegions {
		if slices.Contains(identity.Regions, r) {
			out = append(out, r)
		}
	}
	return out
}
