// Package catalog provides the packaged service/region availability lookup.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
)

//go:embed aws_services.json
var servicesJSON []byte

type document struct {
	Services map[string]entry `json:"services"`
}

type entry struct {
	Regions map[string][]string `json:"regions"`
}

// Catalog is the immutable (service, partition) -> regions lookup. It is
// read-only after load and safe for concurrent use without synchronization.
type Catalog struct {
	services map[string]entry
}

// Load parses the packaged region data. It is called once at startup.
func Load() (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(servicesJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse packaged service region data: %w", err)
	}
	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("packaged service region data is empty")
	}
	return &Catalog{services: doc.Services}, nil
}

// Regions returns the ordered region list for a service in a partition. A
// missing service or partition is not an error; some services are
// partition-restricted and simply have zero regions there.
func (c *Catalog) Regions(service, partition string) ([]string, bool) {
	e, ok := c.services[service]
	if !ok {
		return nil, false
	}
	regions, ok := e.Regions[partition]
	if !ok || len(regions) == 0 {
		return nil, false
	}
	return slices.Clone(regions), true
}

// Services returns every service name present in the catalog, sorted.
func (c *Catalog) Services() []string {
	out := make([]string, 0, len(c.services))
	for name := range c.services {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// AllRegions returns the deduplicated union of every region across all
// services and partitions, sorted.
func (c *Catalog) AllRegions() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range c.services {
		for _, regions := range e.Regions {
			for _, r := range regions {
				if !seen[r] {
					seen[r] = true
					out = append(out, r)
				}
			}
		}
	}
	slices.Sort(out)
	return out
}
