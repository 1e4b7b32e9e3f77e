package registry

type service struct{}

// Service is the interface for the check registry.
type Service interface {
	HasService(name string) bool
	ListChecksForService(name string) ([]string, error)
	ChecksForServices(services []string) []string
	SelectChecks(services, subservices []string) []string
}
