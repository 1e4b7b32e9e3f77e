package scope

type service struct {
	catalog CheckCatalog
}

// Service is the interface for the ARN scope resolver.
type Service interface {
	Resolve(resourceARNs []string) (Decision, error)
}
