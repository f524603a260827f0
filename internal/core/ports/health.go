package ports

import "context"

// HealthChecker abstracts a dependency health probe.
// Implementations should return error if unhealthy. A failing critical
// dependency makes the service unhealthy; any other failure only degrades it.
type HealthChecker interface {
	Name() string
	Critical() bool
	Check(ctx context.Context) error
}
