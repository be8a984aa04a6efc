package health

import "context"

// DBPinger checks record store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// JobsChecker reports whether the job scheduler is running.
type JobsChecker interface {
	HealthCheck(ctx context.Context) error
}
