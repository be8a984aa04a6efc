package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that an optional component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates the record store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store DBPinger
	jobs  JobsChecker
}

// New creates a Service. jobs can be nil when no jobs are configured.
func New(store DBPinger, jobs JobsChecker) *Service {
	return &Service{store: store, jobs: jobs}
}

// Check runs health checks against all components. A store failure makes
// the report unhealthy; a scheduler failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"storage": result(s.store.Ping(ctx))}
	if s.jobs != nil {
		checks["scheduler"] = result(s.jobs.HealthCheck(ctx))
	}

	status := Healthy
	switch {
	case checks["storage"] == CheckError:
		status = Unhealthy
	case checks["scheduler"] == CheckError:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
