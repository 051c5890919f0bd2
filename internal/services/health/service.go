package health

import (
	"context"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// Checker reports whether one dependency is usable.
type Checker func(ctx context.Context) error

// Service runs the registered dependency checks.
type Service struct {
	checks map[string]Checker
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]Checker{}}
}

// Register adds a named check. A nil checker is ignored.
func (s *Service) Register(name string, check Checker) {
	if s == nil || check == nil {
		return
	}
	s.checks[name] = check
}

// Status runs every check and returns the overall result plus one entry per check.
func (s *Service) Status(ctx context.Context) (bool, map[string]string) {
	results := map[string]string{}
	if s == nil {
		return true, results
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ok := true
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()
		if err != nil {
			ok = false
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	return ok, results
}
