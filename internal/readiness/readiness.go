// Package readiness defines the observation predicates polled after a launch.
package readiness

import "context"

// Check reports whether an observed condition holds. Checks must be free of
// side effects; a non-nil error means the observation itself failed, not that
// the condition is false.
type Check func(ctx context.Context) (bool, error)

// AllOf is true once every check is true.
func AllOf(checks ...Check) Check {
	return func(ctx context.Context) (bool, error) {
		for _, check := range checks {
			ok, err := check(ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// AnyOf is true once at least one check is true.
func AnyOf(checks ...Check) Check {
	return func(ctx context.Context) (bool, error) {
		var lastErr error
		for _, check := range checks {
			ok, err := check(ctx)
			if err != nil {
				lastErr = err
				continue
			}
			if ok {
				return true, nil
			}
		}
		return false, lastErr
	}
}
