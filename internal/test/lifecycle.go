package test

import (
	"go.uber.org/fx"
)

// LifecycleRecorder collects hooks appended during tests so they can be
// invoked directly.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append stores the hook instead of registering it with a real fx app.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub signals on Called whenever a shutdown is requested.
type ShutdownerStub struct {
	Called chan struct{}
}

// Shutdown records the request without blocking the caller.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called == nil {
		return nil
	}
	select {
	case s.Called <- struct{}{}:
	default:
	}
	return nil
}
