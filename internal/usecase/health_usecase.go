package usecase

import (
	"context"
	"time"
)

// Pinger is any dependency that can report its liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	deps map[string]Pinger
}

// NewHealthUsecase reports on each named dependency. A nil Pinger is shown as
// "disabled".
func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	return &healthUsecase{deps: deps}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{
		"status":  "success",
		"message": "API is running",
	}

	for name, dep := range u.deps {
		if dep == nil {
			result[name] = "disabled"
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := dep.Ping(pingCtx); err != nil {
			result[name] = "unavailable"
		} else {
			result[name] = "ok"
		}
		cancel()
	}
	return result
}
