package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current instant; injected so date rules stay testable.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Truncate(time.Now().UTC())
}

// Truncate drops the time component, keeping a UTC calendar date.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Module wires the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
