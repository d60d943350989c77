package scheduler

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/stardrift/tactical/internal/scheduler"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
