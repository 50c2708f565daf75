package autosave

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/markerset/internal/autosave"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
