package livecheck

import "weaver/pkg/semconv"

// OTLPMetricKind is the subset of OTLP metric point types the core maps
// onto a registry InstrumentKind (§6's OTLP mapping table).
type OTLPMetricKind string

const (
	OTLPSum       OTLPMetricKind = "sum"
	OTLPGauge     OTLPMetricKind = "gauge"
	OTLPHistogram OTLPMetricKind = "histogram"
)

// InstrumentKindFromOTLP maps an OTLP metric data point shape onto a
// registry InstrumentKind, consumed by (but not part of) an OTLP receiver
// adapter (§6, §4.6):
//
//	sum, is_monotonic=true  -> counter
//	sum, is_monotonic=false -> updowncounter
//	gauge                   -> gauge
//	histogram               -> histogram
func InstrumentKindFromOTLP(kind OTLPMetricKind, isMonotonic bool) semconv.InstrumentKind {
	switch kind {
	case OTLPSum:
		if isMonotonic {
			return semconv.InstrumentCounter
		}
		return semconv.InstrumentUpDownCounter
	case OTLPGauge:
		return semconv.InstrumentGauge
	case OTLPHistogram:
		return semconv.InstrumentHistogram
	default:
		return ""
	}
}
