package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"weaver/pkg/apperror"
	"weaver/pkg/livecheck"
	"weaver/pkg/semconv"
)

// sampleDTO is the minimal JSON wire shape this smoke harness reads, one
// object per line: just enough of §3's Sample types to exercise every
// advisor end to end. A full OTLP receiver adapter is out of this repo's
// scope (§4.6 EXPANSION note); this decoder exists only to drive
// `weaver check` against a file of hand-written or exported samples.
type sampleDTO struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`

	Instrument string         `json:"instrument,omitempty"`
	Unit       string         `json:"unit,omitempty"`
	DataPoints []dataPointDTO `json:"data_points,omitempty"`
	Attributes []attributeDTO `json:"attributes,omitempty"`
	Events     []eventDTO     `json:"events,omitempty"`
}

type attributeDTO struct {
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

type dataPointDTO struct {
	Attributes []attributeDTO `json:"attributes,omitempty"`
	Value      any            `json:"value,omitempty"`
}

type eventDTO struct {
	Name       string         `json:"name"`
	Attributes []attributeDTO `json:"attributes,omitempty"`
}

func anyValueFromJSON(v any) *livecheck.AnyValue {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var av livecheck.AnyValue
	if err := av.UnmarshalJSON(data); err != nil {
		return nil
	}
	return &av
}

func sampleAttributesFromDTO(in []attributeDTO) []livecheck.SampleAttribute {
	out := make([]livecheck.SampleAttribute, 0, len(in))
	for _, a := range in {
		out = append(out, livecheck.SampleAttribute{Name: a.Name, Value: anyValueFromJSON(a.Value)})
	}
	return out
}

func sampleFromDTO(d sampleDTO) (livecheck.Sample, error) {
	switch d.Kind {
	case "attribute":
		return livecheck.Sample{Kind: livecheck.SampleKindAttribute, Attribute: &livecheck.SampleAttribute{
			Name: d.Name, Value: anyValueFromJSON(d.Value),
		}}, nil
	case "metric":
		dps := make([]livecheck.SampleDataPoint, 0, len(d.DataPoints))
		for _, dp := range d.DataPoints {
			av := anyValueFromJSON(dp.Value)
			var value livecheck.AnyValue
			if av != nil {
				value = *av
			}
			dps = append(dps, livecheck.SampleDataPoint{Attributes: sampleAttributesFromDTO(dp.Attributes), Value: value})
		}
		return livecheck.Sample{Kind: livecheck.SampleKindMetric, Metric: &livecheck.SampleMetric{
			Name: d.Name, Instrument: semconv.InstrumentKind(d.Instrument), Unit: d.Unit, DataPoints: dps,
		}}, nil
	case "span":
		events := make([]livecheck.SampleEvent, 0, len(d.Events))
		for _, e := range d.Events {
			events = append(events, livecheck.SampleEvent{Name: e.Name, Attrs: sampleAttributesFromDTO(e.Attributes)})
		}
		return livecheck.Sample{Kind: livecheck.SampleKindSpan, Span: &livecheck.SampleSpan{
			Name: d.Name, Attrs: sampleAttributesFromDTO(d.Attributes), Events: events,
		}}, nil
	case "event":
		return livecheck.Sample{Kind: livecheck.SampleKindEvent, Event: &livecheck.SampleEvent{
			Name: d.Name, Attrs: sampleAttributesFromDTO(d.Attributes),
		}}, nil
	case "resource":
		return livecheck.Sample{Kind: livecheck.SampleKindResource, Resource: &livecheck.SampleResource{
			Attrs: sampleAttributesFromDTO(d.Attributes),
		}}, nil
	default:
		return livecheck.Sample{}, apperror.New(apperror.CodeSampleParseError, fmt.Sprintf("unknown sample kind %q", d.Kind))
	}
}

// decodeSamples reads newline-delimited JSON sample objects from r.
func decodeSamples(r io.Reader) ([]livecheck.Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var samples []livecheck.Sample
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var dto sampleDTO
		if err := json.Unmarshal(line, &dto); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeSampleParseError, "failed to decode sample line")
		}
		sample, err := sampleFromDTO(dto)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeSampleParseError, "failed to read samples")
	}
	return samples, nil
}
