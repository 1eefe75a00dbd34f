package loader

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prism-data/prism/internal/manifest"
)

// Series is one contiguous run of time-stamped samples for an instrument.
type Series struct {
	// Instrument is the canonical instrument key.
	Instrument string `yaml:"instrument"`

	// Start and End delimit the coverage interval [Start, End).
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`

	// Samples are the observations, ascending by time.
	Samples []Sample `yaml:"samples"`

	// Source records where the series was loaded from. Not serialized.
	Source string `yaml:"-"`
}

// Sample is a single observation.
type Sample struct {
	Time  time.Time `yaml:"time"`
	Value float64   `yaml:"value"`
}

// Decode parses a YAML series document. source is recorded on the result
// for provenance and used in error messages.
func Decode(data []byte, source string) (*Series, error) {
	var s Series
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode series %s: %w", source, err)
	}
	if s.Instrument == "" {
		return nil, fmt.Errorf("decode series %s: instrument is required", source)
	}
	s.Instrument = manifest.Key(s.Instrument)
	if !s.End.After(s.Start) {
		return nil, fmt.Errorf("decode series %s: end %s is not after start %s",
			source, s.End.Format(time.RFC3339), s.Start.Format(time.RFC3339))
	}
	for i := 1; i < len(s.Samples); i++ {
		if s.Samples[i].Time.Before(s.Samples[i-1].Time) {
			return nil, fmt.Errorf("decode series %s: samples out of order at index %d", source, i)
		}
	}
	s.Source = source
	return &s, nil
}

// ReadFile loads one series from a YAML file.
func ReadFile(path string) (*Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	return Decode(data, path)
}

// ReadMany loads several series files in the given order.
func ReadMany(paths []string) ([]*Series, error) {
	out := make([]*Series, 0, len(paths))
	for _, path := range paths {
		s, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Join concatenates several series for the same instrument into one,
// sorted by sample time. Coverage becomes the union of the inputs.
func Join(parts []*Series) (*Series, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("join: no series to join")
	}
	joined := &Series{
		Instrument: parts[0].Instrument,
		Start:      parts[0].Start,
		End:        parts[0].End,
		Source:     parts[0].Source,
	}
	for _, p := range parts {
		if p.Instrument != joined.Instrument {
			return nil, fmt.Errorf("join: mixed instruments %q and %q", joined.Instrument, p.Instrument)
		}
		if p.Start.Before(joined.Start) {
			joined.Start = p.Start
		}
		if p.End.After(joined.End) {
			joined.End = p.End
		}
		joined.Samples = append(joined.Samples, p.Samples...)
	}
	sort.SliceStable(joined.Samples, func(i, j int) bool {
		return joined.Samples[i].Time.Before(joined.Samples[j].Time)
	})
	return joined, nil
}

// Clip returns a copy restricted to samples within [start, end).
func (s *Series) Clip(start, end time.Time) *Series {
	clipped := &Series{
		Instrument: s.Instrument,
		Start:      start,
		End:        end,
		Source:     s.Source,
	}
	for _, sm := range s.Samples {
		if !sm.Time.Before(start) && sm.Time.Before(end) {
			clipped.Samples = append(clipped.Samples, sm)
		}
	}
	return clipped
}
