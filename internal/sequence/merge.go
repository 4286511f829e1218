package sequence

import "sort"

// Timeline is the compiler's final artifact: the resolved voices and the
// globally time-ordered events of every play block. Tempo and Beats are
// piece-level settings consumed only by exporters; the event times
// themselves are measured in bars.
type Timeline struct {
	Title    string  `yaml:"title,omitempty"`
	Composer string  `yaml:"composer,omitempty"`
	Tempo    int     `yaml:"tempo"`
	Beats    int     `yaml:"beats"`
	Voices   []Voice `yaml:"voices"`
	Events   []Event `yaml:"events"`
}

// Merge interleaves per-play-block event slices into one stream ordered by
// start time. The merge is stable: events starting at the same time keep the
// declaration order of their play blocks. Tracks of unequal length are left
// as they are; a shorter voice's stream simply ends early.
func Merge(tracks [][]Event) []Event {
	total := 0
	for _, tr := range tracks {
		total += len(tr)
	}
	merged := make([]Event, 0, total)
	for _, tr := range tracks {
		merged = append(merged, tr...)
	}
	// Each track is already time-ordered, so a stable sort on start time
	// keeps the per-track order and breaks ties by track position.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Less(merged[j].Start)
	})
	return merged
}

// Duration returns the end time of the last-ending event, in bars.
func (t *Timeline) Duration() Fraction {
	max := Frac(0, 1)
	for _, ev := range t.Events {
		if end := ev.End(); max.Less(end) {
			max = end
		}
	}
	return max
}

// BarSeconds returns the wall-clock length of one bar under the timeline's
// tempo and meter.
func (t *Timeline) BarSeconds() float64 {
	tempo, beats := t.Tempo, t.Beats
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	if beats <= 0 {
		beats = DefaultBeats
	}
	return float64(beats) * 60.0 / float64(tempo)
}
