package sequence

import (
	"testing"
)

func ev(start Fraction, note int, voice string) Event {
	return Event{Start: start, Duration: Frac(1, 4), Note: note, Velocity: DefaultVolume, Voice: voice}
}

func TestMergeOrdersByStart(t *testing.T) {
	merged := Merge([][]Event{
		{ev(Frac(1, 2), 60, "a"), ev(Frac(1, 1), 62, "a")},
		{ev(Frac(0, 1), 40, "b"), ev(Frac(3, 4), 41, "b")},
	})
	wantStarts := []Fraction{Frac(0, 1), Frac(1, 2), Frac(3, 4), Frac(1, 1)}
	for i, want := range wantStarts {
		if merged[i].Start != want {
			t.Fatalf("event %d start: got %v, want %v", i, merged[i].Start, want)
		}
	}
}

func TestMergeStableOnTies(t *testing.T) {
	// Same start everywhere; declaration order of the tracks must survive.
	merged := Merge([][]Event{
		{ev(Frac(0, 1), 60, "first")},
		{ev(Frac(0, 1), 40, "second")},
		{ev(Frac(0, 1), 50, "third")},
	})
	wantVoices := []string{"first", "second", "third"}
	for i, want := range wantVoices {
		if merged[i].Voice != want {
			t.Fatalf("tie order %d: got %q, want %q", i, merged[i].Voice, want)
		}
	}
}

func TestMergeEquivalentFractionsTie(t *testing.T) {
	// 2/4 and 1/2 are the same instant and must count as a tie.
	merged := Merge([][]Event{
		{{Start: Frac(2, 4), Duration: Frac(1, 4), Note: 60, Voice: "first"}},
		{{Start: Frac(1, 2), Duration: Frac(1, 4), Note: 40, Voice: "second"}},
	})
	if merged[0].Voice != "first" || merged[1].Voice != "second" {
		t.Fatalf("tie order: got %q, %q", merged[0].Voice, merged[1].Voice)
	}
}

func TestMergeUnequalLengths(t *testing.T) {
	long := []Event{ev(Frac(0, 1), 60, "long"), ev(Frac(1, 1), 62, "long"), ev(Frac(2, 1), 64, "long")}
	short := []Event{ev(Frac(0, 1), 40, "short")}
	merged := Merge([][]Event{long, short})
	if len(merged) != 4 {
		t.Fatalf("merged length: got %d, want 4", len(merged))
	}
	if merged[3].Voice != "long" {
		t.Fatalf("last event: got %q, want long", merged[3].Voice)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Fatalf("merge of nothing: got %d events", len(got))
	}
	if got := Merge([][]Event{nil, {}}); len(got) != 0 {
		t.Fatalf("merge of empty tracks: got %d events", len(got))
	}
}

func TestTimelineDuration(t *testing.T) {
	tl := &Timeline{Events: []Event{
		{Start: Frac(0, 1), Duration: Frac(2, 1)},
		{Start: Frac(3, 2), Duration: Frac(1, 4)},
	}}
	if got := tl.Duration(); got != Frac(2, 1) {
		t.Fatalf("duration: got %v, want 2", got)
	}
	empty := &Timeline{}
	if got := empty.Duration(); !got.IsZero() {
		t.Fatalf("empty duration: got %v, want 0", got)
	}
}

func TestBarSeconds(t *testing.T) {
	tl := &Timeline{Tempo: 120, Beats: 4}
	if got := tl.BarSeconds(); got != 2.0 {
		t.Fatalf("4/4 at 120: got %v, want 2", got)
	}
	tl = &Timeline{Tempo: 60, Beats: 3}
	if got := tl.BarSeconds(); got != 3.0 {
		t.Fatalf("3/4 at 60: got %v, want 3", got)
	}
	unset := &Timeline{}
	if got := unset.BarSeconds(); got != 2.0 {
		t.Fatalf("defaults: got %v, want 2", got)
	}
}
