package sequence

import (
	"errors"
	"testing"

	"github.com/Mistodon/melo/internal/notation"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestBuildRegistryDefaults(t *testing.T) {
	reg, err := BuildRegistry([]notation.VoiceDecl{{Name: "V"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	v := reg.Voices()[0]
	if v.Program != 0 || v.Channel != 0 || v.Volume != DefaultVolume || v.Octave != 0 || v.Drums {
		t.Fatalf("defaults wrong: %+v", v)
	}
}

func TestBuildRegistryChannelAssignment(t *testing.T) {
	// Enough voices to exhaust the 15 usable channels and wrap around; the
	// percussion channel must be skipped on every pass.
	decls := make([]notation.VoiceDecl, 18)
	for i := range decls {
		decls[i] = notation.VoiceDecl{Name: string(rune('a' + i))}
	}
	reg, err := BuildRegistry(decls)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 14, 15, 0, 1, 2}
	for i, v := range reg.Voices() {
		if v.Channel != want[i] {
			t.Fatalf("voice %d channel: got %d, want %d", i, v.Channel, want[i])
		}
		if v.Channel == drumChannel {
			t.Fatalf("voice %d auto-assigned to the percussion channel", i)
		}
	}
}

func TestBuildRegistryExplicitChannelDoesNotShiftOthers(t *testing.T) {
	reg, err := BuildRegistry([]notation.VoiceDecl{
		{Name: "a"},
		{Name: "b", Channel: intp(14)},
		{Name: "c"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	vs := reg.Voices()
	if vs[0].Channel != 0 || vs[1].Channel != 14 || vs[2].Channel != 1 {
		t.Fatalf("channels: got %d/%d/%d, want 0/14/1", vs[0].Channel, vs[1].Channel, vs[2].Channel)
	}
}

func TestBuildRegistryDrumsPinnedToPercussion(t *testing.T) {
	reg, err := BuildRegistry([]notation.VoiceDecl{
		{Name: "Kit", Drums: boolp(true), Channel: intp(3)},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := reg.Voices()[0].Channel; got != 9 {
		t.Fatalf("drums channel: got %d, want 9", got)
	}
}

func TestBuildRegistryDuplicate(t *testing.T) {
	_, err := BuildRegistry([]notation.VoiceDecl{
		{Name: "V", Line: 1, Col: 1},
		{Name: "V", Line: 5, Col: 1},
	})
	var dup *DuplicateVoiceError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicateVoiceError", err)
	}
	if dup.Name != "V" || dup.Line != 5 {
		t.Fatalf("error fields: %+v", dup)
	}
}

func TestBuildRegistryRangeChecks(t *testing.T) {
	cases := []struct {
		name string
		decl notation.VoiceDecl
		attr string
	}{
		{"program too large", notation.VoiceDecl{Name: "V", Program: intp(128)}, "program"},
		{"program negative", notation.VoiceDecl{Name: "V", Program: intp(-1)}, "program"},
		{"volume too large", notation.VoiceDecl{Name: "V", Volume: intp(200)}, "volume"},
		{"channel too large", notation.VoiceDecl{Name: "V", Channel: intp(16)}, "channel"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildRegistry([]notation.VoiceDecl{tc.decl})
			var inv *InvalidAttributeError
			if !errors.As(err, &inv) {
				t.Fatalf("got %v, want InvalidAttributeError", err)
			}
			if inv.Attr != tc.attr {
				t.Fatalf("attr: got %q, want %q", inv.Attr, tc.attr)
			}
		})
	}
}

func TestRegistryHandsOutCopies(t *testing.T) {
	reg, err := BuildRegistry([]notation.VoiceDecl{{Name: "V", Volume: intp(90)}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, err := reg.Lookup(notation.PlayBlock{Voice: "V"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got.Volume = 1
	reg.Voices()[0].Volume = 2

	again, err := reg.Lookup(notation.PlayBlock{Voice: "V"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if again.Volume != 90 {
		t.Fatalf("registry mutated through a returned voice: volume = %d", again.Volume)
	}
	if reg.Voices()[0].Volume != 90 {
		t.Fatalf("registry mutated through Voices(): volume = %d", reg.Voices()[0].Volume)
	}
}

func TestLookup(t *testing.T) {
	reg, err := BuildRegistry([]notation.VoiceDecl{{Name: "V"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := reg.Lookup(notation.PlayBlock{Voice: "V"}); err != nil {
		t.Fatalf("lookup existing: %v", err)
	}
	_, err = reg.Lookup(notation.PlayBlock{Voice: "Nope", Line: 7, Col: 1})
	var unknown *UnknownVoiceError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownVoiceError", err)
	}
	if unknown.Name != "Nope" || unknown.Line != 7 {
		t.Fatalf("error fields: %+v", unknown)
	}
}
