package tunebridge

import (
	"math"
	"testing"
)

func TestNoteLengthConversions(t *testing.T) {
	if got := NoteLengthFromQuarterNotes(1); got != 24 {
		t.Errorf("NoteLengthFromQuarterNotes(1) = %d, want 24", got)
	}
	if got := NoteLengthFrom8thNotes(2); got != 24 {
		t.Errorf("NoteLengthFrom8thNotes(2) = %d, want 24", got)
	}
	if got := NoteLengthFrom16thNotes(4); got != 24 {
		t.Errorf("NoteLengthFrom16thNotes(4) = %d, want 24", got)
	}
	if got := NoteLengthFrom32ndNotes(8); got != 24 {
		t.Errorf("NoteLengthFrom32ndNotes(8) = %d, want 24", got)
	}
	if got := NoteLengthFrom32ndTripletNotes(24); got != 24 {
		t.Errorf("NoteLengthFrom32ndTripletNotes(24) = %d, want 24", got)
	}
}

func TestNoteLengthDurationNS(t *testing.T) {
	quarter := NoteLengthFromQuarterNotes(1)
	// At 120 BPM one quarter note is 0.5s.
	if got := quarter.DurationNS(120); got != 500_000_000 {
		t.Errorf("DurationNS(120) = %d, want 500000000", got)
	}
	if got := quarter.DurationNS(0); got != 0 {
		t.Errorf("DurationNS(0) = %d, want 0", got)
	}
}

func TestTransposeShiftsDefinedPitchesOnly(t *testing.T) {
	pitch := 60
	score := Score{
		Notes: []Note{
			{Pitch: &pitch, Phonemes: []string{"a"}},
			{Pitch: nil, Phonemes: []string{"pau"}},
		},
		Tempo: 120,
	}
	out := Transpose(score, 12)
	if *out.Notes[0].Pitch != 72 {
		t.Errorf("transposed pitch = %d, want 72", *out.Notes[0].Pitch)
	}
	if out.Notes[1].Pitch != nil {
		t.Errorf("pau note gained a pitch after transpose")
	}
	// Original score must be untouched.
	if *score.Notes[0].Pitch != 60 {
		t.Errorf("Transpose mutated its input")
	}
}

func TestTransposeClampsToMIDIRange(t *testing.T) {
	pitch := 120
	score := Score{Notes: []Note{{Pitch: &pitch}}, Tempo: 120}
	out := Transpose(score, 50)
	if *out.Notes[0].Pitch != 127 {
		t.Errorf("clamped pitch = %d, want 127", *out.Notes[0].Pitch)
	}
}

func TestTransposeZeroOrNonFiniteIsNoop(t *testing.T) {
	pitch := 60
	score := Score{Notes: []Note{{Pitch: &pitch}}, Tempo: 120}
	out := Transpose(score, 0)
	if *out.Notes[0].Pitch != 60 {
		t.Errorf("zero transpose changed pitch to %d", *out.Notes[0].Pitch)
	}
	out = Transpose(score, math.NaN())
	if *out.Notes[0].Pitch != 60 {
		t.Errorf("NaN transpose changed pitch to %d", *out.Notes[0].Pitch)
	}
}

func TestNoteTimeRanges(t *testing.T) {
	score := Score{
		Notes: []Note{
			{Length: NoteLengthFromQuarterNotes(1)},
			{Length: NoteLengthFromQuarterNotes(1)},
		},
		Tempo: 120,
	}
	ranges := NoteTimeRanges(score)
	if ranges[0].Start != 0 || ranges[0].End != 500_000_000 {
		t.Errorf("first range = %+v", ranges[0])
	}
	if ranges[1].Start != 500_000_000 || ranges[1].End != 1_000_000_000 {
		t.Errorf("second range = %+v", ranges[1])
	}
}

func TestNoteTimeRangesHonorsExplicitStart(t *testing.T) {
	score := Score{
		Notes: []Note{
			{Length: NoteLengthFromQuarterNotes(1)},
			{StartTimeNS: 2_000_000_000, Length: NoteLengthFromQuarterNotes(1)},
		},
		Tempo: 120,
	}
	ranges := NoteTimeRanges(score)
	if ranges[1].Start != 2_000_000_000 {
		t.Errorf("explicit start not honored: %+v", ranges[1])
	}
}

func TestMidiNoteNameRoundTrip(t *testing.T) {
	cases := []struct {
		pitch int
		name  string
	}{
		{60, "C4"}, {69, "A4"}, {61, "C#4"}, {0, "C-1"},
	}
	for _, c := range cases {
		if got := MidiToNoteName(c.pitch); got != c.name {
			t.Errorf("MidiToNoteName(%d) = %q, want %q", c.pitch, got, c.name)
		}
		parsed, ok := NoteNameToMIDI(c.name)
		if !ok || parsed != c.pitch {
			t.Errorf("NoteNameToMIDI(%q) = (%d, %v), want (%d, true)", c.name, parsed, ok, c.pitch)
		}
	}
}

func TestNoteNameToMIDIRejectsMalformed(t *testing.T) {
	if _, ok := NoteNameToMIDI("Z4"); ok {
		t.Errorf("expected failure for unknown pitch class")
	}
	if _, ok := NoteNameToMIDI("C"); ok {
		t.Errorf("expected failure for missing octave")
	}
}

func TestFormatPitchDifference(t *testing.T) {
	if got := FormatPitchDifference(60, 64); got != "p4" {
		t.Errorf("FormatPitchDifference(60,64) = %q, want p4", got)
	}
	if got := FormatPitchDifference(64, 60); got != "m4" {
		t.Errorf("FormatPitchDifference(64,60) = %q, want m4", got)
	}
	if got := FormatPitchDifference(60, 60); got != "p0" {
		t.Errorf("FormatPitchDifference(60,60) = %q, want p0", got)
	}
}

func TestParseTimeSignature(t *testing.T) {
	ts, ok := ParseTimeSignature("3/4")
	if !ok || ts.Numerator != 3 || ts.Denominator != 4 {
		t.Errorf("ParseTimeSignature(3/4) = %+v, %v", ts, ok)
	}
	if _, ok := ParseTimeSignature("bogus"); ok {
		t.Errorf("expected failure on malformed time signature")
	}
	if _, ok := ParseTimeSignature("0/4"); ok {
		t.Errorf("expected failure on zero numerator")
	}
}
