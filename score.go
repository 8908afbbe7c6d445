package tunebridge

import (
	"math"
	"strconv"
	"strings"
)

// NoteLength is a duration in triplet-32nd units: 24 units equal one
// quarter note. It is the canonical integer time unit for notes and for
// several label fields (length_triplet_32nd, length_centisecond).
type NoteLength int32

// NoteLengthFromQuarterNotes builds a NoteLength from an integer count of
// quarter notes.
func NoteLengthFromQuarterNotes(count int32) NoteLength { return NoteLength(count * 24) }

// NoteLengthFromQuarterNotesFloat rounds a fractional quarter-note count.
func NoteLengthFromQuarterNotesFloat(count float64) NoteLength {
	return NoteLength(int32(math.Round(count * 24.0)))
}

// NoteLengthFrom8thNotes builds a NoteLength from an integer count of 8th notes.
func NoteLengthFrom8thNotes(count int32) NoteLength { return NoteLength(count * 12) }

// NoteLengthFrom8thNotesFloat rounds a fractional 8th-note count.
func NoteLengthFrom8thNotesFloat(count float64) NoteLength {
	return NoteLength(int32(math.Round(count * 12.0)))
}

// NoteLengthFrom16thNotes builds a NoteLength from an integer count of 16th notes.
func NoteLengthFrom16thNotes(count int32) NoteLength { return NoteLength(count * 6) }

// NoteLengthFrom16thNotesFloat rounds a fractional 16th-note count.
func NoteLengthFrom16thNotesFloat(count float64) NoteLength {
	return NoteLength(int32(math.Round(count * 6.0)))
}

// NoteLengthFrom32ndNotes builds a NoteLength from an integer count of 32nd notes.
func NoteLengthFrom32ndNotes(count int32) NoteLength { return NoteLength(count * 3) }

// NoteLengthFrom32ndNotesFloat rounds a fractional 32nd-note count.
func NoteLengthFrom32ndNotesFloat(count float64) NoteLength {
	return NoteLength(int32(math.Round(count * 3.0)))
}

// NoteLengthFrom32ndTripletNotes builds a NoteLength directly from a count
// of triplet-32nd units (the identity constructor).
func NoteLengthFrom32ndTripletNotes(count int32) NoteLength { return NoteLength(count) }

// NoteLengthFrom32ndTripletNotesFloat rounds a fractional triplet-32nd count.
func NoteLengthFrom32ndTripletNotesFloat(count float64) NoteLength {
	return NoteLength(int32(math.Round(count)))
}

// DurationNS converts a NoteLength to nanoseconds at the given tempo (BPM).
// Returns 0 for non-positive tempo, clamps overflow to math.MaxUint64.
func (n NoteLength) DurationNS(tempo float64) uint64 {
	return lengthTriplet32ndToNanoseconds(int32(n), tempo)
}

func lengthTriplet32ndToNanoseconds(length int32, tempo float64) uint64 {
	if tempo <= 0 {
		return 0
	}
	units := length
	if units < 0 {
		units = 0
	}
	ns := float64(units) * 2_500_000_000.0 / tempo
	if !isFinite(ns) || ns <= 0 {
		return 0
	}
	if ns >= float64(math.MaxUint64) {
		return math.MaxUint64
	}
	return uint64(math.Round(ns))
}

// DurationCentiseconds converts a NoteLength to centiseconds at the given
// tempo, for use in label fields. Returns 0 for non-positive tempo.
func (n NoteLength) DurationCentiseconds(tempo float64) int32 {
	return lengthTriplet32ndToCentiseconds(int32(n), tempo)
}

func lengthTriplet32ndToCentiseconds(length int32, tempo float64) int32 {
	if tempo <= 0 {
		return 0
	}
	// 24 triplet-32nd units = 1 quarter note, so centiseconds = length*250/tempo.
	return (length*250 + int32(tempo/2.0)) / int32(tempo)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// TimeSignature is a numerator/denominator pair.
type TimeSignature struct {
	Numerator   uint8
	Denominator uint8
}

// DefaultTimeSignature is 4/4.
func DefaultTimeSignature() TimeSignature { return TimeSignature{Numerator: 4, Denominator: 4} }

// Note is one entry in a Score: an optional MIDI pitch (nil means rest/pau),
// a start time on the score timebase, a length in triplet-32nd units, and
// an ordered, non-empty list of phoneme symbols.
type Note struct {
	Pitch                  *int // 0..127; nil = rest/pau
	StartTimeNS            uint64
	Length                 NoteLength
	Phonemes               []string
	Language               string // "" means absent (emits as "xx")
	LanguageDependentContext string // "" means absent (emits as "xx")
}

func (n Note) clone() Note {
	c := n
	if n.Pitch != nil {
		p := *n.Pitch
		c.Pitch = &p
	}
	c.Phonemes = append([]string(nil), n.Phonemes...)
	return c
}

// Score is an ordered sequence of Notes plus a tempo and time signatures.
// Immutable once composed to labels; Transpose returns a modified copy.
type Score struct {
	Notes          []Note
	Tempo          float64
	TimeSignatures []TimeSignature
}

// DefaultScore returns the zero-value score: no notes, 120 BPM, 4/4.
func DefaultScore() Score {
	return Score{Tempo: 120, TimeSignatures: []TimeSignature{DefaultTimeSignature()}}
}

func (s Score) clone() Score {
	notes := make([]Note, len(s.Notes))
	for i, n := range s.Notes {
		notes[i] = n.clone()
	}
	return Score{
		Notes:          notes,
		Tempo:          s.Tempo,
		TimeSignatures: append([]TimeSignature(nil), s.TimeSignatures...),
	}
}

func clampPitch(p int) int {
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return p
}

// Transpose returns a copy of the score with every defined pitch shifted by
// the rounded integer value of semitones. A zero or non-finite delta returns
// an unmodified clone. Pau notes (no pitch) are left untouched.
func Transpose(score Score, semitones float64) Score {
	rounded := math.Round(semitones)
	out := score.clone()
	if !isFinite(rounded) || rounded == 0 {
		return out
	}
	delta := int(rounded)
	for i := range out.Notes {
		if out.Notes[i].Pitch == nil {
			continue
		}
		shifted := clampPitch(*out.Notes[i].Pitch + delta)
		out.Notes[i].Pitch = &shifted
	}
	return out
}

func saturatingAddU64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// NoteTimeRange is a half-open [Start, End) interval on the score timebase.
type NoteTimeRange struct {
	Start, End uint64
}

// NoteTimeRanges walks a score's notes and returns, for each note, the
// [start_ns, end_ns) interval it actually occupies: each range starts at
// max(running_cursor, note.StartTimeNS) and ends at start+duration. This
// lets an explicit per-note start time override the sequential accumulator
// while still preventing overlaps with the previous note.
func NoteTimeRanges(score Score) []NoteTimeRange {
	ranges := make([]NoteTimeRange, len(score.Notes))
	var cursor uint64
	for i, note := range score.Notes {
		duration := note.Length.DurationNS(score.Tempo)
		start := cursor
		if note.StartTimeNS > start {
			start = note.StartTimeNS
		}
		end := saturatingAddU64(start, duration)
		ranges[i] = NoteTimeRange{Start: start, End: end}
		cursor = end
	}
	return ranges
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MidiToNoteName formats a MIDI pitch as "<Name><Octave>", e.g. 60 -> "C4".
func MidiToNoteName(pitch int) string {
	pc := ((pitch % 12) + 12) % 12
	octave := pitch/12 - 1
	if pitch < 0 && pitch%12 != 0 {
		octave = (pitch-11)/12 - 1
	}
	return noteNames[pc] + strconv.Itoa(octave)
}

// NoteNameToMIDI parses a note name like "C5" or "C#5" back to a MIDI pitch
// in 0..127. Returns ok=false if the name is malformed or out of range.
func NoteNameToMIDI(name string) (int, bool) {
	if len(name) < 2 {
		return 0, false
	}
	var head, rest string
	if len(name) >= 2 && name[1] == '#' {
		head, rest = name[:2], name[2:]
	} else {
		head, rest = name[:1], name[1:]
	}
	pc, ok := pitchClassOf(head)
	if !ok {
		return 0, false
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	midi := (octave+1)*12 + pc
	if midi < 0 || midi > 127 {
		return 0, false
	}
	return midi, true
}

func pitchClassOf(head string) (int, bool) {
	for i, n := range noteNames {
		if n == head {
			return i, true
		}
	}
	return 0, false
}

// FormatPitchDifference renders the signed semitone delta from current to
// target as "p<n>" (n >= 0) or "m<n>" (n < 0), matching the label format's
// pitch_difference_to_next_note convention.
func FormatPitchDifference(current, target int) string {
	diff := target - current
	if diff >= 0 {
		return "p" + strconv.Itoa(diff)
	}
	return "m" + strconv.Itoa(-diff)
}

// ParseTimeSignature parses "num/den" into a TimeSignature. Returns
// ok=false on malformed input or a zero numerator/denominator.
func ParseTimeSignature(value string) (TimeSignature, bool) {
	num, den, found := strings.Cut(value, "/")
	if !found {
		return TimeSignature{}, false
	}
	n, err1 := strconv.Atoi(num)
	d, err2 := strconv.Atoi(den)
	if err1 != nil || err2 != nil || n <= 0 || n > 255 || d <= 0 || d > 255 {
		return TimeSignature{}, false
	}
	return TimeSignature{Numerator: uint8(n), Denominator: uint8(d)}, true
}
