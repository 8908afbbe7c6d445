package tunebridge

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property 3: transpose(transpose(S, +k), -k) == S for integer k.
func TestPropertyTransposeIsSelfInverse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("transposing by +k then -k restores the original pitches", prop.ForAll(
		func(pitch int, k int) bool {
			pitch = ((pitch % 128) + 128) % 128
			if k > 24 {
				k = 24
			}
			if k < -24 {
				k = -24
			}
			score := Score{Notes: []Note{{Pitch: &pitch}}, Tempo: 120}

			up := Transpose(score, float64(k))
			// Only check the round trip where the up-shift didn't clamp,
			// since clamping is intentionally lossy.
			if *up.Notes[0].Pitch != clampPitch(pitch+k) {
				return false
			}
			if clampPitch(pitch+k) != pitch+k {
				return true // clamped; round trip isn't expected to hold
			}
			down := Transpose(up, float64(-k))
			return *down.Notes[0].Pitch == pitch
		},
		gen.IntRange(0, 127),
		gen.IntRange(-24, 24),
	))

	properties.TestingRun(t)
}

// Property 4: shift_f0(shift_f0(F, +k), -k) equals F on finite positive
// elements; identity on non-finite/<=0 elements.
func TestPropertyShiftF0IsApproximatelySelfInverse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("shifting by +k then -k approximately restores positive frames", prop.ForAll(
		func(hz float64, k float64) bool {
			in := []float32{float32(hz)}
			up := ShiftF0(in, k)
			down := ShiftF0(up, -k)
			return math.Abs(float64(down[0])-hz) < 1e-3*math.Max(1, hz)
		},
		gen.Float64Range(1, 2000),
		gen.Float64Range(-24, 24),
	))

	properties.Property("non-finite and non-positive frames are always left untouched", prop.ForAll(
		func(k float64) bool {
			in := []float32{0, -5, float32(math.NaN()), float32(math.Inf(1))}
			out := ShiftF0(in, k)
			if out[0] != 0 || out[1] != -5 {
				return false
			}
			return math.IsNaN(float64(out[2])) && math.IsInf(float64(out[3]), 1)
		},
		gen.Float64Range(-24, 24),
	))

	properties.TestingRun(t)
}

// Property 5: hz_to_midi(midi_to_hz(m)) is within 1e-5 of m for m in [0, 127].
func TestPropertyMidiHzRoundTripWithinTolerance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("midi -> hz -> midi recovers the original value", prop.ForAll(
		func(m float64) bool {
			return math.Abs(HzToMidi(MidiToHz(m))-m) < 1e-5
		},
		gen.Float64Range(0, 127),
	))

	properties.TestingRun(t)
}

// Property 8/9: composed label count matches total phoneme count, and each
// note's composed intervals are adjacent, non-overlapping, and cover
// exactly [note.start_ns, note.end_ns).
func TestPropertyComposedLabelsCoverNoteSpanExactly(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	phonemeCounts := gen.SliceOfN(3, gen.IntRange(1, 4))

	properties.Property("composed labels tile each note's time range exactly", prop.ForAll(
		func(counts []int) bool {
			notes := make([]Note, len(counts))
			for i, c := range counts {
				phonemes := make([]string, c)
				for j := range phonemes {
					phonemes[j] = "a"
				}
				notes[i] = Note{Length: NoteLengthFromQuarterNotes(1), Phonemes: phonemes}
			}
			score := Score{Notes: notes, Tempo: 120, TimeSignatures: []TimeSignature{DefaultTimeSignature()}}

			labels, err := ComposeLabels(score)
			if err != nil {
				return false
			}

			total := 0
			for _, c := range counts {
				total += c
			}
			if len(labels) != total {
				return false
			}

			ranges := NoteTimeRanges(score)
			idx := 0
			for ni, c := range counts {
				noteStart, noteEnd := ranges[ni].Start, ranges[ni].End
				prevEnd := noteStart
				for j := 0; j < c; j++ {
					l := labels[idx]
					if l.StartNS != prevEnd {
						return false
					}
					if l.StartNS > l.EndNS {
						return false
					}
					prevEnd = l.EndNS
					idx++
				}
				if prevEnd != noteEnd {
					return false
				}
			}
			return true
		},
		phonemeCounts,
	))

	properties.TestingRun(t)
}

// Property 6: centisecond conversion at fixed tempos.
func TestPropertyLengthTriplet32ndToCentiseconds(t *testing.T) {
	cases := []struct {
		length int32
		tempo  float64
		want   int32
	}{
		{24, 100.0, 60},
		{96, 100.0, 240},
		{24, 140.0, 43},
	}
	for _, c := range cases {
		if got := lengthTriplet32ndToCentiseconds(c.length, c.tempo); got != c.want {
			t.Errorf("lengthTriplet32ndToCentiseconds(%d, %v) = %d, want %d", c.length, c.tempo, got, c.want)
		}
	}
}
