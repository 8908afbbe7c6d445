package tunebridge

import "math"

// F0FrameRate is the backend's fixed fundamental-frequency sampling rate.
// It is the only sample rate ever used for F0 data; audio sample rate comes
// from the rendered WAV header instead.
const F0FrameRate = 99.84

// MidiToHz converts a MIDI-float pitch to frequency in Hz.
func MidiToHz(m float64) float64 {
	return 440.0 * math.Pow(2.0, (m-69.0)/12.0)
}

// HzToMidi converts a frequency in Hz to a MIDI-float pitch.
func HzToMidi(f float64) float64 {
	return 69.0 + 12.0*math.Log2(f/440.0)
}

// TransposeScore rounds semitones to an integer delta and shifts every
// defined pitch, clamping to 0..127. A zero or non-finite delta returns an
// unmodified clone.
func TransposeScore(score Score, semitones float64) Score {
	return Transpose(score, semitones)
}

// ShiftF0 multiplies each finite, positive F0 value by 2^(semitones/12).
// Non-finite, zero, or negative values pass through unchanged.
func ShiftF0(f0 []float32, semitones float64) []float32 {
	out := make([]float32, len(f0))
	if semitones == 0 || !isFinite(semitones) {
		copy(out, f0)
		return out
	}
	factor := math.Pow(2.0, semitones/12.0)
	for i, v := range f0 {
		if !isFinite(float64(v)) || v <= 0 {
			out[i] = v
			continue
		}
		out[i] = float32(float64(v) * factor)
	}
	return out
}

// PitchCurvePoint is one (time, MIDI-float) sample of a caller-supplied
// pitch curve, in caller-time seconds.
type PitchCurvePoint struct {
	TimeSeconds float64
	MIDIValue   float64
}

// ApplyPitchCurve overlays a caller pitch curve onto an F0 buffer (Hz,
// frame rate F0FrameRate), returning a new buffer. tunelabOffset converts
// the curve's caller-time seconds to synthesis-time seconds. Segments with
// a non-finite endpoint, or whose synthesis-time span is non-positive, are
// skipped entirely.
func ApplyPitchCurve(curve []PitchCurvePoint, f0 []float32, tunelabOffset float64) []float32 {
	out := make([]float32, len(f0))
	copy(out, f0)

	for i := 0; i+1 < len(curve); i++ {
		p0, p1 := curve[i], curve[i+1]
		if !isFinite(p0.MIDIValue) || !isFinite(p1.MIDIValue) {
			continue
		}
		a := p0.TimeSeconds + tunelabOffset
		b := p1.TimeSeconds + tunelabOffset
		if b <= a {
			continue
		}

		first := int64(math.Ceil(a * F0FrameRate))
		last := int64(math.Floor(b * F0FrameRate))

		if first <= last {
			for k := first; k <= last; k++ {
				applyFrame(out, k, a, b, p0.MIDIValue, p1.MIDIValue)
			}
		} else {
			k := int64(math.Round(((a + b) / 2) * F0FrameRate))
			applyFrame(out, k, a, b, p0.MIDIValue, p1.MIDIValue)
		}
	}

	return out
}

func applyFrame(out []float32, k int64, a, b, v0, v1 float64) {
	if k < 0 || k >= int64(len(out)) {
		return
	}
	t := (float64(k)/F0FrameRate - a) / (b - a)
	midi := v0 + t*(v1-v0)
	out[k] = float32(MidiToHz(midi))
}
