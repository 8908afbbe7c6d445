package tunebridge

import (
	"encoding/json"
	"math"
	"strconv"
)

// synthesisTempoBPM is the fixed "synthesis tempo" TaskToScore adopts: at
// this BPM, one quarter-note NoteLength unit equals one millisecond, so
// task times in seconds map onto the score's integer timebase without
// reintroducing a musical tempo into the arithmetic.
const synthesisTempoBPM = 60000.0

// LooseF64 is a float64 wrapper that reproduces the wire quirk of encoding
// non-finite values as the sentinel -math.MaxFloat64 rather than using
// JSON's native (invalid) NaN/Inf literals, while also accepting the
// string forms "NaN", "Infinity", "+Infinity", "-Infinity", and null on
// decode.
type LooseF64 float64

// MarshalJSON writes NaN as -math.MaxFloat64 and ±Inf as ±math.MaxFloat64.
func (v LooseF64) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		f = -math.MaxFloat64
	case math.IsInf(f, 1):
		f = math.MaxFloat64
	case math.IsInf(f, -1):
		f = -math.MaxFloat64
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts a JSON number, null, or one of the string literals
// "NaN"/"Infinity"/"+Infinity"/"-Infinity". The sentinel -math.MaxFloat64
// decodes to NaN, matching the encoder's choice to spend that one sentinel
// value on NaN rather than negative infinity.
func (v *LooseF64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = LooseF64(math.NaN())
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch asString {
		case "NaN":
			*v = LooseF64(math.NaN())
		case "Infinity", "+Infinity":
			*v = LooseF64(math.Inf(1))
		case "-Infinity":
			*v = LooseF64(math.Inf(-1))
		default:
			f, err := strconv.ParseFloat(asString, 64)
			if err != nil {
				return &InputValidationError{Message: "invalid LooseF64 string: " + asString}
			}
			*v = LooseF64(f)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return &InputValidationError{Message: "invalid LooseF64 value"}
	}
	if f == -math.MaxFloat64 {
		f = math.NaN()
	}
	*v = LooseF64(f)
	return nil
}

// SynthesisPhoneme is one explicit phoneme in a SynthesisNote's optional
// phoneme list, seconds-based.
type SynthesisPhoneme struct {
	Symbol    string  `json:"symbol"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// SynthesisNote is one caller-supplied note: seconds-based timing, MIDI
// pitch, a Japanese lyric (kana, possibly mixed with other text), optional
// sibling indices, a property map, and an optional explicit phoneme list
// that overrides lyricToPhonemes.
type SynthesisNote struct {
	StartTime  float64             `json:"startTime"`
	EndTime    float64             `json:"endTime"`
	Pitch      int32               `json:"pitch"`
	Lyric      string              `json:"lyric"`
	LastIndex  *int                `json:"lastIndex,omitempty"`
	NextIndex  *int                `json:"nextIndex,omitempty"`
	Properties map[string]any      `json:"properties,omitempty"`
	Phonemes   []SynthesisPhoneme  `json:"phonemes,omitempty"`
}

// PitchCurve is a caller-supplied pitch override: two parallel sequences,
// times in seconds (monotonic ascending) and MIDI-float values.
type PitchCurve struct {
	Times  []float64  `json:"times"`
	Values []LooseF64 `json:"values"`
}

// SynthesisTask is the caller's full synthesis request.
type SynthesisTask struct {
	VoiceID            string                 `json:"voiceId"`
	StartTime          float64                `json:"startTime"`
	EndTime            float64                `json:"endTime"`
	Duration           float64                `json:"duration"`
	StyleShift         float64                `json:"styleShift"`
	WaveformStyleShift float64                `json:"waveformStyleShift"`
	PartProperties     map[string]any         `json:"partProperties,omitempty"`
	Notes              []SynthesisNote        `json:"notes"`
	Pitch              PitchCurve             `json:"pitch"`
}

// TaskToScore converts a caller SynthesisTask into a Score on the fixed
// synthesis timebase, bracketed by one-second leading and trailing pau
// notes. Returns InputValidationError if the task has no notes.
func TaskToScore(task SynthesisTask) (Score, error) {
	if len(task.Notes) == 0 {
		return Score{}, &InputValidationError{Message: "synthesis task has no notes"}
	}

	pauPitch := 60
	leadingPau := Note{
		Pitch:                    &pauPitch,
		StartTimeNS:              0,
		Length:                   NoteLengthFromQuarterNotesFloat(1.0 * synthesisTempoBPM / 60.0),
		Phonemes:                 []string{"pau"},
		Language:                 "JPN",
		LanguageDependentContext: "p",
	}
	firstPauNS := leadingPau.Length.DurationNS(synthesisTempoBPM)

	t0 := task.Notes[0].StartTime

	notes := make([]Note, 0, len(task.Notes)+2)
	notes = append(notes, leadingPau)

	for _, taskNote := range task.Notes {
		phonemes, err := phonemesForTaskNote(taskNote)
		if err != nil {
			return Score{}, err
		}

		offsetSeconds := taskNote.StartTime - t0
		if offsetSeconds < 0 {
			offsetSeconds = 0
		}
		startNS := saturatingAddU64(uint64(offsetSeconds*1e9), firstPauNS)

		spanSeconds := taskNote.EndTime - taskNote.StartTime
		if spanSeconds < 0 {
			spanSeconds = 0
		}
		quarterNotes := spanSeconds * synthesisTempoBPM / 60.0

		pitch := clampPitch(int(taskNote.Pitch))

		notes = append(notes, Note{
			Pitch:                    &pitch,
			StartTimeNS:              startNS,
			Length:                   NoteLengthFromQuarterNotesFloat(quarterNotes),
			Phonemes:                 phonemes,
			Language:                 "JPN",
			LanguageDependentContext: "0",
		})
	}

	last := notes[len(notes)-1]
	trailingPauPitch := 60
	notes = append(notes, Note{
		Pitch:                    &trailingPauPitch,
		StartTimeNS:              saturatingAddU64(last.StartTimeNS, last.Length.DurationNS(synthesisTempoBPM)),
		Length:                   NoteLengthFromQuarterNotesFloat(1.0 * synthesisTempoBPM / 60.0),
		Phonemes:                 []string{"pau"},
		Language:                 "JPN",
		LanguageDependentContext: "p",
	})

	return Score{
		Notes:          notes,
		Tempo:          synthesisTempoBPM,
		TimeSignatures: []TimeSignature{DefaultTimeSignature()},
	}, nil
}

func phonemesForTaskNote(note SynthesisNote) ([]string, error) {
	if len(note.Phonemes) > 0 {
		symbols := make([]string, len(note.Phonemes))
		for i, p := range note.Phonemes {
			symbols[i] = p.Symbol
		}
		return symbols, nil
	}
	return lyricToPhonemes(note.Lyric)
}

// ParseSynthesisTaskJSON unmarshals a caller-supplied task document.
func ParseSynthesisTaskJSON(data []byte) (SynthesisTask, error) {
	var task SynthesisTask
	if err := json.Unmarshal(data, &task); err != nil {
		return SynthesisTask{}, &InputValidationError{Message: "failed to parse synthesis task: " + err.Error()}
	}
	return task, nil
}

// TunelabOffsetSeconds returns score.Notes[1].StartTimeNS/1e9 for a score
// produced by TaskToScore: the synthesis-time start of the first task note,
// which equals the leading pau's duration in seconds. Subtracting
// task.Notes[0].StartTime from it gives tunelab_start_in_synthesis_time, the
// offset that converts caller time to synthesis time.
func TunelabOffsetSeconds(score Score) float64 {
	if len(score.Notes) < 2 {
		return 0
	}
	return float64(score.Notes[1].StartTimeNS) / 1e9
}
