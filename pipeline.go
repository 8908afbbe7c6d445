package tunebridge

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// TimingLabel is one backend-reported phoneme timing: a [start, end) span
// on the synthesis timebase (nanoseconds) plus the bare phoneme symbol.
type TimingLabel struct {
	StartNS uint64
	EndNS   uint64
	Phoneme string
}

// ResponsePhoneme is one phoneme entry within a ResponseNote.
type ResponsePhoneme struct {
	Symbol    string  `json:"symbol"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// ResponseNote pairs a task note index with its resolved phoneme timings.
type ResponseNote struct {
	NoteIndex int               `json:"noteIndex"`
	Phonemes  []ResponsePhoneme `json:"phonemes"`
}

// SynthesisResponse is the full JSON document returned by Pipeline.Synthesize.
type SynthesisResponse struct {
	StartTime     float64        `json:"startTime"`
	SampleRate    int            `json:"sampleRate"`
	SampleCount   int            `json:"sampleCount"`
	Samples       []float32      `json:"samples"`
	PitchTimes    []float64      `json:"pitchTimes"`
	PitchValues   []float64      `json:"pitchValues"`
	NotePhonemes  []ResponseNote `json:"notePhonemes"`
	NoteCount     int            `json:"noteCount"`
	PhonemeCount  int            `json:"phonemeCount"`
	PropertyCount int            `json:"propertyCount"`
}

// CancellationToken is polled once, immediately before entering the
// pipeline; it is never checked mid-pass.
type CancellationToken struct {
	cancelled bool
}

// Cancel marks the token as set.
func (t *CancellationToken) Cancel() { t.cancelled = true }

// Pipeline orchestrates the three backend calls for one synthesis task
// against a single Engine.
type Pipeline struct {
	Engine *Engine
}

// NewPipeline builds a Pipeline bound to the given Engine.
func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// Synthesize runs task_json end-to-end through the three backend passes and
// returns the assembled response as JSON. token, if non-nil, is checked once
// before any backend work begins.
func (p *Pipeline) Synthesize(taskJSON []byte, token *CancellationToken) ([]byte, error) {
	if token != nil && token.cancelled {
		return nil, &CancelledError{}
	}

	var task SynthesisTask
	if err := json.Unmarshal(taskJSON, &task); err != nil {
		return nil, &InputValidationError{Message: "failed to parse synthesis task: " + err.Error()}
	}

	score, err := TaskToScore(task)
	if err != nil {
		return nil, err
	}
	tunelabOffset := TunelabOffsetSeconds(score) - task.Notes[0].StartTime

	p.Engine.Lock()
	defer p.Engine.Unlock()

	workdir, err := os.MkdirTemp("", "tunebridge-*")
	if err != nil {
		return nil, &BackendIOError{Message: "failed to create temp workdir: " + err.Error()}
	}
	defer os.RemoveAll(workdir)

	cores := runtime.NumCPU()
	modelDir := filepath.Join(p.Engine.neutrinoPath, "model", task.VoiceID)

	labelIn := filepath.Join(workdir, "label_in.txt")
	labelOut := filepath.Join(workdir, "label_out.txt")
	f0File := filepath.Join(workdir, "f0.bin")
	melspecFile := filepath.Join(workdir, "melspec.bin")
	wavOut := filepath.Join(workdir, "out.wav")

	baseLabels, err := ComposeLabels(score)
	if err != nil {
		return nil, err
	}
	if err := writeLabelFile(labelIn, baseLabels); err != nil {
		return nil, err
	}

	// Pass 1 — Timing.
	if _, err := p.Engine.Invoke(backendArgs(labelIn, labelOut, f0File, melspecFile, wavOut, modelDir, cores,
		"--skip-melspec", "--skip-f0", "--skip-wav")); err != nil {
		return nil, err
	}
	timings, err := readTimingFile(labelOut)
	if err != nil {
		return nil, err
	}
	groups := groupTimingsByNote(score.Notes, timings)

	// Pass 2 — F0.
	styleScore := TransposeScore(score, task.StyleShift)
	styleLabels, err := ComposeLabels(styleScore)
	if err != nil {
		return nil, err
	}
	if err := writeLabelFile(labelIn, styleLabels); err != nil {
		return nil, err
	}
	if err := writeTimingFile(labelOut, timings); err != nil {
		return nil, err
	}
	if _, err := p.Engine.Invoke(backendArgs(labelIn, labelOut, f0File, melspecFile, wavOut, modelDir, cores,
		"--skip-timing", "--skip-melspec", "--skip-wav")); err != nil {
		return nil, err
	}
	f0, err := readF0File(f0File)
	if err != nil {
		return nil, err
	}
	f0 = ShiftF0(f0, -task.StyleShift)
	f0 = ApplyPitchCurve(curvePoints(task.Pitch), f0, tunelabOffset)

	// Pass 3 — Waveform.
	waveformScore := TransposeScore(styleScore, task.WaveformStyleShift)
	waveformLabels, err := ComposeLabels(waveformScore)
	if err != nil {
		return nil, err
	}
	if err := writeLabelFile(labelIn, waveformLabels); err != nil {
		return nil, err
	}
	if err := writeF0File(f0File, f0); err != nil {
		return nil, err
	}
	if _, err := p.Engine.Invoke(backendArgs(labelIn, labelOut, f0File, melspecFile, wavOut, modelDir, cores,
		"--skip-timing", "--skip-f0")); err != nil {
		return nil, err
	}
	wavFile, err := os.Open(wavOut)
	if err != nil {
		return nil, &BackendIOError{Message: "failed to open rendered wav: " + err.Error()}
	}
	wav, err := ReadWave(wavFile)
	wavFile.Close()
	if err != nil {
		return nil, err
	}

	response := p.assembleResponse(task, groups, f0, wav, tunelabOffset)
	out, err := json.Marshal(response)
	if err != nil {
		return nil, &InternalError{Message: "failed to encode response: " + err.Error()}
	}
	return out, nil
}

func backendArgs(labelIn, labelOut, f0File, melspecFile, wavOut, modelDir string, cores int, skipFlags ...string) []string {
	args := []string{
		labelIn, labelOut, f0File, melspecFile, wavOut,
		modelDir, "-n", strconv.Itoa(cores), "-m", "-t",
	}
	return append(args, skipFlags...)
}

func writeLabelFile(path string, labels []TimedLabel) error {
	var b strings.Builder
	for _, l := range labels {
		fmt.Fprintf(&b, "%d %d %s\n", l.StartNS/100, l.EndNS/100, l.Label.String())
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return &BackendIOError{Message: "failed to write label file: " + err.Error()}
	}
	return nil
}

func writeTimingFile(path string, timings []TimingLabel) error {
	var b strings.Builder
	for _, t := range timings {
		fmt.Fprintf(&b, "%d %d %s\n", t.StartNS/100, t.EndNS/100, t.Phoneme)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return &BackendIOError{Message: "failed to write timing file: " + err.Error()}
	}
	return nil
}

// readTimingFile parses the backend's timing label file: one
// "<start_100ns> <end_100ns> <phoneme>" line per phoneme. Lines with fewer
// than three whitespace-separated tokens are silently skipped.
func readTimingFile(path string) ([]TimingLabel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &BackendIOError{Message: "failed to read timing file: " + err.Error()}
	}
	var timings []TimingLabel
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		start, err1 := strconv.ParseUint(fields[0], 10, 64)
		end, err2 := strconv.ParseUint(fields[1], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		timings = append(timings, TimingLabel{StartNS: start * 100, EndNS: end * 100, Phoneme: fields[2]})
	}
	return timings, nil
}

func readF0File(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &BackendIOError{Message: "failed to read F0 file: " + err.Error()}
	}
	count := len(data) / 4
	f0 := make([]float32, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, f0); err != nil {
		return nil, &BackendIOError{Message: "failed to decode F0 file: " + err.Error()}
	}
	return f0, nil
}

func writeF0File(path string, f0 []float32) error {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, f0); err != nil {
		return &BackendIOError{Message: "failed to encode F0 buffer: " + err.Error()}
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return &BackendIOError{Message: "failed to write F0 file: " + err.Error()}
	}
	return nil
}

// groupTimingsByNote assigns backend timing labels to score notes in order.
// Each note normally claims exactly len(note.Phonemes) labels; if fewer
// remain than declared, the note claims whatever is left (the backend's
// grouping is adopted verbatim for that note).
func groupTimingsByNote(notes []Note, timings []TimingLabel) [][]TimingLabel {
	groups := make([][]TimingLabel, len(notes))
	cursor := 0
	for i, note := range notes {
		declared := len(note.Phonemes)
		if declared == 0 {
			declared = 1
		}
		remaining := len(timings) - cursor
		take := declared
		if take > remaining {
			take = remaining
		}
		if take < 0 {
			take = 0
		}
		groups[i] = timings[cursor : cursor+take]
		cursor += take
	}
	return groups
}

func curvePoints(curve PitchCurve) []PitchCurvePoint {
	points := make([]PitchCurvePoint, 0, len(curve.Times))
	for i := range curve.Times {
		if i >= len(curve.Values) {
			break
		}
		points = append(points, PitchCurvePoint{TimeSeconds: curve.Times[i], MIDIValue: float64(curve.Values[i])})
	}
	return points
}

func (p *Pipeline) assembleResponse(task SynthesisTask, groups [][]TimingLabel, f0 []float32, wav *WaveFile, tunelabOffset float64) SynthesisResponse {
	// groups[0] and groups[len-1] are the synthetic leading/trailing pau
	// notes; task notes occupy groups[1:len-1].
	notePhonemes := make([]ResponseNote, 0, len(groups)-2)
	for i := 1; i < len(groups)-1; i++ {
		taskIndex := i - 1
		var phonemes []ResponsePhoneme
		declared := task.Notes[taskIndex].Phonemes
		backendGroup := groups[i]

		if len(declared) > 0 && len(declared) == len(backendGroup) {
			for _, ph := range declared {
				phonemes = append(phonemes, ResponsePhoneme{
					Symbol:    ph.Symbol,
					StartTime: ph.StartTime,
					EndTime:   ph.EndTime,
				})
			}
		} else {
			for _, t := range backendGroup {
				phonemes = append(phonemes, ResponsePhoneme{
					Symbol:    t.Phoneme,
					StartTime: float64(t.StartNS)/1e9 - tunelabOffset,
					EndTime:   float64(t.EndNS)/1e9 - tunelabOffset,
				})
			}
		}

		notePhonemes = append(notePhonemes, ResponseNote{NoteIndex: taskIndex, Phonemes: phonemes})
	}

	pitchTimes, pitchValues := buildPitchTrace(f0, tunelabOffset)

	phonemeCount := 0
	propertyCount := len(task.PartProperties)
	for _, n := range task.Notes {
		phonemeCount += len(n.Phonemes)
		propertyCount += len(n.Properties)
	}

	sampleRate := int(wav.Header.SampleRate)
	samples := wav.Samples

	return SynthesisResponse{
		StartTime:     -tunelabOffset,
		SampleRate:    sampleRate,
		SampleCount:   len(samples),
		Samples:       samples,
		PitchTimes:    pitchTimes,
		PitchValues:   pitchValues,
		NotePhonemes:  notePhonemes,
		NoteCount:     len(task.Notes),
		PhonemeCount:  phonemeCount,
		PropertyCount: propertyCount,
	}
}

// buildPitchTrace converts an F0 buffer to (time, midi) pairs, dropping
// non-finite frames and compressing flat regions: scanning back to front, a
// frame is skipped when both neighbors equal it and the next frame (already
// decided) has not itself been skipped, which preserves the two endpoints
// of any flat run.
func buildPitchTrace(f0 []float32, tunelabOffset float64) ([]float64, []float64) {
	midi := make([]float64, len(f0))
	for i, v := range f0 {
		midi[i] = HzToMidi(float64(v))
	}

	var times, values []float64
	skipped := make([]bool, len(midi))
	for k := len(midi) - 1; k >= 0; k-- {
		if !isFinite(midi[k]) {
			skipped[k] = true
			continue
		}
		if k > 0 && k+1 < len(midi) &&
			midi[k-1] == midi[k] && midi[k+1] == midi[k] && !skipped[k+1] {
			skipped[k] = true
			continue
		}
	}

	for k := range midi {
		if skipped[k] {
			continue
		}
		times = append(times, float64(k)/F0FrameRate-tunelabOffset)
		values = append(values, midi[k])
	}
	return times, values
}
