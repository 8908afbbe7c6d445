package tunebridge

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// fakeBackendRunner simulates the three-pass backend contract purely from
// the argument list, so Pipeline.Synthesize can be exercised without a real
// backend install.
type fakeBackendRunner struct {
	t *testing.T
}

func (f *fakeBackendRunner) Run(args []string) (string, error) {
	if len(args) < 5 {
		return "", &BackendIOError{Message: "too few args"}
	}
	labelOut, f0File, wavOut := args[1], args[2], args[4]
	hasFlag := func(flag string) bool {
		for _, a := range args {
			if a == flag {
				return true
			}
		}
		return false
	}

	labelIn := args[0]
	labelData, err := os.ReadFile(labelIn)
	if err != nil {
		return "", &BackendIOError{Message: "fake backend could not read label_in: " + err.Error()}
	}
	lineCount := len(strings.Split(strings.TrimRight(string(labelData), "\n"), "\n"))

	if !hasFlag("--skip-timing") {
		// Pass 1: timing. Emit one synthetic timing line per label line,
		// 10ms apart, reusing the label file's own line count.
		var b strings.Builder
		for i := 0; i < lineCount; i++ {
			startNS := uint64(i) * 10_000_000
			endNS := startNS + 10_000_000
			b.WriteString(formatTimingLine(startNS/100, endNS/100, "a"))
		}
		if err := os.WriteFile(labelOut, []byte(b.String()), 0o644); err != nil {
			return "", &BackendIOError{Message: err.Error()}
		}
	}

	if hasFlag("--skip-timing") && hasFlag("--skip-melspec") && hasFlag("--skip-wav") {
		// Pass 2: F0. Emit a flat 100-frame buffer at 440Hz.
		frames := make([]float32, 100)
		for i := range frames {
			frames[i] = 440.0
		}
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, frames); err != nil {
			return "", &BackendIOError{Message: err.Error()}
		}
		if err := os.WriteFile(f0File, buf.Bytes(), 0o644); err != nil {
			return "", &BackendIOError{Message: err.Error()}
		}
	}

	if hasFlag("--skip-timing") && hasFlag("--skip-f0") {
		// Pass 3: waveform.
		samples := make([]float32, 100)
		var b bytes.Buffer
		if err := WriteWave(&b, samples, 44100); err != nil {
			return "", err
		}
		if err := os.WriteFile(wavOut, b.Bytes(), 0o644); err != nil {
			return "", &BackendIOError{Message: err.Error()}
		}
	}

	return "", nil
}

func formatTimingLine(startCs, endCs uint64, phoneme string) string {
	return itoa64(startCs) + " " + itoa64(endCs) + " " + phoneme + "\n"
}

func itoa64(v uint64) string {
	if v == 0 {
		return "0"
	}
	digits := []byte{}
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}

func newFakeEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	dummy := exec.Command("true")
	return &Engine{
		neutrinoPath: dir,
		serverCmd:    dummy,
		runner:       &fakeBackendRunner{t: t},
	}
}

func TestPipelineSynthesizeEndToEnd(t *testing.T) {
	engine := newFakeEngine(t)
	pipeline := NewPipeline(engine)

	task := SynthesisTask{
		VoiceID:   "testvoice",
		StartTime: 0,
		EndTime:   1,
		Notes: []SynthesisNote{
			{StartTime: 0, EndTime: 0.5, Pitch: 60, Lyric: "a"},
		},
		Pitch: PitchCurve{},
	}
	taskJSON, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("failed to marshal task: %v", err)
	}

	out, err := pipeline.Synthesize(taskJSON, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	var response SynthesisResponse
	if err := json.Unmarshal(out, &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", response.SampleRate)
	}
	if response.NoteCount != 1 {
		t.Errorf("NoteCount = %d, want 1", response.NoteCount)
	}
}

func TestPipelineSynthesizeHonorsCancellation(t *testing.T) {
	engine := newFakeEngine(t)
	pipeline := NewPipeline(engine)

	token := &CancellationToken{}
	token.Cancel()

	_, err := pipeline.Synthesize([]byte(`{}`), token)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if _, ok := err.(*CancelledError); !ok {
		t.Errorf("error type = %T, want *CancelledError", err)
	}
}

func TestGroupTimingsByNoteFallsBackWhenShort(t *testing.T) {
	notes := []Note{{Phonemes: []string{"a", "b"}}}
	timings := []TimingLabel{{Phoneme: "a"}}
	groups := groupTimingsByNote(notes, timings)
	if len(groups[0]) != 1 {
		t.Errorf("expected the single available timing to be claimed, got %d", len(groups[0]))
	}
}
