// Package preview renders a Score as plain generic-instrument audio for
// quick auditioning, entirely independent of the synthesis backend.
package preview

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/leafo/tunebridge"
)

const sampleRate = 44100
const velocity = int32(100)

// Render plays score's notes (ignoring phonemes) as ordinary note-on/off
// events through a SoundFont loaded from sf2Path, returning mono samples
// (the synthesizer's left and right channels averaged) at 44.1kHz.
func Render(score *tunebridge.Score, sf2Path string) ([]float32, int, error) {
	data, err := os.ReadFile(sf2Path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read soundfont: %w", err)
	}

	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse soundfont: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(sampleRate)
	synth, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	tempo := score.Tempo
	if tempo <= 0 {
		tempo = 120
	}

	totalSamples := 0
	for _, n := range score.Notes {
		totalSamples += int(float64(n.Length.DurationNS(tempo)) / 1e9 * sampleRate)
	}
	if totalSamples <= 0 {
		return nil, sampleRate, nil
	}

	left := make([]float32, totalSamples)
	right := make([]float32, totalSamples)

	cursor := 0
	for _, n := range score.Notes {
		noteSamples := int(float64(n.Length.DurationNS(tempo)) / 1e9 * sampleRate)
		if noteSamples <= 0 {
			continue
		}
		if n.Pitch != nil {
			key := int32(*n.Pitch)
			synth.NoteOn(0, key, velocity)
		}

		end := cursor + noteSamples
		if end > totalSamples {
			end = totalSamples
		}
		synth.Render(left[cursor:end], right[cursor:end])

		if n.Pitch != nil {
			synth.NoteOff(0, int32(*n.Pitch))
		}
		cursor = end
	}

	mixed := make([]float32, totalSamples)
	for i := range mixed {
		mixed[i] = (left[i] + right[i]) / 2
	}

	return mixed, sampleRate, nil
}
