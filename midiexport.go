package tunebridge

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ticksPerQuarterNote is the SMF time-division resolution this exporter
// writes; NoteLength's 24 triplet-32nd units per quarter note divide it
// evenly.
const ticksPerQuarterNote = 480

// smfEvent is one absolutely-timed MIDI message awaiting delta-time
// conversion, the same shape the teacher's General MIDI exporter sorts
// before emitting a track.
type smfEvent struct {
	Tick    uint32
	Message smf.Message
}

// WriteSMF renders a Score as a single-track Standard MIDI File: a tempo
// meta event at tick 0 followed by a note-on/note-off pair per Note (notes
// with no pitch are silent gaps; pau notes that carry a pitch, such as the
// padding notes TaskToScore adds, are exported as sounding notes). This is a diagnostic aid,
// not part of the synthesis contract.
func (s Score) WriteSMF(w io.Writer) error {
	if len(s.Notes) == 0 {
		return fmt.Errorf("score has no notes to export")
	}

	file := smf.NewSMF1()
	file.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	tempo := s.Tempo
	if tempo <= 0 {
		tempo = 120
	}

	var events []smfEvent
	events = append(events, smfEvent{Tick: 0, Message: smf.Message(smf.MetaTempo(tempo))})

	var tick uint32
	for _, note := range s.Notes {
		length := ticksForNoteLength(note.Length)
		if note.Pitch != nil {
			key := uint8(clampPitch(*note.Pitch))
			events = append(events, smfEvent{Tick: tick, Message: smf.Message(midi.NoteOn(0, key, 100))})
			events = append(events, smfEvent{Tick: tick + length, Message: smf.Message(midi.NoteOff(0, key))})
		}
		tick += length
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Tick < events[j].Tick })

	var track smf.Track
	var lastTick uint32
	for _, ev := range events {
		track = append(track, smf.Event{Delta: ev.Tick - lastTick, Message: ev.Message})
		lastTick = ev.Tick
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})

	file.Add(track)

	_, err := file.WriteTo(w)
	if err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}

// ticksForNoteLength converts a NoteLength (24 triplet-32nd units per
// quarter note) to SMF ticks at ticksPerQuarterNote resolution.
func ticksForNoteLength(n NoteLength) uint32 {
	units := int32(n)
	if units < 0 {
		units = 0
	}
	return uint32(units) * ticksPerQuarterNote / 24
}
