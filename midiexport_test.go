package tunebridge

import (
	"bytes"
	"testing"
)

func TestWriteSMFRejectsEmptyScore(t *testing.T) {
	var buf bytes.Buffer
	score := Score{}
	if err := score.WriteSMF(&buf); err == nil {
		t.Errorf("expected error for score with no notes")
	}
}

func TestWriteSMFProducesNonEmptyOutput(t *testing.T) {
	pitch := 60
	score := Score{
		Notes: []Note{
			{Pitch: &pitch, Length: NoteLengthFromQuarterNotes(1)},
			{Pitch: nil, Length: NoteLengthFromQuarterNotes(1)},
		},
		Tempo: 120,
	}
	var buf bytes.Buffer
	if err := score.WriteSMF(&buf); err != nil {
		t.Fatalf("WriteSMF failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("expected non-empty SMF output")
	}
	if string(buf.Bytes()[:4]) != "MThd" {
		t.Errorf("output does not start with MThd header")
	}
}

func TestTicksForNoteLength(t *testing.T) {
	if got := ticksForNoteLength(NoteLengthFromQuarterNotes(1)); got != ticksPerQuarterNote {
		t.Errorf("ticksForNoteLength(quarter) = %d, want %d", got, ticksPerQuarterNote)
	}
	if got := ticksForNoteLength(NoteLength(-5)); got != 0 {
		t.Errorf("negative length should clamp to 0 ticks, got %d", got)
	}
}
