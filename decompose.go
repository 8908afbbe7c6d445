package tunebridge

import "strconv"

// xxAsNone treats the "xx" sentinel as absence, matching the label format's
// convention that "xx" means "not applicable" rather than a literal value.
func xxAsNone(value string) (string, bool) {
	if value == xx {
		return "", false
	}
	return value, true
}

// LabelsToScore reconstructs a Score from a flat sequence of Labels, the
// inverse of ComposeLabels. Labels are grouped into notes by a change in
// curr_syllable.note_position_forward (falling back to a synthetic
// per-group key when that field is "xx"), and the result is bracketed by
// synthetic leading and trailing pau notes.
func LabelsToScore(labels []Label) (Score, error) {
	if len(labels) == 0 {
		return DefaultScore(), nil
	}

	tempo := 120.0
	for _, l := range labels {
		if v, ok := xxAsNone(l.CurrNote.Tempo); ok {
			if parsed, err := strconv.Atoi(v); err == nil {
				tempo = float64(parsed)
				break
			}
		}
	}

	timeSignature := DefaultTimeSignature()
	for _, l := range labels {
		if v, ok := xxAsNone(l.CurrNote.Beat); ok {
			if ts, ok := ParseTimeSignature(v); ok {
				timeSignature = ts
				break
			}
		}
	}

	pauPitch := 60
	notes := []Note{{
		Pitch:                    &pauPitch,
		StartTimeNS:              0,
		Length:                   NoteLengthFromQuarterNotes(100),
		Language:                 "JPN",
		LanguageDependentContext: "p",
		Phonemes:                 []string{"pau"},
	}}

	var currentGroupKey string
	haveGroupKey := false

	for _, label := range labels {
		groupKey, hasKey := xxAsNone(label.CurrSyllable.NotePositionForward)
		if !hasKey {
			groupKey = "g" + strconv.Itoa(len(notes))
		}

		if !haveGroupKey || currentGroupKey != groupKey {
			pitch, err := pitchFromLabel(label.CurrNote.AbsolutePitch)
			if err != nil {
				return Score{}, err
			}

			prev := notes[len(notes)-1]
			startTime := saturatingAddU64(prev.StartTimeNS, prev.Length.DurationNS(tempo))

			length := NoteLengthFrom32ndTripletNotes(1)
			if v, ok := xxAsNone(label.CurrNote.LengthTriplet32nd); ok {
				if parsed, err := strconv.Atoi(v); err == nil {
					length = NoteLengthFrom32ndTripletNotes(int32(parsed))
				}
			}

			language, _ := xxAsNone(label.CurrSyllable.Language)
			languageContext, _ := xxAsNone(label.CurrSyllable.LanguageDependentContext)

			notes = append(notes, Note{
				Pitch:                    pitch,
				StartTimeNS:              startTime,
				Length:                   length,
				Language:                 language,
				LanguageDependentContext: languageContext,
			})
			currentGroupKey = groupKey
			haveGroupKey = true
		}

		if symbol, ok := xxAsNone(label.Phoneme.PhonemeIDCurrent); ok {
			last := &notes[len(notes)-1]
			last.Phonemes = append(last.Phonemes, symbol)
		}
	}

	last := notes[len(notes)-1]
	trailingPitch := 60
	notes = append(notes, Note{
		Pitch:                    &trailingPitch,
		StartTimeNS:              saturatingAddU64(last.StartTimeNS, last.Length.DurationNS(tempo)),
		Length:                   NoteLengthFromQuarterNotes(100),
		Language:                 "JPN",
		LanguageDependentContext: "p",
		Phonemes:                 []string{"pau"},
	})

	return Score{
		Notes:          notes,
		Tempo:          tempo,
		TimeSignatures: []TimeSignature{timeSignature},
	}, nil
}

func pitchFromLabel(absolutePitch string) (*int, error) {
	value, ok := xxAsNone(absolutePitch)
	if !ok {
		p := 60
		return &p, nil
	}
	midi, ok := NoteNameToMIDI(value)
	if !ok {
		return nil, errInvalidPitch(value)
	}
	return &midi, nil
}
