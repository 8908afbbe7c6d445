package tunebridge

import "strconv"

// templateLabelLine is the canonical empty-context label used as a
// starting prototype for every composed label. Its peripheral fields are
// whatever fillNoteContexts etc. do not overwrite outright.
const templateLabelLine = "p@xx^xx-pau+r=a_xx%xx^00_00~00-1!1[xx$xx]xx/A:xx-xx-xx@xx~xx/B:1_1_1@xx|xx/C:2+1+1@JPN&0/D:xx!xx#xx$xx%xx|xx&xx;xx-xx/E:xx]xx^0=4/4~100!1@240#96+xx]1$1|0[24&0]96=0^100~xx#xx_xx;xx$xx&xx%xx[xx|0]0-n^xx+xx~xx=xx@xx$xx!xx%xx#xx|xx|xx-xx&xx&xx+xx[xx;xx]xx;xx~xx~xx^xx^xx@xx[xx#xx=xx!xx~xx+xx!xx^xx/F:C5#0#0-4/4$100$1+60%24;xx/G:xx_xx/H:xx_xx/I:8_8/J:2~2@1"

// TimedLabel pairs a Label with its [StartNS, EndNS) interval on the score
// timebase.
type TimedLabel struct {
	Label    Label
	StartNS  uint64
	EndNS    uint64
}

type composePoint struct {
	index        int
	noteIndex    int
	phonemeIndex int
	symbol       string
}

func flattenPoints(notes []Note) []composePoint {
	var points []composePoint
	for ni, note := range notes {
		for pi, sym := range note.Phonemes {
			points = append(points, composePoint{
				index:        len(points),
				noteIndex:    ni,
				phonemeIndex: pi,
				symbol:       sym,
			})
		}
	}
	return points
}

func symbolAt(points []composePoint, index, offset int) string {
	shifted := index + offset
	if shifted < 0 || shifted >= len(points) {
		return xx
	}
	return points[shifted].symbol
}

// ComposeLabels converts a Score into a sequence of TimedLabels, one per
// phoneme across all notes, filling every contextual section from the
// fixed template.
func ComposeLabels(score Score) ([]TimedLabel, error) {
	for i, note := range score.Notes {
		if len(note.Phonemes) == 0 {
			return nil, errEmptyPhonemes(i)
		}
	}

	timeSignature := DefaultTimeSignature()
	if len(score.TimeSignatures) > 0 {
		timeSignature = score.TimeSignatures[0]
	}
	beat := strconv.Itoa(int(timeSignature.Numerator)) + "/" + strconv.Itoa(int(timeSignature.Denominator))

	template, err := ParseLabel(templateLabelLine)
	if err != nil {
		return nil, errTemplateParse(err)
	}

	points := flattenPoints(score.Notes)
	ranges := noteTimeRangesForCompose(score.Notes, score.Tempo)

	labels := make([]TimedLabel, 0, len(points))
	for _, point := range points {
		label := template
		fillPhonemeContext(&label, points, point.index)
		fillSyllableContexts(&label, score.Notes, point.noteIndex)
		fillNoteContexts(&label, score.Notes, point.noteIndex, score.Tempo, beat)
		fillPhraseAndSongContexts(&label, score.Notes)

		noteStart, noteEnd := ranges[point.noteIndex].Start, ranges[point.noteIndex].End
		phonemeCount := uint64(len(score.Notes[point.noteIndex].Phonemes))
		if phonemeCount == 0 {
			phonemeCount = 1
		}
		phonemeIndex := uint64(point.phonemeIndex)
		span := noteEnd - noteStart
		startNS := noteStart + mulDivU64(span, phonemeIndex, phonemeCount)
		endNS := noteStart + mulDivU64(span, phonemeIndex+1, phonemeCount)

		labels = append(labels, TimedLabel{Label: label, StartNS: startNS, EndNS: endNS})
	}

	return labels, nil
}

// mulDivU64 computes span*numerator/denominator with saturation on overflow,
// matching the composer's "saturating_mul then integer-divide" arithmetic.
func mulDivU64(span, numerator, denominator uint64) uint64 {
	if denominator == 0 {
		return 0
	}
	product, overflow := mulU64(span, numerator)
	if overflow {
		return ^uint64(0) / denominator
	}
	return product / denominator
}

func mulU64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	product := a * b
	if product/a != b {
		return 0, true
	}
	return product, false
}

// noteTimeRangesForCompose mirrors NoteTimeRanges but is kept local to this
// file since the composer needs it alongside tempo, not the Score wrapper.
func noteTimeRangesForCompose(notes []Note, tempo float64) []NoteTimeRange {
	return NoteTimeRanges(Score{Notes: notes, Tempo: tempo})
}

func fillPhonemeContext(label *Label, points []composePoint, index int) {
	current := points[index]
	currentCount := 0
	for _, p := range points {
		if p.noteIndex == current.noteIndex {
			currentCount++
		}
	}

	label.Phoneme = PhonemeContext{
		LanguageIndependentPhonemeID: current.symbol,
		PhonemeIDTwoBefore:           symbolAt(points, index, -2),
		PhonemeIDPrevious:            symbolAt(points, index, -1),
		PhonemeIDCurrent:             current.symbol,
		PhonemeIDNext:                symbolAt(points, index, 1),
		PhonemeIDTwoAfter:            symbolAt(points, index, 2),
		PhonemeFlagTwoBefore:         xx,
		PhonemeFlagBefore:            xx,
		PhonemeFlagCurrent:           "00",
		PhonemeFlagNext:              "00",
		PhonemeFlagTwoAfter:          "00",
		SyllablePhonemePositionFwd:   strconv.Itoa(current.phonemeIndex + 1),
		SyllablePhonemePositionBwd:   strconv.Itoa(currentCount - current.phonemeIndex),
		DistanceFromPrevVowel:        xx,
		DistanceToNextVowel:          xx,
		Reserved:                     xx,
	}
}

func fillSyllableContexts(label *Label, notes []Note, noteIndex int) {
	label.PrevSyllable = syllableFor(notes, noteIndex-1, true)
	label.CurrSyllable = syllableFor(notes, noteIndex, true)
	label.NextSyllable = syllableFor(notes, noteIndex+1, noteIndex+1 < len(notes))
}

func syllableFor(notes []Note, idx int, present bool) SyllableContext {
	if !present || idx < 0 || idx >= len(notes) {
		return SyllableContext{PhonemeCount: xx, NotePositionForward: xx, NotePositionBackward: xx, Language: xx, LanguageDependentContext: xx}
	}
	n := notes[idx]
	return SyllableContext{
		PhonemeCount:             strconv.Itoa(len(n.Phonemes)),
		NotePositionForward:      strconv.Itoa(idx + 1),
		NotePositionBackward:     strconv.Itoa(len(notes) - idx),
		Language:                 orXX(n.Language),
		LanguageDependentContext: orXX(n.LanguageDependentContext),
	}
}

func orXX(s string) string {
	if s == "" {
		return xx
	}
	return s
}

func fillNoteContexts(label *Label, notes []Note, noteIndex int, tempo float64, beat string) {
	label.PrevNote = noteCtxFor(notes, noteIndex-1, noteIndex-1 >= 0, tempo, beat)
	curr := notes[noteIndex]
	label.NextNote = noteCtxFor(notes, noteIndex+1, noteIndex+1 < len(notes), tempo, beat)

	length := int32(curr.Length)
	label.CurrNote.AbsolutePitch = pitchNameOrXX(curr.Pitch)
	label.CurrNote.RelativePitch = relativePitchOrXX(curr.Pitch)
	label.CurrNote.KeySignature = "0"
	label.CurrNote.Beat = beat
	label.CurrNote.Tempo = strconv.FormatFloat(tempo, 'f', -1, 64)
	label.CurrNote.LengthSyllable = "1"
	label.CurrNote.LengthCentisecond = strconv.Itoa(int(lengthTriplet32ndToCentiseconds(length, tempo)))
	label.CurrNote.LengthTriplet32nd = strconv.Itoa(int(length))
	label.CurrNote.Reserved = xx

	label.CurrNote.MeasureNotePositionNoteForward = "1"
	label.CurrNote.MeasureNotePositionNoteBackward = "1"
	label.CurrNote.MeasureNotePositionCentisecondFwd = "0"
	label.CurrNote.MeasureNotePositionCentisecondBwd = "0"
	label.CurrNote.MeasureNotePositionTriplet32ndFwd = "0"
	label.CurrNote.MeasureNotePositionTriplet32ndBwd = "0"
	label.CurrNote.MeasureNotePositionPercentForward = "0"
	label.CurrNote.MeasureNotePositionPercentBackward = "100"

	label.CurrNote.PhraseNotePositionNoteForward = xx
	label.CurrNote.PhraseNotePositionNoteBackward = xx
	label.CurrNote.PhraseNotePositionCentisecondFwd = xx
	label.CurrNote.PhraseNotePositionCentisecondBwd = xx
	label.CurrNote.PhraseNotePositionTriplet32ndFwd = xx
	label.CurrNote.PhraseNotePositionTriplet32ndBwd = xx
	label.CurrNote.PhraseNotePositionPercentForward = xx
	label.CurrNote.PhraseNotePositionPercentBackward = xx

	label.CurrNote.SlurWithPrevious = "0"
	label.CurrNote.SlurWithNext = "0"
	label.CurrNote.DynamicMark = "n"

	label.CurrNote.DistanceToNextAccentNote = xx
	label.CurrNote.DistanceToPreviousAccentNote = xx
	label.CurrNote.DistanceToNextAccentCentisecond = xx
	label.CurrNote.DistanceToPreviousAccentCentisecond = xx
	label.CurrNote.DistanceToNextAccentTriplet32nd = xx
	label.CurrNote.DistanceToPreviousAccentTriplet32nd = xx
	label.CurrNote.DistanceToNextStaccatoNote = xx
	label.CurrNote.DistanceToPreviousStaccatoNote = xx
	label.CurrNote.DistanceToNextStaccatoCentisecond = xx
	label.CurrNote.DistanceToPreviousStaccatoCentisecond = xx
	label.CurrNote.DistanceToNextStaccatoTriplet32nd = xx
	label.CurrNote.DistanceToPreviousStaccatoTriplet32nd = xx

	label.CurrNote.CrescendoPositionNoteForward = xx
	label.CurrNote.CrescendoPositionNoteBackward = xx
	label.CurrNote.CrescendoPositionSecondForward = xx
	label.CurrNote.CrescendoPositionSecondBackward = xx
	label.CurrNote.CrescendoPositionTriplet32ndFwd = xx
	label.CurrNote.CrescendoPositionTriplet32ndBwd = xx
	label.CurrNote.CrescendoPositionPercentForward = xx
	label.CurrNote.CrescendoPositionPercentBackward = xx

	label.CurrNote.DecrescendoPositionNoteForward = xx
	label.CurrNote.DecrescendoPositionNoteBackward = xx
	label.CurrNote.DecrescendoPositionSecondForward = xx
	label.CurrNote.DecrescendoPositionSecondBackward = xx
	label.CurrNote.DecrescendoPositionTriplet32ndFwd = xx
	label.CurrNote.DecrescendoPositionTriplet32ndBwd = xx
	label.CurrNote.DecrescendoPositionPercentForward = xx
	label.CurrNote.DecrescendoPositionPercentBackward = xx

	label.CurrNote.PitchDifferenceFromPreviousNote = xx
	if noteIndex+1 < len(notes) && curr.Pitch != nil && notes[noteIndex+1].Pitch != nil {
		label.CurrNote.PitchDifferenceToNextNote = FormatPitchDifference(*curr.Pitch, *notes[noteIndex+1].Pitch)
	} else {
		label.CurrNote.PitchDifferenceToNextNote = xx
	}
	label.CurrNote.Reserved2 = xx
	label.CurrNote.Reserved3 = xx
}

func pitchNameOrXX(pitch *int) string {
	if pitch == nil {
		return xx
	}
	return MidiToNoteName(*pitch)
}

func relativePitchOrXX(pitch *int) string {
	if pitch == nil {
		return xx
	}
	pc := ((*pitch % 12) + 12) % 12
	return strconv.Itoa(pc)
}

func noteCtxFor(notes []Note, idx int, present bool, tempo float64, beat string) NoteContext {
	if !present || idx < 0 || idx >= len(notes) {
		return NoteContext{AbsolutePitch: xx, RelativePitch: xx, KeySignature: xx, Beat: xx, Tempo: xx, LengthSyllable: xx, LengthCentisecond: xx, LengthTriplet32nd: xx, Reserved: xx}
	}
	n := notes[idx]
	length := int32(n.Length)
	return NoteContext{
		AbsolutePitch:     pitchNameOrXX(n.Pitch),
		RelativePitch:     relativePitchOrXX(n.Pitch),
		KeySignature:      "0",
		Beat:              beat,
		Tempo:             strconv.FormatFloat(tempo, 'f', -1, 64),
		LengthSyllable:    "1",
		LengthCentisecond: strconv.Itoa(int(lengthTriplet32ndToCentiseconds(length, tempo))),
		LengthTriplet32nd: strconv.Itoa(int(length)),
		Reserved:          xx,
	}
}

func fillPhraseAndSongContexts(label *Label, notes []Note) {
	total := 0
	for _, n := range notes {
		total += len(n.Phonemes)
	}
	label.PrevPhrase = PhraseContext{SyllableCount: xx, PhonemeCount: xx}
	label.CurrPhrase = PhraseContext{SyllableCount: strconv.Itoa(len(notes)), PhonemeCount: strconv.Itoa(total)}
	label.NextPhrase = PhraseContext{SyllableCount: xx, PhonemeCount: xx}
	label.Song = SongContext{SyllablePerMeasure: xx, PhonemePerMeasure: xx, PhraseCount: "1"}
}
