package tunebridge

import (
	"fmt"
	"regexp"
	"strings"
)

// Fields are opaque strings; "xx" is the distinguished "not applicable"
// sentinel used throughout the backend's context-label format. No field is
// ever validated against a closed set of values here — the backend owns
// that contract, this package only owns the punctuation.
const xx = "xx"

// PhonemeContext is section P of a label line (16 fields).
type PhonemeContext struct {
	LanguageIndependentPhonemeID string
	PhonemeIDTwoBefore           string
	PhonemeIDPrevious            string
	PhonemeIDCurrent             string
	PhonemeIDNext                string
	PhonemeIDTwoAfter            string
	PhonemeFlagTwoBefore         string
	PhonemeFlagBefore            string
	PhonemeFlagCurrent           string
	PhonemeFlagNext              string
	PhonemeFlagTwoAfter          string
	SyllablePhonemePositionFwd   string
	SyllablePhonemePositionBwd   string
	DistanceFromPrevVowel        string
	DistanceToNextVowel          string
	Reserved                     string
}

// SyllableContext is sections A/B/C of a label line (5 fields each).
type SyllableContext struct {
	PhonemeCount              string
	NotePositionForward       string
	NotePositionBackward      string
	Language                  string
	LanguageDependentContext  string
}

// NoteContext is sections D/F of a label line (9 fields) — used for the
// previous and next note, which carry no measure/phrase/dynamics detail.
type NoteContext struct {
	AbsolutePitch      string
	RelativePitch      string
	KeySignature       string
	Beat               string
	Tempo              string
	LengthSyllable     string
	LengthCentisecond  string
	LengthTriplet32nd  string
	Reserved           string
}

// CurrNoteContext is section E of a label line (60 fields) — the fully
// elaborated current-note context.
type CurrNoteContext struct {
	AbsolutePitch     string
	RelativePitch     string
	KeySignature      string
	Beat              string
	Tempo             string
	LengthSyllable    string
	LengthCentisecond string
	LengthTriplet32nd string
	Reserved          string

	MeasureNotePositionNoteForward       string
	MeasureNotePositionNoteBackward      string
	MeasureNotePositionCentisecondFwd    string
	MeasureNotePositionCentisecondBwd    string
	MeasureNotePositionTriplet32ndFwd    string
	MeasureNotePositionTriplet32ndBwd    string
	MeasureNotePositionPercentForward    string
	MeasureNotePositionPercentBackward   string

	PhraseNotePositionNoteForward      string
	PhraseNotePositionNoteBackward     string
	PhraseNotePositionCentisecondFwd   string
	PhraseNotePositionCentisecondBwd   string
	PhraseNotePositionTriplet32ndFwd   string
	PhraseNotePositionTriplet32ndBwd   string
	PhraseNotePositionPercentForward   string
	PhraseNotePositionPercentBackward  string

	SlurWithPrevious string
	SlurWithNext     string
	DynamicMark      string

	DistanceToNextAccentNote               string
	DistanceToPreviousAccentNote            string
	DistanceToNextAccentCentisecond         string
	DistanceToPreviousAccentCentisecond     string
	DistanceToNextAccentTriplet32nd         string
	DistanceToPreviousAccentTriplet32nd     string
	DistanceToNextStaccatoNote              string
	DistanceToPreviousStaccatoNote          string
	DistanceToNextStaccatoCentisecond       string
	DistanceToPreviousStaccatoCentisecond   string
	DistanceToNextStaccatoTriplet32nd       string
	DistanceToPreviousStaccatoTriplet32nd   string

	CrescendoPositionNoteForward      string
	CrescendoPositionNoteBackward     string
	CrescendoPositionSecondForward    string
	CrescendoPositionSecondBackward   string
	CrescendoPositionTriplet32ndFwd   string
	CrescendoPositionTriplet32ndBwd   string
	CrescendoPositionPercentForward   string
	CrescendoPositionPercentBackward  string

	DecrescendoPositionNoteForward      string
	DecrescendoPositionNoteBackward     string
	DecrescendoPositionSecondForward    string
	DecrescendoPositionSecondBackward   string
	DecrescendoPositionTriplet32ndFwd   string
	DecrescendoPositionTriplet32ndBwd   string
	DecrescendoPositionPercentForward   string
	DecrescendoPositionPercentBackward  string

	PitchDifferenceFromPreviousNote string
	PitchDifferenceToNextNote       string
	Reserved2                       string
	Reserved3                       string
}

// PhraseContext is sections G/H/I of a label line (2 fields each).
type PhraseContext struct {
	SyllableCount string
	PhonemeCount  string
}

// SongContext is section J of a label line (3 fields).
type SongContext struct {
	SyllablePerMeasure string
	PhonemePerMeasure  string
	PhraseCount        string
}

// Label is one fully-specified HTS-style context label line: eleven
// sections, 118 opaque string fields total. Every field is preserved
// verbatim through parse/emit regardless of whether this package
// recognizes its meaning.
type Label struct {
	Phoneme PhonemeContext

	PrevSyllable SyllableContext
	CurrSyllable SyllableContext
	NextSyllable SyllableContext

	PrevNote NoteContext
	CurrNote CurrNoteContext
	NextNote NoteContext

	PrevPhrase PhraseContext
	CurrPhrase PhraseContext
	NextPhrase PhraseContext

	Song SongContext
}

// String emits the label's canonical textual form. For any line L that
// ParseLabel accepts, ParseLabel(L).String() == L.
func (l Label) String() string {
	var b strings.Builder
	b.Grow(512)

	p := l.Phoneme
	fmt.Fprintf(&b, "%s@%s^%s-%s+%s=%s_%s%%%s^%s_%s~%s-%s!%s[%s$%s]%s",
		p.LanguageIndependentPhonemeID, p.PhonemeIDTwoBefore, p.PhonemeIDPrevious,
		p.PhonemeIDCurrent, p.PhonemeIDNext, p.PhonemeIDTwoAfter,
		p.PhonemeFlagTwoBefore, p.PhonemeFlagBefore, p.PhonemeFlagCurrent,
		p.PhonemeFlagNext, p.PhonemeFlagTwoAfter,
		p.SyllablePhonemePositionFwd, p.SyllablePhonemePositionBwd,
		p.DistanceFromPrevVowel, p.DistanceToNextVowel, p.Reserved)

	a := l.PrevSyllable
	fmt.Fprintf(&b, "/A:%s-%s-%s@%s~%s", a.PhonemeCount, a.NotePositionForward, a.NotePositionBackward, a.Language, a.LanguageDependentContext)

	bb := l.CurrSyllable
	fmt.Fprintf(&b, "/B:%s_%s_%s@%s|%s", bb.PhonemeCount, bb.NotePositionForward, bb.NotePositionBackward, bb.Language, bb.LanguageDependentContext)

	c := l.NextSyllable
	fmt.Fprintf(&b, "/C:%s+%s+%s@%s&%s", c.PhonemeCount, c.NotePositionForward, c.NotePositionBackward, c.Language, c.LanguageDependentContext)

	d := l.PrevNote
	fmt.Fprintf(&b, "/D:%s!%s#%s$%s%%%s|%s&%s;%s-%s", d.AbsolutePitch, d.RelativePitch, d.KeySignature, d.Beat, d.Tempo, d.LengthSyllable, d.LengthCentisecond, d.LengthTriplet32nd, d.Reserved)

	e := l.CurrNote
	fmt.Fprintf(&b, "/E:%s]%s^%s=%s~%s!%s@%s#%s+%s]%s$%s|%s[%s&%s]%s=%s^%s~%s#%s_%s;%s$%s&%s%%%s[%s|%s]%s-%s^%s+%s~%s=%s@%s$%s!%s%%%s#%s|%s|%s-%s&%s&%s+%s[%s;%s]%s;%s~%s~%s^%s^%s@%s[%s#%s=%s!%s~%s+%s!%s^%s",
		e.AbsolutePitch, e.RelativePitch, e.KeySignature, e.Beat, e.Tempo, e.LengthSyllable, e.LengthCentisecond, e.LengthTriplet32nd, e.Reserved,
		e.MeasureNotePositionNoteForward, e.MeasureNotePositionNoteBackward, e.MeasureNotePositionCentisecondFwd, e.MeasureNotePositionCentisecondBwd,
		e.MeasureNotePositionTriplet32ndFwd, e.MeasureNotePositionTriplet32ndBwd, e.MeasureNotePositionPercentForward, e.MeasureNotePositionPercentBackward,
		e.PhraseNotePositionNoteForward, e.PhraseNotePositionNoteBackward, e.PhraseNotePositionCentisecondFwd, e.PhraseNotePositionCentisecondBwd,
		e.PhraseNotePositionTriplet32ndFwd, e.PhraseNotePositionTriplet32ndBwd, e.PhraseNotePositionPercentForward, e.PhraseNotePositionPercentBackward,
		e.SlurWithPrevious, e.SlurWithNext, e.DynamicMark,
		e.DistanceToNextAccentNote, e.DistanceToPreviousAccentNote, e.DistanceToNextAccentCentisecond, e.DistanceToPreviousAccentCentisecond,
		e.DistanceToNextAccentTriplet32nd, e.DistanceToPreviousAccentTriplet32nd,
		e.DistanceToNextStaccatoNote, e.DistanceToPreviousStaccatoNote, e.DistanceToNextStaccatoCentisecond, e.DistanceToPreviousStaccatoCentisecond,
		e.DistanceToNextStaccatoTriplet32nd, e.DistanceToPreviousStaccatoTriplet32nd,
		e.CrescendoPositionNoteForward, e.CrescendoPositionNoteBackward, e.CrescendoPositionSecondForward, e.CrescendoPositionSecondBackward,
		e.CrescendoPositionTriplet32ndFwd, e.CrescendoPositionTriplet32ndBwd, e.CrescendoPositionPercentForward, e.CrescendoPositionPercentBackward,
		e.DecrescendoPositionNoteForward, e.DecrescendoPositionNoteBackward, e.DecrescendoPositionSecondForward, e.DecrescendoPositionSecondBackward,
		e.DecrescendoPositionTriplet32ndFwd, e.DecrescendoPositionTriplet32ndBwd, e.DecrescendoPositionPercentForward, e.DecrescendoPositionPercentBackward,
		e.PitchDifferenceFromPreviousNote, e.PitchDifferenceToNextNote, e.Reserved2, e.Reserved3)

	f := l.NextNote
	fmt.Fprintf(&b, "/F:%s#%s#%s-%s$%s$%s+%s%%%s;%s", f.AbsolutePitch, f.RelativePitch, f.KeySignature, f.Beat, f.Tempo, f.LengthSyllable, f.LengthCentisecond, f.LengthTriplet32nd, f.Reserved)

	fmt.Fprintf(&b, "/G:%s_%s", l.PrevPhrase.SyllableCount, l.PrevPhrase.PhonemeCount)
	fmt.Fprintf(&b, "/H:%s_%s", l.CurrPhrase.SyllableCount, l.CurrPhrase.PhonemeCount)
	fmt.Fprintf(&b, "/I:%s_%s", l.NextPhrase.SyllableCount, l.NextPhrase.PhonemeCount)
	fmt.Fprintf(&b, "/J:%s~%s@%s", l.Song.SyllablePerMeasure, l.Song.PhonemePerMeasure, l.Song.PhraseCount)

	return b.String()
}

var (
	reRoot = regexp.MustCompile(`^(.*?)/A:(.*?)/B:(.*?)/C:(.*?)/D:(.*?)/E:(.*?)/F:(.*?)/G:(.*?)/H:(.*?)/I:(.*?)/J:(.*)$`)
	reP    = regexp.MustCompile(`^(.+?)@(.+?)\^(.+?)-(.+?)\+(.+?)=(.+?)_(.+?)%(.+?)\^(.+?)_(.+?)~(.+?)-(.+?)!(.+?)\[(.+?)\$(.+?)\](.+?)$`)
	reA    = regexp.MustCompile(`^(.+?)-(.+?)-(.+?)@(.+?)~(.+?)$`)
	reB    = regexp.MustCompile(`^(.+?)_(.+?)_(.+?)@(.+?)\|(.+?)$`)
	reC    = regexp.MustCompile(`^(.+?)\+(.+?)\+(.+?)@(.+?)&(.+?)$`)
	reD    = regexp.MustCompile(`^(.+?)!(.+?)#(.+?)\$(.+?)%(.+?)\|(.+?)&(.+?);(.+?)-(.+?)$`)
	reE    = regexp.MustCompile(`^(.+?)\](.+?)\^(.+?)=(.+?)~(.+?)!(.+?)@(.+?)#(.+?)\+(.+?)\](.+?)\$(.+?)\|(.+?)\[(.+?)&(.+?)\](.+?)=(.+?)\^(.+?)~(.+?)#(.+?)_(.+?);(.+?)\$(.+?)&(.+?)%(.+?)\[(.+?)\|(.+?)\](.+?)-(.+?)\^(.+?)\+(.+?)~(.+?)=(.+?)@(.+?)\$(.+?)!(.+?)%(.+?)#(.+?)\|(.+?)\|(.+?)-(.+?)&(.+?)&(.+?)\+(.+?)\[(.+?);(.+?)\](.+?);(.+?)~(.+?)~(.+?)\^(.+?)\^(.+?)@(.+?)\[(.+?)#(.+?)=(.+?)!(.+?)~(.+?)\+(.+?)!(.+?)\^(.+?)$`)
	reF    = regexp.MustCompile(`^(.+?)#\s*(.+?)#\s*(.+?)-\s*(.+?)\$\s*(.+?)\$\s*(.+?)\+\s*(.+?)%\s*(.+?);\s*(.+?)$`)
	reGHI  = regexp.MustCompile(`^(.+?)_(.+?)$`)
	reJ    = regexp.MustCompile(`^(.+?)~(.+?)@_*(.+?)$`)
)

func captureFields(re *regexp.Regexp, input string, expected int, section string) ([]string, error) {
	m := re.FindStringSubmatch(input)
	if m == nil {
		return nil, &ParseError{Section: section, Message: fmt.Sprintf("format mismatch: %s", input)}
	}
	fields := make([]string, expected)
	for i := 0; i < expected; i++ {
		fields[i] = strings.TrimSpace(m[i+1])
	}
	return fields, nil
}

// ParseLabel parses one textual label line into a Label. Unknown numeric
// values are never validated — every field is preserved as an opaque string.
func ParseLabel(line string) (Label, error) {
	m := reRoot.FindStringSubmatch(line)
	if m == nil {
		return Label{}, &ParseError{Section: "root", Message: "missing required /A..../J sections"}
	}

	var label Label
	var err error

	pf, err := captureFields(reP, strings.TrimSpace(m[1]), 16, "P")
	if err != nil {
		return Label{}, err
	}
	label.Phoneme = PhonemeContext{
		LanguageIndependentPhonemeID: pf[0], PhonemeIDTwoBefore: pf[1], PhonemeIDPrevious: pf[2],
		PhonemeIDCurrent: pf[3], PhonemeIDNext: pf[4], PhonemeIDTwoAfter: pf[5],
		PhonemeFlagTwoBefore: pf[6], PhonemeFlagBefore: pf[7], PhonemeFlagCurrent: pf[8],
		PhonemeFlagNext: pf[9], PhonemeFlagTwoAfter: pf[10],
		SyllablePhonemePositionFwd: pf[11], SyllablePhonemePositionBwd: pf[12],
		DistanceFromPrevVowel: pf[13], DistanceToNextVowel: pf[14], Reserved: pf[15],
	}

	af, err := captureFields(reA, strings.TrimSpace(m[2]), 5, "A")
	if err != nil {
		return Label{}, err
	}
	label.PrevSyllable = syllableFromFields(af)

	bf, err := captureFields(reB, strings.TrimSpace(m[3]), 5, "B")
	if err != nil {
		return Label{}, err
	}
	label.CurrSyllable = syllableFromFields(bf)

	cf, err := captureFields(reC, strings.TrimSpace(m[4]), 5, "C")
	if err != nil {
		return Label{}, err
	}
	label.NextSyllable = syllableFromFields(cf)

	df, err := captureFields(reD, strings.TrimSpace(m[5]), 9, "D")
	if err != nil {
		return Label{}, err
	}
	label.PrevNote = noteFromFields(df)

	ef, err := captureFields(reE, strings.TrimSpace(m[6]), 60, "E")
	if err != nil {
		return Label{}, err
	}
	label.CurrNote = currNoteFromFields(ef)

	ff, err := captureFields(reF, strings.TrimSpace(m[7]), 9, "F")
	if err != nil {
		return Label{}, err
	}
	label.NextNote = noteFromFields(ff)

	gf, err := captureFields(reGHI, strings.TrimSpace(m[8]), 2, "G")
	if err != nil {
		return Label{}, err
	}
	label.PrevPhrase = PhraseContext{SyllableCount: gf[0], PhonemeCount: gf[1]}

	hf, err := captureFields(reGHI, strings.TrimSpace(m[9]), 2, "H")
	if err != nil {
		return Label{}, err
	}
	label.CurrPhrase = PhraseContext{SyllableCount: hf[0], PhonemeCount: hf[1]}

	ifl, err := captureFields(reGHI, strings.TrimSpace(m[10]), 2, "I")
	if err != nil {
		return Label{}, err
	}
	label.NextPhrase = PhraseContext{SyllableCount: ifl[0], PhonemeCount: ifl[1]}

	jf, err := captureFields(reJ, strings.TrimSpace(m[11]), 3, "J")
	if err != nil {
		return Label{}, err
	}
	label.Song = SongContext{SyllablePerMeasure: jf[0], PhonemePerMeasure: jf[1], PhraseCount: jf[2]}

	return label, nil
}

func syllableFromFields(f []string) SyllableContext {
	return SyllableContext{
		PhonemeCount: f[0], NotePositionForward: f[1], NotePositionBackward: f[2],
		Language: f[3], LanguageDependentContext: f[4],
	}
}

func noteFromFields(f []string) NoteContext {
	return NoteContext{
		AbsolutePitch: f[0], RelativePitch: f[1], KeySignature: f[2], Beat: f[3], Tempo: f[4],
		LengthSyllable: f[5], LengthCentisecond: f[6], LengthTriplet32nd: f[7], Reserved: f[8],
	}
}

func currNoteFromFields(f []string) CurrNoteContext {
	return CurrNoteContext{
		AbsolutePitch: f[0], RelativePitch: f[1], KeySignature: f[2], Beat: f[3], Tempo: f[4],
		LengthSyllable: f[5], LengthCentisecond: f[6], LengthTriplet32nd: f[7], Reserved: f[8],

		MeasureNotePositionNoteForward: f[9], MeasureNotePositionNoteBackward: f[10],
		MeasureNotePositionCentisecondFwd: f[11], MeasureNotePositionCentisecondBwd: f[12],
		MeasureNotePositionTriplet32ndFwd: f[13], MeasureNotePositionTriplet32ndBwd: f[14],
		MeasureNotePositionPercentForward: f[15], MeasureNotePositionPercentBackward: f[16],

		PhraseNotePositionNoteForward: f[17], PhraseNotePositionNoteBackward: f[18],
		PhraseNotePositionCentisecondFwd: f[19], PhraseNotePositionCentisecondBwd: f[20],
		PhraseNotePositionTriplet32ndFwd: f[21], PhraseNotePositionTriplet32ndBwd: f[22],
		PhraseNotePositionPercentForward: f[23], PhraseNotePositionPercentBackward: f[24],

		SlurWithPrevious: f[25], SlurWithNext: f[26], DynamicMark: f[27],

		DistanceToNextAccentNote: f[28], DistanceToPreviousAccentNote: f[29],
		DistanceToNextAccentCentisecond: f[30], DistanceToPreviousAccentCentisecond: f[31],
		DistanceToNextAccentTriplet32nd: f[32], DistanceToPreviousAccentTriplet32nd: f[33],
		DistanceToNextStaccatoNote: f[34], DistanceToPreviousStaccatoNote: f[35],
		DistanceToNextStaccatoCentisecond: f[36], DistanceToPreviousStaccatoCentisecond: f[37],
		DistanceToNextStaccatoTriplet32nd: f[38], DistanceToPreviousStaccatoTriplet32nd: f[39],

		CrescendoPositionNoteForward: f[40], CrescendoPositionNoteBackward: f[41],
		CrescendoPositionSecondForward: f[42], CrescendoPositionSecondBackward: f[43],
		CrescendoPositionTriplet32ndFwd: f[44], CrescendoPositionTriplet32ndBwd: f[45],
		CrescendoPositionPercentForward: f[46], CrescendoPositionPercentBackward: f[47],

		DecrescendoPositionNoteForward: f[48], DecrescendoPositionNoteBackward: f[49],
		DecrescendoPositionSecondForward: f[50], DecrescendoPositionSecondBackward: f[51],
		DecrescendoPositionTriplet32ndFwd: f[52], DecrescendoPositionTriplet32ndBwd: f[53],
		DecrescendoPositionPercentForward: f[54], DecrescendoPositionPercentBackward: f[55],

		PitchDifferenceFromPreviousNote: f[56], PitchDifferenceToNextNote: f[57],
		Reserved2: f[58], Reserved3: f[59],
	}
}
