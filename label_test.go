package tunebridge

import "testing"

func TestParseLabelRoundTrip(t *testing.T) {
	line := templateLabelLine
	label, err := ParseLabel(line)
	if err != nil {
		t.Fatalf("ParseLabel failed: %v", err)
	}
	if got := label.String(); got != line {
		t.Errorf("round trip mismatch:\n got: %s\nwant: %s", got, line)
	}
}

func TestParseLabelFieldExtraction(t *testing.T) {
	label, err := ParseLabel(templateLabelLine)
	if err != nil {
		t.Fatalf("ParseLabel failed: %v", err)
	}
	if label.Phoneme.PhonemeIDCurrent != "pau" {
		t.Errorf("PhonemeIDCurrent = %q, want pau", label.Phoneme.PhonemeIDCurrent)
	}
	if label.NextSyllable.Language != "JPN" {
		t.Errorf("NextSyllable.Language = %q, want JPN", label.NextSyllable.Language)
	}
	if label.Song.PhraseCount != "1" {
		t.Errorf("Song.PhraseCount = %q, want 1", label.Song.PhraseCount)
	}
}

func TestParseLabelRejectsMalformedLine(t *testing.T) {
	if _, err := ParseLabel("not a label line"); err == nil {
		t.Errorf("expected error for malformed line")
	}
}

func TestParseLabelRejectsTruncatedSection(t *testing.T) {
	// Drop the /J section entirely.
	truncated := "p@xx^xx-pau+r=a_xx%xx^00_00~00-1!1[xx$xx]xx/A:xx-xx-xx@xx~xx/B:1_1_1@xx|xx/C:2+1+1@JPN&0/D:xx!xx#xx$xx%xx|xx&xx;xx-xx/E:xx]xx^0=4/4~100!1@240#96+xx]1$1|0[24&0]96=0^100~xx#xx_xx;xx$xx&xx%xx[xx|0]0-n^xx+xx~xx=xx@xx$xx!xx%xx#xx|xx|xx-xx&xx&xx+xx[xx;xx]xx;xx~xx~xx^xx^xx@xx[xx#xx=xx!xx~xx+xx!xx^xx/F:C5#0#0-4/4$100$1+60%24;xx/G:xx_xx/H:xx_xx/I:8_8"
	if _, err := ParseLabel(truncated); err == nil {
		t.Errorf("expected error for missing /J section")
	}
}
