package tunebridge

import (
	"reflect"
	"testing"
)

func TestToKatakanaShiftsHiraganaOnly(t *testing.T) {
	if got := toKatakana("あ"); got != "ア" {
		t.Errorf("toKatakana(あ) = %q, want ア", got)
	}
	if got := toKatakana("ア"); got != "ア" {
		t.Errorf("toKatakana(ア) = %q, want ア (already katakana)", got)
	}
	if got := toKatakana("a"); got != "a" {
		t.Errorf("toKatakana(a) = %q, want a (untouched)", got)
	}
}

func TestLyricToPhonemesHiraganaAndKatakanaAgree(t *testing.T) {
	hira, err := lyricToPhonemes("か")
	if err != nil {
		t.Fatalf("lyricToPhonemes(か) failed: %v", err)
	}
	kata, err := lyricToPhonemes("カ")
	if err != nil {
		t.Fatalf("lyricToPhonemes(カ) failed: %v", err)
	}
	if !reflect.DeepEqual(hira, kata) {
		t.Errorf("hiragana/katakana mismatch: %v vs %v", hira, kata)
	}
	if !reflect.DeepEqual(kata, []string{"k", "a"}) {
		t.Errorf("lyricToPhonemes(カ) = %v, want [k a]", kata)
	}
}

func TestLyricToPhonemesPalatalized(t *testing.T) {
	got, err := lyricToPhonemes("キャ")
	if err != nil {
		t.Fatalf("lyricToPhonemes(キャ) failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ky", "a"}) {
		t.Errorf("lyricToPhonemes(キャ) = %v, want [ky a]", got)
	}
}

func TestLyricToPhonemesSpecialSymbols(t *testing.T) {
	cases := map[string][]string{
		"ン": {"N"},
		"ッ": {"cl"},
	}
	for input, want := range cases {
		got, err := lyricToPhonemes(input)
		if err != nil {
			t.Fatalf("lyricToPhonemes(%q) failed: %v", input, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("lyricToPhonemes(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLyricToPhonemesBarePhonemePassthrough(t *testing.T) {
	for _, bare := range []string{"a", "N", "cl", "pau", "sil"} {
		got, err := lyricToPhonemes(bare)
		if err != nil {
			t.Fatalf("lyricToPhonemes(%q) failed: %v", bare, err)
		}
		if !reflect.DeepEqual(got, []string{bare}) {
			t.Errorf("lyricToPhonemes(%q) = %v, want [%s]", bare, got, bare)
		}
	}
}

func TestLyricToPhonemesUnsupportedMora(t *testing.T) {
	if _, err := lyricToPhonemes("@@@"); err == nil {
		t.Errorf("expected error for unsupported mora")
	}
}

func TestMoraTableEntriesNonEmpty(t *testing.T) {
	for mora, phonemes := range moraTable {
		if len(phonemes) == 0 {
			t.Errorf("mora %q maps to an empty phoneme list", mora)
		}
	}
}
