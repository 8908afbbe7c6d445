package tunebridge

import "strings"

// toKatakana normalizes hiragana runes to their katakana equivalents,
// leaving already-katakana and any other runes untouched. It mirrors the
// narrow hiragana-to-katakana shift used by kana-normalization crates: every
// hiragana codepoint in U+3041..U+3096 is exactly 0x60 below its katakana
// counterpart.
func toKatakana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x3041 && r <= 0x3096 {
			r += 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// moraTable maps a single katakana mora (one or two characters) to
// its phoneme sequence, grounded on the backend's built-in romanization
// table. Bare phoneme symbols (plain ASCII) are not part of this table —
// they pass through unchanged via lyricToPhonemes's early-return rule.
var moraTable = map[string][]string{
	"ア": {"a"}, "イ": {"i"}, "ウ": {"u"}, "エ": {"e"}, "オ": {"o"},
	"キャ": {"ky", "a"}, "キュ": {"ky", "u"}, "キェ": {"ky", "e"}, "キョ": {"ky", "o"},
	"カ": {"k", "a"}, "キ": {"k", "i"}, "ク": {"k", "u"}, "ケ": {"k", "e"}, "コ": {"k", "o"},
	"シャ": {"sh", "a"}, "スィ": {"s", "i"}, "シュ": {"sh", "u"}, "シェ": {"sh", "e"}, "ショ": {"sh", "o"},
	"サ": {"s", "a"}, "シ": {"sh", "i"}, "ス": {"s", "u"}, "セ": {"s", "e"}, "ソ": {"s", "o"},
	"チャ": {"ch", "a"}, "チュ": {"ch", "u"}, "チェ": {"ch", "e"}, "チョ": {"ch", "o"},
	"タ": {"t", "a"}, "チ": {"ch", "i"}, "ツ": {"ts", "u"}, "テ": {"t", "e"}, "ト": {"t", "o"},
	"ツァ": {"ts", "a"}, "ツィ": {"ts", "i"}, "ツェ": {"ts", "e"}, "ツォ": {"ts", "o"},
	"ナ": {"n", "a"}, "ニ": {"n", "i"}, "ヌ": {"n", "u"}, "ネ": {"n", "e"}, "ノ": {"n", "o"},
	"ニャ": {"ny", "a"}, "ニュ": {"ny", "u"}, "ニェ": {"ny", "e"}, "ニョ": {"ny", "o"},
	"ハ": {"h", "a"}, "ヒ": {"h", "i"}, "フ": {"h", "u"}, "ヘ": {"h", "e"}, "ホ": {"h", "o"},
	"ヒャ": {"hy", "a"}, "ヒュ": {"hy", "u"}, "ヒェ": {"hy", "e"}, "ヒョ": {"hy", "o"},
	"マ": {"m", "a"}, "ミ": {"m", "i"}, "ム": {"m", "u"}, "メ": {"m", "e"}, "モ": {"m", "o"},
	"ファ": {"f", "a"}, "フィ": {"f", "i"}, "フェ": {"f", "e"}, "フォ": {"f", "o"},
	"ヤ": {"y", "a"}, "ユ": {"y", "u"}, "イェ": {"y", "e"}, "ヨ": {"y", "o"},
	"ミャ": {"my", "a"}, "ミュ": {"my", "u"}, "ミェ": {"my", "e"}, "ミョ": {"my", "o"},
	"ラ": {"r", "a"}, "リ": {"r", "i"}, "ル": {"r", "u"}, "レ": {"r", "e"}, "ロ": {"r", "o"},
	"リャ": {"ry", "a"}, "リュ": {"ry", "u"}, "リェ": {"ry", "e"}, "リョ": {"ry", "o"},
	"ワ": {"w", "a"}, "ヲ": {"o"},
	"ギャ": {"gy", "a"}, "ギュ": {"gy", "u"}, "ギェ": {"gy", "e"}, "ギョ": {"gy", "o"},
	"ジャ": {"j", "a"}, "ジュ": {"j", "u"}, "ジェ": {"j", "e"}, "ジョ": {"j", "o"},
	"ガ": {"g", "a"}, "ギ": {"g", "i"}, "グ": {"g", "u"}, "ゲ": {"g", "e"}, "ゴ": {"g", "o"},
	"ビャ": {"by", "a"}, "ビュ": {"by", "u"}, "ビェ": {"by", "e"}, "ビョ": {"by", "o"},
	"ザ": {"z", "a"}, "ジ": {"j", "i"}, "ズ": {"z", "u"}, "ゼ": {"z", "e"}, "ゾ": {"z", "o"},
	"ピャ": {"py", "a"}, "ピュ": {"py", "u"}, "ピェ": {"py", "e"}, "ピョ": {"py", "o"},
	"ダ": {"d", "a"}, "ヂ": {"j", "i"}, "ヅ": {"z", "u"}, "デ": {"d", "e"}, "ド": {"d", "o"},
	"ヴァ": {"v", "a"}, "ヴィ": {"v", "i"}, "ヴ": {"v", "u"}, "ヴェ": {"v", "e"}, "ヴォ": {"v", "o"},
	"バ": {"b", "a"}, "ビ": {"b", "i"}, "ブ": {"b", "u"}, "ベ": {"b", "e"}, "ボ": {"b", "o"},
	"ウィ": {"w", "i"}, "ウェ": {"w", "e"}, "ウォ": {"w", "o"},
	"パ": {"p", "a"}, "ピ": {"p", "i"}, "プ": {"p", "u"}, "ペ": {"p", "e"}, "ポ": {"p", "o"},
	"ディ": {"d", "i"}, "デュ": {"dy", "u"}, "トゥ": {"t", "u"}, "ドゥ": {"d", "u"},
	"ン": {"N"}, "ッ": {"cl"},
	"ズィ": {"z", "i"},
}

// barePhonemes is the set of phoneme symbols callers may pass directly
// instead of a kana mora. They pass through lyricToPhonemes unchanged.
var barePhonemes = buildBarePhonemeSet()

func buildBarePhonemeSet() map[string]bool {
	set := map[string]bool{"N": true, "cl": true, "pau": true, "sil": true}
	for c := 'a'; c <= 'v'; c++ {
		set[string(c)] = true
	}
	return set
}

// lyricToPhonemes converts one syllable token to its phoneme sequence. A
// token already matching a bare phoneme symbol (the ASCII "a".."v" range,
// "N", "cl", "pau", "sil") passes through unchanged; everything else is
// normalized to katakana and looked up in the mora table.
func lyricToPhonemes(mora string) ([]string, error) {
	if barePhonemes[mora] {
		return []string{mora}, nil
	}
	katakana := toKatakana(mora)
	if phonemes, ok := moraTable[katakana]; ok {
		out := make([]string, len(phonemes))
		copy(out, phonemes)
		return out, nil
	}
	return nil, &InputValidationError{Message: "unsupported mora: " + mora}
}
