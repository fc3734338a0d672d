// ABOUTME: Collation weight table for Persian text
// ABOUTME: Places the Persian extension letters at their phonetic position

package natural

// persianAlphabet lists the letters in dictionary order. Arabic code points
// that show up in Persian text sit right after their Persian counterpart.
var persianAlphabet = []rune{
	'آ', 'ا', 'أ', 'إ',
	'ب', 'پ', // Pe after Be
	'ت', 'ث',
	'ج', 'چ', // Che after Jim
	'ح', 'خ', 'د', 'ذ', 'ر',
	'ز', 'ژ', // Zhe after Ze
	'س', 'ش', 'ص', 'ض', 'ط', 'ظ', 'ع', 'غ', 'ف', 'ق',
	'ک', 'ك',
	'گ', // Gaf after Kaf
	'ل', 'م', 'ن',
	'و', 'ؤ',
	'ه', 'ۀ',
	'ی', 'ي', 'ئ',
}

// Ranks of runes outside the table are their code point shifted left by
// rankShift. The whole alphabet is packed into the gap right above Hamza
// (U+0621), which no other rune can land in.
const (
	rankShift = 8
	rankBase  = uint32('ء') << rankShift
)

var weights map[rune]uint32

func init() {
	if len(persianAlphabet) >= 1<<rankShift {
		panic("collation table does not fit below the next code point")
	}
	weights = make(map[rune]uint32, len(persianAlphabet))
	for i, r := range persianAlphabet {
		if _, dup := weights[r]; dup {
			panic("duplicate rune in collation table")
		}
		weights[r] = rankBase + uint32(i) + 1
	}
}

// Rank returns the collation weight of r. Distinct runes always get
// distinct ranks.
func Rank(r rune) uint32 {
	if w, ok := weights[r]; ok {
		return w
	}
	return uint32(r) << rankShift
}
