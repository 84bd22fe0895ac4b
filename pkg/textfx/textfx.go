// Package textfx holds the text transformations behind the fun translator
// commands: leet, fliptext, fullwidth, emojify, eciho and encoders.
package textfx

import (
	"encoding/base64"
	"math/rand"
	"net/url"
	"strings"

	"emperror.dev/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// ErrUnknownEncoding is returned by Recode for unknown charsets
const ErrUnknownEncoding = errors.Sentinel("codificación desconocida")

var (
	upper = cases.Upper(language.Und)
	fold  = cases.Fold()
)

// runeMap builds a lookup table from two equally long strings
func runeMap(from, to string) map[rune]rune {
	f, t := []rune(from), []rune(to)
	m := make(map[rune]rune, len(f))
	for i := range f {
		if _, ok := m[f[i]]; !ok {
			m[f[i]] = t[i]
		}
	}
	return m
}

func translate(s string, table map[rune]rune) string {
	return strings.Map(func(r rune) rune {
		if t, ok := table[r]; ok {
			return t
		}
		return r
	}, s)
}

func withUpper(from, to string) map[rune]rune {
	m := runeMap(from, to)
	for k, v := range runeMap(upper.String(from), upper.String(to)) {
		m[k] = v
	}
	return m
}

var (
	ecihoCyrillic = withUpper("сзчшщжуюваёяэкгфйыъьд", "ццццццооооееехххииииб")
	ecihoLatin    = withUpper("uavwjyqkhfxdzs", "ooooiigggggbcc")
)

// Eciho converts text to "eciho": a lossy alphabet folding with repeated
// letters collapsed.
func Eciho(text string) string {
	text = translate(text, ecihoCyrillic)
	var b strings.Builder
	var last rune = -1
	for _, r := range text {
		if r != last {
			b.WriteRune(r)
		}
		last = r
	}
	return translate(b.String(), ecihoLatin)
}

const (
	flipUp   = "abcdefghijklmnopqrstuvwxyzабвгдежзиклмнопрстуфхцчшщъьэя.,!?()"
	flipDown = "ɐqɔpǝɟƃɥıɾʞlɯuodᕹɹsʇnʌʍxʎzɐƍʚɹɓǝжεиʞvwноudɔɯʎȸхǹҺmmqqєʁ˙‘¡¿)("
)

var (
	flipTable = func() map[rune]rune {
		m := runeMap(flipUp, flipDown)
		for k, v := range runeMap(flipDown, flipUp) {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
		return m
	}()
	flipMulti = strings.NewReplacer("ю", "oı", "ы", "ıq", "ё", "ǝ̤", "й", "n̯")
)

// FlipText turns text upside down
func FlipText(text string) string {
	r := []rune(translate(fold.String(text), flipTable))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return flipMulti.Replace(string(r))
}

// Fullwidth switches ASCII text to full-width forms
func Fullwidth(text string) string {
	return width.Widen.String(text)
}

// Chooser picks one of the options, rand.Intn in production
type Chooser func(n int) int

func (c Chooser) pick(opts ...string) string {
	if c == nil || len(opts) == 1 {
		return opts[0]
	}
	return opts[c(len(opts))]
}

// Leet translates latin text to 1337
func Leet(text string, choose Chooser) string {
	table := map[rune]string{
		'A': choose.pick("/-|", "4"), 'B': "8", 'C': choose.pick("(", "["), 'D': "|)",
		'E': "3", 'F': choose.pick("|=", "ph"), 'G': "6", 'H': "|-|",
		'I': choose.pick("|", "!", "1"), 'J': ")", 'K': choose.pick("|<", "|("),
		'L': choose.pick("|_", "1"), 'M': choose.pick(`|\/|`, `/\/\`), 'N': choose.pick(`|\|`, `/\/`),
		'O': choose.pick("0", "()"), 'P': "|>", 'Q': choose.pick("9", "0"), 'R': choose.pick("|?", "|2"),
		'S': choose.pick("5", "$"), 'T': choose.pick("7", "+"), 'U': "|_|", 'V': `\/`,
		'W': choose.pick(`\/\/`, `\X/`), 'X': choose.pick("*", "><"), 'Y': "'/", 'Z': "2",
	}
	return replaceRunes(upper.String(text), table)
}

// CyrillicLeet translates cyrillic text to 1337
func CyrillicLeet(text string, choose Chooser) string {
	table := map[rune]string{
		'А': "A", 'Б': "6", 'В': "B", 'Г': "r", 'Д': choose.pick("D", "g"), 'Е': "E", 'Ё': "E",
		'Ж': choose.pick("}|{", ">|<"), 'З': "3", 'И': choose.pick("u", "N"), 'Й': "u*", 'К': "K",
		'Л': choose.pick("JI", "/I"), 'М': "M", 'Н': "H", 'О': "O", 'П': choose.pick("II", "n", "/7"),
		'Р': "P", 'С': "C", 'Т': choose.pick("T", "m"), 'У': choose.pick("Y", "y"),
		'Ф': choose.pick("cp", "(|)", "qp"), 'Х': "X", 'Ц': choose.pick("U", "LL", "L|"), 'Ч': "4",
		'Ш': choose.pick("W", "LLI"), 'Щ': choose.pick("W", "LLL"), 'Ъ': choose.pick("~b", "`b"),
		'Ы': "bl", 'Ь': "b", 'Э': "-)", 'Ю': choose.pick("IO", "10"), 'Я': choose.pick("9", "9I"),
		'%': `o\o`,
	}
	return replaceRunes(upper.String(text), table)
}

func replaceRunes(s string, table map[rune]string) string {
	var b strings.Builder
	for _, r := range s {
		if t, ok := table[r]; ok {
			b.WriteString(t)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RandomChooser is the production Chooser
func RandomChooser() Chooser { return rand.Intn }

var (
	emojiTable = func() map[rune]string {
		from := []rune("abcdefghijklmnopqrstuvwxyz↓↑←→—.!")
		to := []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯", "🇰", "🇱", "🇲",
			"🇳", "🇴", "🇵", "🇶", "🇷", "🇸", "🇹", "🇺", "🇻", "🇼", "🇽", "🇾", "🇿",
			"⬇", "⬆", "⬅", "➡", "➖", "⏺", "ℹ"}
		m := make(map[rune]string, len(from)*2)
		for i, r := range from {
			m[r] = to[i]
			if u := []rune(upper.String(string(r))); len(u) == 1 && u[0] != r {
				m[u[0]] = to[i]
			}
		}
		return m
	}()
	emojiDigits = strings.NewReplacer(
		"0", ":zero:", "1", ":one:", "2", ":two:", "3", ":three:", "4", ":four:",
		"5", ":five:", "6", ":six:", "7", ":seven:", "8", ":eight:", "9", ":nine:",
		"#", "#⃣", "*", "*⃣",
	)
)

const zeroWidthSpace = "\u200b"

// Emojify spells text with regional indicators and keycap emoji. Symbols
// are separated by zero-width spaces so indicators never merge into flags.
func Emojify(text string) string {
	var b strings.Builder
	b.WriteString(zeroWidthSpace)
	for _, r := range text {
		switch e, ok := emojiTable[r]; {
		case ok:
			b.WriteString(e)
		case r == ' ':
			b.WriteString("　" + zeroWidthSpace + "　")
		default:
			b.WriteRune(r)
		}
		b.WriteString(zeroWidthSpace)
	}
	return emojiDigits.Replace(b.String())
}

// Base64Encode encodes text with the standard alphabet
func Base64Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Base64Decode decodes standard base64, tolerating missing padding
func Base64Decode(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	}
	if err != nil {
		return "", errors.WrapIf(err, "base64 inválido")
	}
	return string(data), nil
}

// URLEncode percent-encodes text, keeping slashes
func URLEncode(text string) string {
	return strings.ReplaceAll(url.PathEscape(text), "%2F", "/")
}

// Recode reinterprets text typed in one charset as another, which fixes
// mojibake such as "РїСЂРёРІРµС‚". Both names follow the WHATWG encoding list.
func Recode(text, from, to string) (string, error) {
	src, err := htmlindex.Get(from)
	if err != nil {
		return "", errors.WithStack(ErrUnknownEncoding)
	}
	dst, err := htmlindex.Get(to)
	if err != nil {
		return "", errors.WithStack(ErrUnknownEncoding)
	}
	raw, err := src.NewEncoder().String(text)
	if err != nil {
		return "", errors.WrapIf(err, "codificar")
	}
	out, err := dst.NewDecoder().String(raw)
	return out, errors.WrapIf(err, "decodificar")
}
