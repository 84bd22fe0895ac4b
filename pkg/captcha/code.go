package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeLength is the number of characters of a captcha code
const CodeLength = 8

// alphabet leaves out characters that are easy to confuse: 0/O, 1/I/L
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// zero width characters inserted in text captchas to detect copy and paste
const (
	zeroWidthJoiner = "\u200d"
	zeroWidthSpace  = "\u200b"
)

// NewCode returns a random code
func NewCode() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			sb.WriteByte(alphabet[i%len(alphabet)])
			continue
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String()
}

// Obfuscate joins the code characters with zero width joiners so pasted answers can be spotted
func Obfuscate(code string) string {
	return strings.Join(strings.Split(code, ""), zeroWidthJoiner)
}

// IsCopied reports whether answer was pasted from an obfuscated code
func IsCopied(answer string) bool {
	return strings.Contains(answer, zeroWidthJoiner) || strings.Contains(answer, zeroWidthSpace)
}

// Verify compares an answer with code, ignoring case and surrounding spaces.
// A pasted answer returns ErrCopiedCode.
func Verify(code, answer string) (bool, error) {
	if IsCopied(answer) {
		return false, ErrCopiedCode
	}
	answer = strings.ReplaceAll(strings.TrimSpace(answer), " ", "")
	return strings.EqualFold(answer, code), nil
}
