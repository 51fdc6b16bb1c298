package yahoo

import "strings"

// DefaultNumericSuffix is the Taiwan Stock Exchange suffix used for bare
// four-digit listing codes.
const DefaultNumericSuffix = ".TW"

// NormalizeSymbol turns user input into a chart API symbol.
// Input is trimmed and uppercased; exactly four ASCII digits get suffix
// appended, so "2330" becomes "2330.TW". Anything else is returned as is.
func NormalizeSymbol(input, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	if len(s) == 4 && isDigits(s) {
		return s + strings.ToUpper(suffix)
	}
	return s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
