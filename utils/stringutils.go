package utils

import (
	"strings"
	"unicode"

	"github.com/EOS-Nation/eosn-proxy/constdef"
)

func IsBlank(str string) bool {
	if str == "" {
		return true
	}

	for _, c := range str {
		if !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

// IsValidAccount reports whether name is a well-formed chain account name:
// 1 to 12 characters drawn from a-z, 1-5 and '.', not starting or ending
// with a dot.
func IsValidAccount(name string) bool {
	if len(name) < constdef.MinAccountLength || len(name) > constdef.MaxAccountLength {
		return false
	}
	if name[0] == '.' || name[len(name)-1] == '.' {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '1' && c <= '5':
		case c == '.':
		default:
			return false
		}
	}
	return true
}

// IsValidSymbol reports whether sym is a well-formed asset symbol code:
// 1 to 7 uppercase letters A-Z.
func IsValidSymbol(sym string) bool {
	if len(sym) < 1 || len(sym) > constdef.MaxSymbolLength {
		return false
	}
	for _, c := range sym {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// NormalizeSymbol upper-cases and trims a symbol code typed by an operator.
func NormalizeSymbol(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}
