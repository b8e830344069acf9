package server

import (
	"strings"
	"unicode"
)

// foldName lowercases ASCII letters only. Nick and channel lookups are
// ASCII case-insensitive (005 advertises CASEMAPPING=ascii); display
// keeps the originally supplied case.
func foldName(s string) string {
	var buf []byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'A' && ch <= 'Z' {
			if buf == nil {
				buf = make([]byte, len(s))
				copy(buf, s)
			}
			buf[i] = ch + ('a' - 'A')
		}
	}
	if buf != nil {
		return string(buf)
	}
	return s
}

func isValidChannelName(name string, maxLen int) bool {
	if len(name) < 2 || !strings.HasPrefix(name, "#") {
		return false
	}
	if len(name)-1 > maxLen {
		return false
	}
	for _, r := range name[1:] {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func isValidNick(nick string, maxLen int) bool {
	if len(nick) == 0 || len(nick) > maxLen {
		return false
	}

	// Must start with a letter
	if !unicode.IsLetter(rune(nick[0])) {
		return false
	}

	// Can only contain letters, numbers, - and _
	for _, r := range nick[1:] {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func isValidUsername(username string, maxLen int) bool {
	if len(username) == 0 || len(username) > maxLen {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
