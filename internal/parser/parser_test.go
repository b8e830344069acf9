package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "prefixed channel message",
			raw:  ":nick!user@host PRIVMSG #chan :hello there",
			want: []string{"PRIVMSG", "#chan", "hello there"},
		},
		{
			name: "command only",
			raw:  "JOIN",
			want: []string{"JOIN"},
		},
		{
			name: "command with middle param",
			raw:  "JOIN #test",
			want: []string{"JOIN", "#test"},
		},
		{
			name: "empty line",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   \t  ",
			want: nil,
		},
		{
			name: "prefix without command",
			raw:  ":nick!user@host",
			want: nil,
		},
		{
			name: "trailing token keeps spaces",
			raw:  "PRIVMSG #chan :multiple words   here",
			want: []string{"PRIVMSG", "#chan", "multiple words   here"},
		},
		{
			name: "empty trailing token is preserved",
			raw:  "PRIVMSG #chan :",
			want: []string{"PRIVMSG", "#chan", ""},
		},
		{
			name: "repeated spaces collapse in main portion",
			raw:  "JOIN    #test",
			want: []string{"JOIN", "#test"},
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  PING irc.example.net  ",
			want: []string{"PING", "irc.example.net"},
		},
		{
			name: "prefix then trailing only",
			raw:  ":srv 001 nick :Welcome",
			want: []string{"001", "nick", "Welcome"},
		},
		{
			name: "colon mid-parameter starts trailing",
			raw:  "WHOIS a:b",
			want: []string{"WHOIS", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.raw)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeIsPure(t *testing.T) {
	raw := ":a!b@c PRIVMSG #x :hi"
	first := Tokenize(raw)
	second := Tokenize(raw)
	assert.Equal(t, first, second)
}
