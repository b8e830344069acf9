package server

import (
	"fmt"
)

// Numeric reply and error codes as per RFC 1459
const (
	// Registration replies
	RplWelcome  = "001" // RPL_WELCOME
	RplYourHost = "002" // RPL_YOURHOST
	RplCreated  = "003" // RPL_CREATED
	RplISupport = "005" // RPL_ISUPPORT

	// WHOIS replies
	RplWhoisUser  = "311" // RPL_WHOISUSER
	RplWhoisIdle  = "317" // RPL_WHOISIDLE
	RplEndOfWhois = "318" // RPL_ENDOFWHOIS

	// Channel replies
	RplNoTopic    = "331" // RPL_NOTOPIC
	RplNamReply   = "353" // RPL_NAMREPLY
	RplEndOfNames = "366" // RPL_ENDOFNAMES

	// Errors
	ErrNoSuchNick        = "401" // ERR_NOSUCHNICK
	ErrNoSuchChannel     = "403" // ERR_NOSUCHCHANNEL
	ErrCannotSendToChan  = "404" // ERR_CANNOTSENDTOCHAN
	ErrTooManyChannels   = "405" // ERR_TOOMANYCHANNELS
	ErrUnknownCommand    = "421" // ERR_UNKNOWNCOMMAND
	ErrNoNicknameGiven   = "431" // ERR_NONICKNAMEGIVEN
	ErrErroneusNickname  = "432" // ERR_ERRONEUSNICKNAME
	ErrNicknameInUse     = "433" // ERR_NICKNAMEINUSE
	ErrNotRegistered     = "451" // ERR_NOTREGISTERED
	ErrAlreadyRegistered = "462" // ERR_ALREADYREGISTRED
	ErrChannelIsFull     = "471" // ERR_CHANNELISFULL
)

// Standard reply texts as per RFC 1459
var ReplyTexts = map[string]string{
	ErrNoSuchNick:        "No such nick/channel",
	ErrNoSuchChannel:     "No such channel",
	ErrCannotSendToChan:  "Cannot send to channel",
	ErrTooManyChannels:   "You have joined too many channels",
	ErrUnknownCommand:    "Unknown command",
	ErrNoNicknameGiven:   "No nickname given",
	ErrErroneusNickname:  "Erroneous nickname",
	ErrNicknameInUse:     "Nickname is already in use",
	ErrNotRegistered:     "You have not registered",
	ErrAlreadyRegistered: "You may not reregister",
	ErrChannelIsFull:     "Cannot join channel (channel is full)",
	RplNoTopic:           "No topic is set",
	RplEndOfNames:        "End of /NAMES list",
	RplEndOfWhois:        "End of /WHOIS list",
}

// IRCError represents a standard IRC error.
type IRCError struct {
	Code    string
	Message string
	Context error
}

func (e *IRCError) Error() string {
	if e.Context != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

// NewError creates a new IRC error with standard message
func NewError(code string, customMsg string, ctx error) *IRCError {
	msg := customMsg
	if msg == "" {
		if stdMsg, ok := ReplyTexts[code]; ok {
			msg = stdMsg
		}
	}
	return &IRCError{
		Code:    code,
		Message: msg,
		Context: ctx,
	}
}

// FormatReply formats a numeric reply line with a single middle
// parameter block and a trailing text: ":<server> <code> <target> [middle] :<text>".
// An empty text falls back to the standard message for the code.
func FormatReply(serverName, code, target, middle, text string) string {
	if text == "" {
		if stdMsg, ok := ReplyTexts[code]; ok {
			text = stdMsg
		}
	}
	if middle == "" {
		return fmt.Sprintf(":%s %s %s :%s", serverName, code, target, text)
	}
	return fmt.Sprintf(":%s %s %s %s :%s", serverName, code, target, middle, text)
}
