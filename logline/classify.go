package logline

import (
	"errors"
	"strings"
)

// Kind identifies which grammar rule a line matched.
type Kind int

const (
	// KindUnknown is any line outside the grammar (topic changes, notices, blanks).
	KindUnknown Kind = iota
	KindMessage
	KindJoin
	// KindPartQuit covers parts, quits and "Removed by" parts. Only the latter
	// carries an Operator.
	KindPartQuit
	KindSwitch
	KindModeBan
	KindModeMute
	KindKick
	KindMacroKick
	KindMacroMute
	KindMacroBan
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindJoin:
		return "join"
	case KindPartQuit:
		return "part_quit"
	case KindSwitch:
		return "switch"
	case KindModeBan:
		return "mode_ban"
	case KindModeMute:
		return "mode_mute"
	case KindKick:
		return "kick"
	case KindMacroKick:
		return "macro_kick"
	case KindMacroMute:
		return "macro_mute"
	case KindMacroBan:
		return "macro_ban"
	default:
		return "unknown"
	}
}

// Event is the captured content of a classified line. Which fields are set
// depends on Kind:
//
//	Message, Macro*: Nick, Hostmask, Text
//	Macro*:          Operator (issuer), Target, Duration, Reason
//	Join:            Nick, Hostmask
//	Switch:          Nick (old), Hostmask, NewNick
//	PartQuit:        Nick, Hostmask, Operator (only when removed by an op)
//	ModeBan/Mute:    Mask, Operator, OperatorMask
//	Kick:            Operator, OperatorMask, Target, Reason
type Event struct {
	Kind         Kind
	Nick         string
	Hostmask     string
	NewNick      string
	Text         string
	Operator     string
	OperatorMask string
	Target       string
	Mask         string
	Reason       string
	Duration     string
}

// IsMessage reports whether the line was a channel message, including macro
// commands, which are ordinary messages to everyone but the ban bot.
func (e Event) IsMessage() bool {
	switch e.Kind {
	case KindMessage, KindMacroKick, KindMacroMute, KindMacroBan:
		return true
	}
	return false
}

// IsAction reports whether the line is a moderation action: a ban or mute
// mode, a kick, or a part forced by an operator.
func (e Event) IsAction() bool {
	switch e.Kind {
	case KindModeBan, KindModeMute, KindKick:
		return true
	case KindPartQuit:
		return e.Operator != ""
	}
	return false
}

// Classify matches line against the grammar. Patterns overlap, so order
// matters: mute before ban (a mute is a ban mode with an m: extban), actions
// before membership changes, and macros before plain messages.
func Classify(line string) Event {
	if m := muteRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindModeMute, Mask: m[1], Operator: m[2], OperatorMask: m[3]}
	}
	if m := banRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindModeBan, Mask: m[1], Operator: m[2], OperatorMask: m[3]}
	}
	if m := kickRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindKick, Operator: m[1], OperatorMask: m[2], Target: m[3], Reason: m[4]}
	}
	if m := removedRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindPartQuit, Nick: m[1], Hostmask: m[2], Operator: m[3]}
	}
	if m := partRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindPartQuit, Nick: m[1], Hostmask: m[2]}
	}
	if m := quitRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindPartQuit, Nick: m[1], Hostmask: m[2]}
	}
	if m := switchRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindSwitch, Nick: m[1], Hostmask: m[2], NewNick: m[3]}
	}
	if m := joinRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: KindJoin, Nick: m[1], Hostmask: m[2]}
	}
	m := msgRe.FindStringSubmatch(line)
	if m == nil {
		return Event{}
	}
	ev := Event{Kind: KindMessage, Nick: m[1], Hostmask: m[2], Text: m[3]}
	if mm := kickMacroRe.FindStringSubmatch(line); mm != nil {
		ev.Kind = KindMacroKick
		ev.Operator, ev.Target, ev.Reason = mm[1], mm[2], mm[3]
	} else if mm := muteMacroRe.FindStringSubmatch(line); mm != nil {
		ev.Kind = KindMacroMute
		ev.Operator, ev.Duration, ev.Target, ev.Reason = mm[1], mm[2], mm[3], mm[4]
	} else if mm := banMacroRe.FindStringSubmatch(line); mm != nil {
		ev.Kind = KindMacroBan
		ev.Operator, ev.Duration, ev.Target, ev.Reason = mm[1], mm[2], mm[3], mm[4]
	}
	return ev
}

// ErrNoHost is returned by HostOf when a hostmask carries no "@".
var ErrNoHost = errors.New("hostmask has no @")

// HostOf returns the host portion of a user@host mask (or nick!user@host
// banmask). The user portion is discarded.
func HostOf(mask string) (string, error) {
	_, host, ok := strings.Cut(mask, "@")
	if !ok {
		return "", ErrNoHost
	}
	return host, nil
}

// HasTimestamp reports whether line starts with the full ISO-8601 timestamp.
func HasTimestamp(line string) bool {
	return len(line) >= timestampWidth && timestampRe.MatchString(line)
}

// MessageSpans returns the byte offsets of the nick and the "(hostmask) "
// segment of a message line. ok is false for any other kind of line.
func MessageSpans(line string) (nick, hostSeg [2]int, ok bool) {
	m := msgRe.FindStringSubmatchIndex(line)
	if m == nil {
		return nick, hostSeg, false
	}
	nick = [2]int{m[2], m[3]}
	// include the parentheses and the separating space
	hostSeg = [2]int{m[4] - 1, m[5] + 2}
	return nick, hostSeg, true
}
