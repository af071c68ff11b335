package modaction

import (
	"strings"

	"github.com/CasualConversation/casualbotler/logline"
)

// DefaultBacktrackLines is how many lines before an action are searched for
// the macro command that caused it.
const DefaultBacktrackLines = 8

// BacktrackWindow returns up to size lines immediately preceding action.
func BacktrackWindow(lines []string, action, size int) []string {
	if action > len(lines) {
		action = len(lines)
	}
	return lines[max(0, action-size):action]
}

// Backtrack credits an action performed by a banner bot to the human who
// issued the macro command. It looks newest first through window for a macro
// naming rec.Nick whose kind fits the current result (kick macros for kicks,
// mute macros for permanent mutes, ban macros for permanent bans), then takes
// the issuer as operator along with the macro's reason. A macro with a
// duration turns the result into its timed variant and sets Length.
//
// Records not produced by a banner bot, or without a nick to match, are
// returned unchanged.
func Backtrack(window []string, rec Record, rules Rules, style DurationStyle) Record {
	if !rules.IsBannerBot(rec.Operator) || rec.Nick == "" {
		return rec
	}
	for i := len(window) - 1; i >= 0; i-- {
		ev := logline.Classify(window[i])
		if ev.Target != rec.Nick {
			continue
		}
		switch {
		case ev.Kind == logline.KindMacroKick && rec.Result == ResultKick,
			ev.Kind == logline.KindMacroMute && rec.Result == ResultPermanentMute,
			ev.Kind == logline.KindMacroBan && rec.Result == ResultPermanentBan:
		default:
			continue
		}
		rec.Operator = ev.Operator
		rec.Reason = ev.Reason
		if ev.Duration != "" {
			rec.Length = FormatDuration(ev.Duration, style)
			rec.Result = rec.Result.Timed()
		}
		return rec
	}
	return rec
}

// DurationStyle selects how FormatDuration treats the seconds unit.
type DurationStyle int

const (
	// DurationObserved reproduces the spreadsheet entries written so far: a
	// token containing "s" only has a "y" expanded, so "+30s" stays "30s".
	DurationObserved DurationStyle = iota
	// DurationCorrected expands "s" to seconds like the other units.
	DurationCorrected
)

// FormatDuration turns a macro duration such as "+2d" into "2 days".
func FormatDuration(raw string, style DurationStyle) string {
	d := strings.Trim(raw, "+")
	switch {
	case strings.Contains(d, "s"):
		if style == DurationCorrected {
			return strings.ReplaceAll(d, "s", " seconds")
		}
		return strings.ReplaceAll(d, "y", " years")
	case strings.Contains(d, "m"):
		return strings.ReplaceAll(d, "m", " minutes")
	case strings.Contains(d, "h"):
		return strings.ReplaceAll(d, "h", " hours")
	case strings.Contains(d, "d"):
		return strings.ReplaceAll(d, "d", " days")
	case strings.Contains(d, "y"):
		return strings.ReplaceAll(d, "y", " years")
	}
	return d
}
