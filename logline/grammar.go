// Package logline classifies raw channel log lines into the small set of
// events the moderation tooling cares about.
//
// The grammar is produced by the channel logger and must be matched exactly:
//
//	2020-01-01T10:00:00+00:00     nick (user@host) message text
//	2020-01-01T10:00:00+00:00 -->  nick (user@host) has joined #chan
//	2020-01-01T10:00:00+00:00 <--  nick (user@host) has left (reason)
//	2020-01-01T10:00:00+00:00 <--  op (user@host) has kicked nick (reason)
//	2020-01-01T10:00:00+00:00 --  Mode #chan (+b mask) by op (user@host)
//	2020-01-01T10:00:00+00:00 --  old (user@host) is now known as new
package logline

import "regexp"

const (
	// TimestampLayout is the fixed-width ISO-8601 prefix of every line.
	TimestampLayout = "2006-01-02T15:04:05-07:00"

	// timestampWidth covers date, separator, time and the +hh:mm offset.
	timestampWidth = 25

	iso8601 = `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\+\d{2}:\d{2}`

	// hostmasks never contain spaces, which keeps a ")" inside message text
	// from being swallowed into the host capture.
	hostmask = `([^ ]*)`

	optDuration = `(\+\d{1,3}[smhdy])? ?`
)

// validNick is the character set allowed in IRC nicknames.
const validNick = "[a-zA-Z0-9_" + `\-\\\[\]\{\}\^` + "`" + `\|]+`

var (
	muteRe    = regexp.MustCompile(`^` + iso8601 + ` --  Mode #?\w+ \(\+b m:(\S*)\) by (` + validNick + `) \(` + hostmask + `\)`)
	banRe     = regexp.MustCompile(`^` + iso8601 + ` --  Mode #?\w+ \(\+b (\S*)\) by (` + validNick + `) \(` + hostmask + `\)`)
	kickRe    = regexp.MustCompile(`^` + iso8601 + ` <-- (` + validNick + `) \(` + hostmask + `\) has kicked (` + validNick + `) \(?(.*?)\)?$`)
	removedRe = regexp.MustCompile(`^` + iso8601 + ` <-- (` + validNick + `) \(` + hostmask + `\) has left \(?Removed by (` + validNick + `).*\)?`)
	partRe    = regexp.MustCompile(`^` + iso8601 + ` <-- (` + validNick + `) \(` + hostmask + `\) has left`)
	quitRe    = regexp.MustCompile(`^` + iso8601 + ` \*\*\* (` + validNick + `) \(` + hostmask + `\) has quit`)
	msgRe     = regexp.MustCompile(`^` + iso8601 + `     (` + validNick + `) \(` + hostmask + `\) (.*)`)
	switchRe  = regexp.MustCompile(`^` + iso8601 + ` --  (` + validNick + `) \(` + hostmask + `\) is now known as (` + validNick + `)`)
	joinRe    = regexp.MustCompile(`^` + iso8601 + ` --> (` + validNick + `) \(` + hostmask + `\) has joined .*`)

	kickMacroRe = regexp.MustCompile(`^` + iso8601 + `     (` + validNick + `) \(.*\) !ki?c?k? (` + validNick + `) ?(.*)`)
	muteMacroRe = regexp.MustCompile(`^` + iso8601 + `     (` + validNick + `) \(.*\) !mu?t?e? ` + optDuration + `(` + validNick + `) ?(.*)`)
	banMacroRe  = regexp.MustCompile(`^` + iso8601 + `     (` + validNick + `) \(.*\) !k?i?c?k?ba?n? ` + optDuration + `(` + validNick + `) ?(.*)`)

	timestampRe = regexp.MustCompile(`^` + iso8601)
)
