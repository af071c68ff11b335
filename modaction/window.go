package modaction

import (
	"strings"

	"github.com/CasualConversation/casualbotler/logline"
)

// FindJoin returns the index of the most recent join line in preceding whose
// host is host.
func FindJoin(preceding []string, host string) (int, bool) {
	for i := len(preceding) - 1; i >= 0; i-- {
		ev := logline.Classify(preceding[i])
		if ev.Kind != logline.KindJoin {
			continue
		}
		if h, err := logline.HostOf(ev.Hostmask); err == nil && h == host {
			return i, true
		}
	}
	return -1, false
}

// Prettify makes a transcript easier to read. Message lines lose their
// "(hostmask) " segment and get the nick wrapped as <nick>. Every line that
// starts with a full timestamp has it compacted from
// "2020-01-01T10:00:00+00:00" to "2020-01-01 10:00:00". Lines already
// prettified are left alone, so Prettify is idempotent.
func Prettify(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, compactTimestamp(dropHostmask(line)))
	}
	return out
}

func dropHostmask(line string) string {
	nick, host, ok := logline.MessageSpans(line)
	if !ok {
		return line
	}
	var b strings.Builder
	b.Grow(len(line) + 2)
	b.WriteString(line[:nick[0]])
	b.WriteByte('<')
	b.WriteString(line[nick[0]:nick[1]])
	b.WriteByte('>')
	b.WriteString(line[nick[1]:host[0]])
	b.WriteString(line[host[1]:])
	return b.String()
}

func compactTimestamp(line string) string {
	if !logline.HasTimestamp(line) {
		return line
	}
	return line[0:10] + " " + line[11:19] + line[25:]
}
