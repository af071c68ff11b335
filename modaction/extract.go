package modaction

import (
	"fmt"

	"github.com/CasualConversation/casualbotler/logline"
)

// Extract builds the partial record described by an action line. Bans and
// mutes are reported as permanent; Backtrack may later downgrade them.
//
//	mute:    result, host (from the banmask), operator
//	ban:     result, host (from the banmask), operator
//	kick:    result, operator, nick, reason
//	removed: result (kick), nick, host, operator
//
// A line that is not an action yields an empty record.
func Extract(line string) (Record, error) {
	ev := logline.Classify(line)
	var rec Record
	switch {
	case ev.Kind == logline.KindModeMute, ev.Kind == logline.KindModeBan:
		host, err := logline.HostOf(ev.Mask)
		if err != nil {
			return Record{}, fmt.Errorf("%w: banmask %q: %w", ErrMalformedLine, ev.Mask, err)
		}
		rec.Result = ResultPermanentBan
		if ev.Kind == logline.KindModeMute {
			rec.Result = ResultPermanentMute
		}
		rec.Host = host
		rec.Operator = ev.Operator
	case ev.Kind == logline.KindKick:
		rec.Result = ResultKick
		rec.Operator = ev.Operator
		rec.Nick = ev.Target
		rec.Reason = ev.Reason
	case ev.Kind == logline.KindPartQuit && ev.Operator != "":
		host, err := logline.HostOf(ev.Hostmask)
		if err != nil {
			return Record{}, fmt.Errorf("%w: hostmask %q: %w", ErrMalformedLine, ev.Hostmask, err)
		}
		// removals are logged as kicks
		rec.Result = ResultKick
		rec.Nick = ev.Nick
		rec.Host = host
		rec.Operator = ev.Operator
	}
	return rec, nil
}
