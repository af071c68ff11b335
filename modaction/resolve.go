package modaction

import "github.com/CasualConversation/casualbotler/logline"

// Resolve fills in whichever of Nick or Host is missing from rec by scanning
// preceding lines newest first. Messages, nick switches and joins all pair a
// nick with a hostmask; the first pairing that matches the known half wins.
// Fields already set are never changed, and a record missing both halves is
// returned as is.
func Resolve(preceding []string, rec Record) Record {
	switch {
	case rec.Nick == "" && rec.Host != "":
		if nick, ok := nickForHost(preceding, rec.Host); ok {
			rec.Nick = nick
		}
	case rec.Host == "" && rec.Nick != "":
		if host, ok := hostForNick(preceding, rec.Nick); ok {
			rec.Host = host
		}
	}
	return rec
}

func nickForHost(lines []string, host string) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		ev := logline.Classify(lines[i])
		if !carriesIdentity(ev) {
			continue
		}
		if h, err := logline.HostOf(ev.Hostmask); err != nil || h != host {
			continue
		}
		if ev.Kind == logline.KindSwitch {
			return ev.NewNick, true
		}
		return ev.Nick, true
	}
	return "", false
}

func hostForNick(lines []string, nick string) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		ev := logline.Classify(lines[i])
		if !carriesIdentity(ev) {
			continue
		}
		name := ev.Nick
		if ev.Kind == logline.KindSwitch {
			name = ev.NewNick
		}
		if name != nick {
			continue
		}
		if h, err := logline.HostOf(ev.Hostmask); err == nil {
			return h, true
		}
	}
	return "", false
}

func carriesIdentity(ev logline.Event) bool {
	return ev.IsMessage() || ev.Kind == logline.KindSwitch || ev.Kind == logline.KindJoin
}
