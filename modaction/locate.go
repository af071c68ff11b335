package modaction

import "github.com/CasualConversation/casualbotler/logline"

// Locate scans lines from newest to oldest and returns the index of the
// (skip+1)-th most recent moderation action, ignoring actions discarded by
// rules. ok is false when the scan runs out first.
func Locate(lines []string, skip int, rules Rules) (index int, ok bool) {
	return locate(lines, skip, rules, nil)
}

// locate is Locate with a callback for every suppressed line.
func locate(lines []string, skip int, rules Rules, onSuppressed func(rule string)) (int, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		ev := logline.Classify(lines[i])
		if !ev.IsAction() {
			continue
		}
		if name, hit := rules.Suppressed(ev); hit {
			if onSuppressed != nil {
				onSuppressed(name)
			}
			continue
		}
		if skip <= 0 {
			return i, true
		}
		skip--
	}
	return -1, false
}
