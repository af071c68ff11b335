package modaction

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBacktrack(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name   string
		window []string
		rec    Record
		want   Record
	}{
		{
			name:   "timed ban from kban macro",
			window: transcript[:4],
			rec:    Record{Result: ResultPermanentBan, Nick: "Troll", Host: "9.9.9.9", Operator: "Casual_Ban_Bot"},
			want:   Record{Result: ResultTimedBan, Nick: "Troll", Host: "9.9.9.9", Operator: "Mod", Reason: "spamming", Length: "2 days"},
		},
		{
			name:   "ban macro does not explain a kick",
			window: transcript[:5],
			rec:    Record{Result: ResultKick, Nick: "Troll", Operator: "Casual_Ban_Bot", Reason: "spamming"},
			want:   Record{Result: ResultKick, Nick: "Troll", Operator: "Casual_Ban_Bot", Reason: "spamming"},
		},
		{
			name: "kick macro",
			window: []string{
				ts + "     Mod (mod@3.3.3.3) !kick Troll out",
			},
			rec:  Record{Result: ResultKick, Nick: "Troll", Operator: "ChanServ"},
			want: Record{Result: ResultKick, Nick: "Troll", Operator: "Mod", Reason: "out"},
		},
		{
			name: "permanent mute stays permanent without duration",
			window: []string{
				ts + "     Mod (mod@3.3.3.3) !m Troll hush",
			},
			rec:  Record{Result: ResultPermanentMute, Nick: "Troll", Operator: "NSA"},
			want: Record{Result: ResultPermanentMute, Nick: "Troll", Operator: "Mod", Reason: "hush"},
		},
		{
			name: "timed mute",
			window: []string{
				ts + "     Mod (mod@3.3.3.3) !mute +30m Troll hush",
			},
			rec:  Record{Result: ResultPermanentMute, Nick: "Troll", Operator: "NSA"},
			want: Record{Result: ResultTimedMute, Nick: "Troll", Operator: "Mod", Reason: "hush", Length: "30 minutes"},
		},
		{
			name: "macro for another nick is ignored",
			window: []string{
				ts + "     Mod (mod@3.3.3.3) !b Someone",
			},
			rec:  Record{Result: ResultPermanentBan, Nick: "Troll", Operator: "NSA"},
			want: Record{Result: ResultPermanentBan, Nick: "Troll", Operator: "NSA"},
		},
		{
			name: "most recent matching macro wins",
			window: []string{
				ts + "     ModA (a@3.3.3.3) !b Troll first",
				ts + "     ModB (b@4.4.4.4) !b +1h Troll second",
			},
			rec:  Record{Result: ResultPermanentBan, Nick: "Troll", Operator: "NSA"},
			want: Record{Result: ResultTimedBan, Nick: "Troll", Operator: "ModB", Reason: "second", Length: "1 hours"},
		},
		{
			name:   "human operator keeps credit",
			window: transcript[:4],
			rec:    Record{Result: ResultPermanentBan, Nick: "Troll", Operator: "RealOp"},
			want:   Record{Result: ResultPermanentBan, Nick: "Troll", Operator: "RealOp"},
		},
		{
			name:   "unknown nick skips silently",
			window: transcript[:4],
			rec:    Record{Result: ResultPermanentBan, Host: "9.9.9.9", Operator: "Casual_Ban_Bot"},
			want:   Record{Result: ResultPermanentBan, Host: "9.9.9.9", Operator: "Casual_Ban_Bot"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Backtrack(tt.window, tt.rec, rules, DurationObserved)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Backtrack() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBacktrackWindow(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		action, size int
		want         []string
	}{
		{4, 2, []string{"c", "d"}},
		{1, 8, []string{"a"}},
		{0, 8, []string{}},
		{9, 2, []string{"d", "e"}},
	}
	for _, tt := range tests {
		got := BacktrackWindow(lines, tt.action, tt.size)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("BacktrackWindow(%d, %d) mismatch (-want +got):\n%s", tt.action, tt.size, diff)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		raw   string
		style DurationStyle
		want  string
	}{
		{"+10m", DurationObserved, "10 minutes"},
		{"+3h", DurationObserved, "3 hours"},
		{"+2d", DurationObserved, "2 days"},
		{"+1y", DurationObserved, "1 years"},
		{"+30s", DurationObserved, "30s"},
		{"+30s", DurationCorrected, "30 seconds"},
		{"+2d", DurationCorrected, "2 days"},
		{"15", DurationObserved, "15"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.raw, tt.style); got != tt.want {
			t.Errorf("FormatDuration(%q, %d) = %q, want %q", tt.raw, tt.style, got, tt.want)
		}
	}
}
