package modaction

import (
	"fmt"
	"slices"
	"strings"

	"github.com/CasualConversation/casualbotler/logline"
)

// Rule action kinds.
const (
	RuleKick = "kick"
	// RuleBan also applies to mutes, which are ban modes with an m: extban.
	RuleBan = "ban"
)

// SuppressRule discards actions that are log noise rather than moderation:
// game bots kicking players, or the VPN bot's automatic timed bans that show
// up twice. Empty match fields are wildcards; Operator is always required.
type SuppressRule struct {
	Name           string `yaml:"name" json:"name"`
	Action         string `yaml:"action" json:"action"`
	Operator       string `yaml:"operator" json:"operator"`
	ReasonContains string `yaml:"reason_contains,omitempty" json:"reason_contains,omitempty"`
	MaskContains   string `yaml:"mask_contains,omitempty" json:"mask_contains,omitempty"`
}

// Matches reports whether ev is covered by the rule.
func (r SuppressRule) Matches(ev logline.Event) bool {
	switch r.Action {
	case RuleKick:
		if ev.Kind != logline.KindKick {
			return false
		}
	case RuleBan:
		if ev.Kind != logline.KindModeBan && ev.Kind != logline.KindModeMute {
			return false
		}
	default:
		return false
	}
	if ev.Operator != r.Operator {
		return false
	}
	if r.ReasonContains != "" && !strings.Contains(ev.Reason, r.ReasonContains) {
		return false
	}
	if r.MaskContains != "" && !strings.Contains(ev.Mask, r.MaskContains) {
		return false
	}
	return true
}

// Rules is the network-specific data the pipeline consults.
type Rules struct {
	// BannerBots execute bans on behalf of human operators who issue macro
	// commands; actions by these identities are credited to the human.
	BannerBots []string       `yaml:"banner_bots" json:"banner_bots"`
	Suppress   []SuppressRule `yaml:"suppress" json:"suppress"`
}

// VPNRegistrationNotice is the kick reason StormBot uses for unregistered
// VPN users.
const VPNRegistrationNotice = "You must register your nickname to use a VPN connection on this channel."

// DefaultRules returns the tables for the network the bot was written for.
func DefaultRules() Rules {
	return Rules{
		BannerBots: []string{"Casual_Ban_Bot", "NSA", "ChanServ"},
		Suppress: []SuppressRule{
			{Name: "duckhunt", Action: RuleKick, Operator: "gonzobot"},
			{Name: "vpn-kick", Action: RuleKick, Operator: "StormBot", ReasonContains: VPNRegistrationNotice},
			{Name: "vpn-ban", Action: RuleBan, Operator: "StormBot", MaskContains: "U:"},
			{Name: "fix-connection-ban", Action: RuleBan, Operator: "StormBot", MaskContains: "fix-your-connection"},
		},
	}
}

// IsBannerBot reports whether nick is an automated enforcement identity.
func (r Rules) IsBannerBot(nick string) bool {
	return nick != "" && slices.Contains(r.BannerBots, nick)
}

// Suppressed returns the name of the first rule discarding ev.
func (r Rules) Suppressed(ev logline.Event) (string, bool) {
	for _, rule := range r.Suppress {
		if rule.Matches(ev) {
			return rule.Name, true
		}
	}
	return "", false
}

// Validate checks rule tables loaded from configuration.
func (r Rules) Validate() error {
	for i, rule := range r.Suppress {
		if rule.Action != RuleKick && rule.Action != RuleBan {
			return fmt.Errorf("suppress rule %d (%s): action must be %q or %q, got %q", i, rule.Name, RuleKick, RuleBan, rule.Action)
		}
		if rule.Operator == "" {
			return fmt.Errorf("suppress rule %d (%s): operator is required", i, rule.Name)
		}
	}
	return nil
}
