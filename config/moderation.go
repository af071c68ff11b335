package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CasualConversation/casualbotler/modaction"
)

// Moderation holds the network-specific tables: which bots execute bans for
// humans, which actions are noise, and which channels may be logged under
// what display name.
type Moderation struct {
	modaction.Rules `yaml:",inline"`
	// Channels maps a loggable channel to the name written into records.
	Channels map[string]string `yaml:"channels"`
}

// DefaultChannels is the loggable channel table of the network the bot serves.
func DefaultChannels() map[string]string {
	return map[string]string{
		"#casualconversation": "#Casualconversation",
		"#talk":               "#Talk",
		"#casualnsfw":         "#CasualNSFW",
		"#casualappeals":      "All",
	}
}

// DefaultModeration returns the built-in tables.
func DefaultModeration() *Moderation {
	return &Moderation{Rules: modaction.DefaultRules(), Channels: DefaultChannels()}
}

// LoadModeration reads the YAML table file at path. An empty path or a
// missing file yields the defaults; a file that omits a section keeps the
// default for that section.
//
//	banner_bots: [Casual_Ban_Bot, NSA, ChanServ]
//	suppress:
//	  - {name: duckhunt, action: kick, operator: gonzobot}
//	channels:
//	  "#talk": "#Talk"
func LoadModeration(path string) (*Moderation, error) {
	def := DefaultModeration()
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read moderation tables: %w", err)
	}

	var m Moderation
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse moderation tables: %w", err)
	}
	if m.BannerBots == nil {
		m.BannerBots = def.BannerBots
	}
	if m.Suppress == nil {
		m.Suppress = def.Suppress
	}
	if m.Channels == nil {
		m.Channels = def.Channels
	}
	if err := m.normalize(); err != nil {
		return nil, fmt.Errorf("moderation tables %s: %w", path, err)
	}
	return &m, nil
}

func (m *Moderation) normalize() error {
	if err := m.Rules.Validate(); err != nil {
		return err
	}
	channels := make(map[string]string, len(m.Channels))
	for ch, name := range m.Channels {
		if !strings.HasPrefix(ch, "#") {
			return fmt.Errorf("channel %q must start with #", ch)
		}
		if name == "" {
			name = ch
		}
		channels[strings.ToLower(ch)] = name
	}
	m.Channels = channels
	return nil
}
