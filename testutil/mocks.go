package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// StaticSource serves fixed transcripts per channel and records requests.
type StaticSource struct {
	mu       sync.Mutex
	Lines    map[string][]string
	Err      error
	Requests []SourceRequest
}

// SourceRequest is one recorded ReadTail call.
type SourceRequest struct {
	Channel string
	N       int
}

// NewStaticSource returns a source serving lines for channel.
func NewStaticSource(channel string, lines []string) *StaticSource {
	return &StaticSource{Lines: map[string][]string{channel: lines}}
}

// ReadTail returns the last n lines stored for channel.
func (s *StaticSource) ReadTail(_ context.Context, channel string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, SourceRequest{Channel: channel, N: n})
	if s.Err != nil {
		return nil, s.Err
	}
	lines := s.Lines[channel]
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// WriteChanlog writes lines as <dir>/<name>.log, newline terminated.
func WriteChanlog(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name+".log")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write chanlog: %v", err)
	}
	return path
}

// BanTranscript is a channel log in which a banner bot bans and kicks Troll
// after Mod issued "!kban +2d Troll spamming".
func BanTranscript(channel string) []string {
	const ts = "2020-01-01T10:00:00+00:00"
	return []string{
		ts + " --> Troll (troll@9.9.9.9) has joined " + channel,
		ts + "     Alice (alice@2.2.2.2) hello",
		ts + "     Troll (troll@9.9.9.9) spam spam",
		ts + "     Mod (mod@3.3.3.3) !kban +2d Troll spamming",
		ts + " --  Mode " + channel + " (+b *!*@9.9.9.9) by Casual_Ban_Bot (bot@services)",
		ts + " <-- Casual_Ban_Bot (bot@services) has kicked Troll (spamming)",
		ts + "     Alice (alice@2.2.2.2) finally",
	}
}
