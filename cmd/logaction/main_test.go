package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/testutil"
	"github.com/CasualConversation/casualbotler/transcript"
)

const channel = "#casualconversation"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func chanlogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteChanlog(t, dir, "casualconversation", testutil.BanTranscript(channel))
	return dir
}

func TestAutoPrintsRecordAndTranscript(t *testing.T) {
	out, err := execute(t, "auto", "--dir", chanlogDir(t), "-s", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		"nick:     Troll\n",
		"result:   Timed Ban\n",
		"length:   2 days\n",
		"operator: Mod\n",
		"channel:  #Casualconversation\n",
		"host:     9.9.9.9\n",
		"2020-01-01 10:00:00     <Mod> !kban +2d Troll spamming",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAutoJSON(t *testing.T) {
	out, err := execute(t, "--dir", chanlogDir(t), "--json", "--chan", "#CasualConversation", "-f", "0")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var res modaction.Correlation
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if res.Record.Result != modaction.ResultKick || res.Record.Operator != "Casual_Ban_Bot" {
		t.Errorf("record = %+v", res.Record)
	}
	if res.End != 6 || len(res.Lines) != 6 {
		t.Errorf("window end = %d, lines = %d, want 6", res.End, len(res.Lines))
	}
}

func TestRecentMode(t *testing.T) {
	out, err := execute(t, "recent", "--dir", chanlogDir(t), "-l", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "no action in these lines") || !strings.HasSuffix(out, "<Alice> finally\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormLink(t *testing.T) {
	t.Setenv("FORM_BASE_URL", "https://forms.example/viewform?usp=pp_url")
	out, err := execute(t, "--dir", chanlogDir(t), "-s", "1", "--form")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "form: https://forms.example/viewform?usp=pp_url&entry.1999262323=Troll") {
		t.Errorf("form link missing:\n%s", out)
	}
}

func TestErrors(t *testing.T) {
	dir := chanlogDir(t)
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing log", []string{"--dir", t.TempDir()}, transcript.ErrNoTranscript},
		{"unknown mode", []string{"everything", "--dir", dir}, modaction.ErrInvalidRequest},
		{"skip too large", []string{"--dir", dir, "-s", "11"}, modaction.ErrInvalidRequest},
		{"channel not loggable", []string{"--dir", dir, "-c", "#elsewhere"}, modaction.ErrInvalidRequest},
		{"no more actions", []string{"--dir", dir, "-s", "5"}, modaction.ErrNoAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
