// Command logaction correlates the latest moderation action in a channel log
// from the command line, the way the bot's log command does in chat.
//
// Usage:
//
//	logaction [recent|auto] -c '#casualconversation' -s 1
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/CasualConversation/casualbotler/config"
	"github.com/CasualConversation/casualbotler/form"
	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/transcript"
)

type options struct {
	channel         string
	lines           int
	maxAutoLines    int
	maxLogAutoLines int
	followingLines  int
	skip            int
	dir             string
	rules           string
	asJSON          bool
	withForm        bool
}

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "logaction [recent|auto]",
		Short: "Reconstruct the latest moderation action from a channel log",
		Long: `Reads the channel log, finds the most recent kick, ban or mute, works out
who was affected and who issued it, and prints the record with the part of
the transcript that gives it context.

In recent mode the last --linenumber lines are printed as they are.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := modaction.ModeAuto
			if len(args) == 1 {
				mode = modaction.Mode(strings.ToLower(args[0]))
			}
			return run(cmd, mode, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.channel, "chan", "c", "", "channel to read (default DEFAULT_CHANNEL)")
	f.IntVarP(&opts.lines, "linenumber", "l", 0, "lines to print in recent mode")
	f.IntVarP(&opts.maxAutoLines, "maxautolines", "m", 0, "lines to search for the action in auto mode")
	f.IntVarP(&opts.maxLogAutoLines, "maxlogautolines", "b", 0, "maximum transcript lines in auto mode")
	f.IntVarP(&opts.followingLines, "followinglines", "f", 0, "lines kept after the action in auto mode")
	f.IntVarP(&opts.skip, "skip", "s", 0, "skip this many newer actions")
	f.StringVar(&opts.dir, "dir", "", "channel log directory (default CHANLOGS_DIR)")
	f.StringVar(&opts.rules, "rules", "", "moderation rules YAML file (default MODERATION_RULES_FILE)")
	f.BoolVar(&opts.asJSON, "json", false, "print the correlation as JSON")
	f.BoolVar(&opts.withForm, "form", false, "print the prefilled form link (requires FORM_BASE_URL)")
	return cmd
}

func run(cmd *cobra.Command, mode modaction.Mode, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.dir != "" {
		cfg.ChanlogsDir = opts.dir
	}
	if opts.rules != "" {
		cfg.ModerationRulesFile = opts.rules
	}
	moderation, err := config.LoadModeration(cfg.ModerationRulesFile)
	if err != nil {
		return err
	}

	req := cfg.Request(opts.channel, mode)
	flags := cmd.Flags()
	for name, v := range map[string]struct {
		src int
		dst *int
	}{
		"linenumber":      {opts.lines, &req.Lines},
		"maxautolines":    {opts.maxAutoLines, &req.MaxAutoLines},
		"maxlogautolines": {opts.maxLogAutoLines, &req.MaxLogAutoLines},
		"followinglines":  {opts.followingLines, &req.FollowingLines},
		"skip":            {opts.skip, &req.Skip},
	} {
		if flags.Changed(name) {
			*v.dst = v.src
		}
	}

	c := modaction.NewCorrelator(transcript.NewFileSource(cfg.ChanlogsDir), cfg.Correlator(moderation))
	res, err := c.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printCorrelation(out, res)
	if opts.withForm {
		if cfg.FormBaseURL == "" {
			return errors.New("--form needs FORM_BASE_URL")
		}
		fmt.Fprintf(out, "\nform: %s\n", form.Build(cfg.FormBaseURL, res.Record))
	}
	return nil
}

func printCorrelation(w io.Writer, res *modaction.Correlation) {
	if res.Found {
		vals := form.Values(res.Record)
		for _, f := range form.Fields() {
			if v, ok := vals[f]; ok {
				fmt.Fprintf(w, "%-9s %s\n", string(f)+":", v)
			}
		}
	} else {
		fmt.Fprintln(w, "no action in these lines")
	}
	for _, n := range res.Notices {
		fmt.Fprintf(w, "note: %s\n", n)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Transcript())
}
