package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GeneralBots/botcoder/config"
	"github.com/GeneralBots/botcoder/llm"
	"github.com/GeneralBots/botcoder/session"
	"github.com/GeneralBots/botcoder/truncate"
)

// previewLines caps tool output echoed to the terminal. The model still
// receives the full clipped result.
const previewLines = 40

const chatHelp = `Commands:
  /help     show this help
  /history  show the conversation history
  /usage    show token usage
  /clear    forget the conversation
  /exit     quit (also /quit)

The assistant can use these tools:
  read_file(path)             read a project file
  execute_command(command)    run a shell command in the project root
  CHANGE: path blocks         replace exact text in a file`

func newChatCmd() *cobra.Command {
	var autoSteps int
	var watch bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive coding session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			counter, err := cfg.Counter()
			if err != nil {
				return err
			}

			gc, err := llm.NewGollmClient(cfg.Gollm(counter))
			if err != nil {
				return err
			}
			client := llm.NewRetryingClient(gc, cfg.RetryPolicy())

			sess, err := session.New(cfg, client, session.WithLogger(logger), session.WithCounter(counter))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watch && flagConfig != "" {
				w, err := config.NewWatcher(flagConfig, func(next *config.Config) {
					applyFlags(next)
					sess.ApplyConfig(next)
				}, logger)
				if err != nil {
					return err
				}
				go w.Run(ctx)
			}

			logger.Info("session started",
				"session", sess.ID(),
				"project", sess.Project(),
				"provider", gc.Provider(),
				"model", gc.Model())
			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), sess, autoSteps)
		},
	}
	cmd.Flags().IntVar(&autoSteps, "auto-steps", 0, "Turns to run automatically after tool results (0 waits for input)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload rate limits and history settings when the config file changes")
	return cmd
}

// runChat reads user input line by line until EOF, /exit or ctx ends.
func runChat(ctx context.Context, in io.Reader, out io.Writer, sess *session.Session, autoSteps int) error {
	fmt.Fprintf(out, "Project: %s\nType /help for commands.\n", sess.Project())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/help":
			fmt.Fprintln(out, chatHelp)
			continue
		case "/clear":
			sess.Clear()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/history":
			for _, m := range sess.History() {
				fmt.Fprintf(out, "%s: %s\n\n", m.Role, m.Content)
			}
			continue
		case "/usage":
			s := sess.Usage()
			fmt.Fprintf(out, "window: %d/%d tokens (%d requests), lifetime: %d tokens\n",
				s.CurrentUsage, s.MaxTokensPerMinute, s.Requests, s.LifetimeUsage)
			continue
		}

		res, err := sess.Turn(ctx, line)
		for step := 0; err == nil; step++ {
			printTurn(out, res)
			if len(res.Results) == 0 || step >= autoSteps {
				break
			}
			res, err = sess.Continue(ctx)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func printTurn(out io.Writer, res *session.TurnResult) {
	if res.Waited > 0 {
		fmt.Fprintf(out, "(waited %s for rate limit)\n", res.Waited.Round(100*time.Millisecond))
	}
	fmt.Fprintf(out, "\nAssistant: %s\n\n", res.Reply)
	for _, r := range res.Results {
		fmt.Fprintf(out, "[%s]\n%s\n\n", r.Call, truncate.Lines(r.Output, previewLines))
	}
}
