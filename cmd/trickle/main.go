// Command trickle streams a model response to the terminal.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... trickle [flags] <prompt>
//	GEMINI_API_KEY=gk-... trickle [flags] <prompt>
//	trickle -list [pattern]
//
// Flags:
//
//	-provider string      Provider: openai, gemini (auto-detected from env vars if omitted)
//	-model string         Model ID (default: provider default)
//	-instructions string  System instructions for the request
//	-api-key string       API key (overrides provider's env var)
//	-render               Render the completed response as markdown instead of raw deltas
//	-tui                  Show the response in an interactive viewer
//	-list                 List saved transcripts and exit
//	-v                    Verbose logging (decode failures, unknown event kinds)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/pwalczyk/trickle"
	bt "github.com/pwalczyk/trickle/bubbletea"
	"github.com/pwalczyk/trickle/goldmark"
	tricklejson "github.com/pwalczyk/trickle/json"
)

const renderWidth = 80

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trickle: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		providerFlag = flag.String("provider", "", "Provider: openai, gemini (auto-detected from env vars if omitted)")
		model        = flag.String("model", "", "Model ID (provider-specific)")
		instructions = flag.String("instructions", "", "System instructions for the request")
		apiKey       = flag.String("api-key", "", "API key (overrides provider's env var)")
		render       = flag.Bool("render", false, "Render the completed response as markdown")
		tui          = flag.Bool("tui", false, "Show the response in an interactive viewer")
		list         = flag.Bool("list", false, "List saved transcripts and exit")
		verbose      = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *list {
		return listTranscripts(flag.Arg(0))
	}

	prompt, err := readPrompt(flag.Args(), os.Stdin)
	if err != nil {
		return err
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Resolve provider. Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, *providerFlag, *apiKey,
		os.Getenv("OPENAI_API_KEY"), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		return err
	}

	req := trickle.Request{
		Model:        *model,
		Instructions: *instructions,
		Input:        []trickle.Message{trickle.User(prompt)},
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if *tui {
		return runViewer(ctx, provider, req, prompt, logger)
	}
	return runPlain(ctx, provider, req, logger, *render)
}

// readPrompt joins the positional arguments into the prompt, falling back to
// piped stdin when there are none.
func readPrompt(args []string, stdin *os.File) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" && !isatty.IsTerminal(stdin.Fd()) {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(b))
	}
	if prompt == "" {
		return "", errors.New("usage: trickle [flags] <prompt>")
	}
	return prompt, nil
}

// runPlain streams deltas straight to stdout. With -render the output is
// buffered and printed once as styled markdown instead.
func runPlain(ctx context.Context, provider trickle.Provider, req trickle.Request, logger *log.Logger, render bool) error {
	s, err := provider.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer s.Close()

	var (
		usage trickle.Usage
		model = req.Model
	)
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if trickle.IsDecodeError(err) {
				logger.Debug("skipping undecodable event", "err", err)
				continue
			}
			return err
		}

		switch evt.Kind {
		case trickle.KindOutputTextDelta:
			if !render {
				fmt.Print(evt.Delta)
			}
		case trickle.KindSummaryTextDone:
			logger.Debug("reasoning summary", "text", evt.SummaryText)
		case trickle.KindOutputItemDone:
			if evt.Item != nil && evt.Item.Type == trickle.ItemFunctionCall {
				logger.Info("function call", "name", evt.Item.Name, "arguments", evt.Item.Arguments)
			}
		case trickle.KindError:
			logger.Error("server error", "err", evt.Err)
		case trickle.KindUnknown:
			logger.Debug("unknown event kind", "kind", evt.RawKind)
		case trickle.KindResponseCompleted, trickle.KindResponseFailed, trickle.KindResponseIncomplete:
			if evt.Response != nil {
				usage = evt.Response.Usage
				model = evt.Response.Model
			}
		}
	}

	text, err := s.Text()
	if err != nil {
		return err
	}
	if render {
		fmt.Println(goldmark.Render(text, renderWidth, trickle.DefaultTheme()))
	} else if !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
	logger.Debug("usage", "input", usage.InputTokens, "cached", usage.CachedTokens, "output", usage.OutputTokens)

	return saveTranscript(req, model, text, usage, logger)
}

// runViewer shows the stream in the interactive Bubble Tea viewer.
func runViewer(ctx context.Context, provider trickle.Provider, req trickle.Request, prompt string, logger *log.Logger) error {
	runFn := func(ctx context.Context, onEvent func(trickle.Event)) error {
		s, err := provider.Stream(ctx, req)
		if err != nil {
			return err
		}
		defer s.Close()
		for {
			evt, err := s.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				if trickle.IsDecodeError(err) {
					continue
				}
				return err
			}
			onEvent(evt)
		}
	}

	final, err := bt.Run(ctx, bt.New(runFn, prompt, trickle.DefaultTheme()))
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	if final.Err() != nil {
		return final.Err()
	}
	if final.Text() == "" {
		return nil
	}
	return saveTranscript(req, req.Model, final.Text(), final.Usage(), logger)
}

func saveTranscript(req trickle.Request, model, text string, usage trickle.Usage, logger *log.Logger) error {
	if text == "" {
		return nil
	}
	now := time.Now()
	tr := trickle.Transcript{
		ID:           fmt.Sprintf("%d", now.UnixNano()),
		Model:        model,
		Instructions: req.Instructions,
		Input:        req.Input,
		OutputText:   text,
		Usage:        usage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	path := filepath.Join(transcriptDir(), tr.ID+".json")
	if err := tricklejson.Save(path, tr); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	logger.Info("transcript saved", "path", path)
	return nil
}

func listTranscripts(pattern string) error {
	paths, err := tricklejson.List(transcriptDir(), pattern)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func transcriptDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".trickle", "transcripts")
}
