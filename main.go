package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fabfab/cvchat/api"
	"github.com/fabfab/cvchat/chat"
	"github.com/fabfab/cvchat/client"
	"github.com/fabfab/cvchat/config"
	"github.com/fabfab/cvchat/document"
	"github.com/fabfab/cvchat/history"
	"github.com/fabfab/cvchat/llm"
	"github.com/fabfab/cvchat/prompt"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "extract":
		extractCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", net.JoinHostPort("", cfg.Port), "address to listen on")
	cvPath := flags.String("cv", cfg.CVPath, "path to the CV document (.docx, .pdf, .txt, .md)")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	templates, err := prompt.LoadFile(cfg.PromptsFile)
	if err != nil {
		logger.Fatalf("prompt setup: %v", err)
	}

	doc := document.Load(*cvPath, logger)
	if !doc.Loaded() {
		logger.Fatalf("no content extracted from %s, refusing to start", *cvPath)
	}
	logger.Printf("loaded CV from %s (%d characters)", doc.Path, len(doc.Text))

	llmClient, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}
	defer func() {
		if err := llm.Close(llmClient); err != nil {
			logger.Printf("close llm client: %v", err)
		}
	}()

	store, err := history.NewStore(ctx, cfg.RedisURL, cfg.HistoryTTL)
	if err != nil {
		logger.Fatalf("history store setup: %v", err)
	}
	defer func() {
		if err := history.Close(store); err != nil {
			logger.Printf("close history store: %v", err)
		}
	}()

	svc := chat.NewService(doc, templates, llmClient, chat.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.New(svc, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("serving on %s using %s/%s", *addr, strings.ToUpper(cfg.LLM.Provider), cfg.LLM.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	case <-ctx.Done():
		logger.Println("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown: %v", err)
		}
	}
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask; omit for an interactive session")
	backend := flags.String("backend", cfg.BackendURL, "base URL of a running cvchat server")
	model := flags.String("model", "", "model override")
	showThinking := flags.Bool("show-thinking", false, "print the model's reasoning before the answer")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := client.New(*backend)

	if strings.TrimSpace(*question) != "" {
		if err := askOnce(ctx, c, os.Stdout, *question, *model, *showThinking); err != nil {
			logger.Fatalf("ask failed: %v", err)
		}
		return
	}

	transcript, err := runREPL(ctx, c, os.Stdin, os.Stdout, os.Stderr, *model, *showThinking)
	if err != nil {
		logger.Fatalf("read question: %v", err)
	}
	if len(transcript) > 0 {
		logger.Printf("session ended after %d questions", len(transcript)/2)
	}
}

type questioner interface {
	Ask(ctx context.Context, req client.Request) (client.Response, error)
}

// runREPL reads questions from in until EOF or "bye". "history" prints the
// answered turns so far. The returned transcript holds final answers only.
func runREPL(ctx context.Context, q questioner, in io.Reader, out, errOut io.Writer, model string, showThinking bool) ([]history.Message, error) {
	var transcript []history.Message

	fmt.Fprintln(out, "Ask about the CV. Type 'history' to review answers, 'bye' to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "bye"):
			fmt.Fprintln(out, "Goodbye!")
			return transcript, nil
		case strings.EqualFold(line, "history"):
			printTranscript(out, transcript)
			continue
		}

		resp, err := q.Ask(ctx, client.Request{Message: line, Model: model})
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		printResponse(out, resp, showThinking)
		transcript = append(transcript, history.Turn(line, resp.Reply)...)
	}
	return transcript, scanner.Err()
}

func askOnce(ctx context.Context, q questioner, out io.Writer, question, model string, showThinking bool) error {
	resp, err := q.Ask(ctx, client.Request{Message: question, Model: model})
	if err != nil {
		return err
	}
	printResponse(out, resp, showThinking)
	return nil
}

func printResponse(out io.Writer, resp client.Response, showThinking bool) {
	if showThinking && resp.Thinking != "" {
		fmt.Fprintln(out, "Thinking:")
		fmt.Fprintln(out, resp.Thinking)
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, resp.Reply)
	fmt.Fprintf(out, "(%.2fs)\n", resp.ProcessingTime)
}

func printTranscript(out io.Writer, transcript []history.Message) {
	if len(transcript) == 0 {
		fmt.Fprintln(out, "No questions answered yet.")
		return
	}
	for _, msg := range transcript {
		label := "You"
		if msg.Role == history.RoleAssistant {
			label = "CV"
		}
		fmt.Fprintf(out, "%s: %s\n", label, msg.Content)
	}
}

func extractCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("extract", flag.ExitOnError)
	cvPath := flags.String("cv", cfg.CVPath, "path to the CV document")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse extract flags: %v", err)
	}

	text, err := document.Extract(*cvPath)
	if err != nil {
		logger.Fatalf("extract %s: %v", *cvPath, err)
	}
	fmt.Println(text)
}

func printUsage() {
	fmt.Println("Usage: cvchat <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Load the CV and serve the chat API and UI (use --cv and --addr to override)")
	fmt.Println("  ask      Ask a running server about the CV (use --question, --backend, --show-thinking)")
	fmt.Println("  extract  Print the normalized text extracted from the CV (use --cv)")
}
