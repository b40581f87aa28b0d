package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ihbobul/lode/internal/config"
	"github.com/ihbobul/lode/internal/engine"
	"github.com/ihbobul/lode/internal/output"
	"github.com/ihbobul/lode/internal/tracing"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := validateBody(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	opts := []engine.Option{engine.WithTracer(tracer)}
	if cfg.LogErrors {
		opts = append(opts, engine.WithFailureLogger(&stderrFailureLogger{}))
	}

	e, err := engine.New(cfg, opts...)
	if err != nil {
		return err
	}

	var progress *output.ProgressReporter
	if cfg.Format != config.FormatJSON {
		progress = output.NewProgressReporter(e.Collector(), progressInterval, os.Stdout)
		progress.Start()
	}

	rep, runErr := e.Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if runErr != nil {
		return runErr
	}

	// Per-request failures are part of the report, not an exit condition.
	if cfg.Format == config.FormatJSON {
		return output.PrintJSONReport(os.Stdout, rep)
	}
	output.PrintReport(os.Stdout, rep)
	return nil
}

// validateBody rejects a malformed JSON body up front. The body flag is
// documented as JSON text, so a typo should fail the run before any
// dispatch rather than hammer the target with garbage.
func validateBody(cfg *config.Config) error {
	body := strings.TrimSpace(cfg.Body)
	if body == "" || !cfg.AcceptsBody() {
		return nil
	}
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		if !gjson.Valid(body) {
			return fmt.Errorf("body is not valid JSON")
		}
	}
	return nil
}
