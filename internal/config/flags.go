package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lode",
		Short:         "HTTP load testing tool",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	flags.StringP("url", "u", "", "Target URL to load test")
	flags.StringP("method", "m", "GET", "HTTP method to use")
	flags.IntP("requests", "r", 100, "Number of requests to send")
	flags.IntP("concurrency", "c", runtime.NumCPU(), "Number of concurrent requests")
	flags.IntP("timeout", "t", 30, "Per-request timeout in seconds")
	flags.StringP("body", "b", "", "JSON body for POST/PUT/PATCH requests")
	flags.StringP("headers", "H", "", "Custom headers as comma-separated name:value pairs")
	flags.StringP("format", "f", FormatText, "Output format (text or json)")
	flags.Int("rate", 0, "Requests per second limit (0 means unlimited)")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	flags.String("otlp-endpoint", "", "OTLP collector endpoint for trace export")
	flags.String("otlp-protocol", "grpc", "OTLP transport protocol (grpc or http)")
	flags.Bool("otlp-insecure", false, "Skip TLS verification for OTLP export")
	flags.Float64("otlp-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.Bool("propagate-trace", false, "Inject W3C trace context headers into generated requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("url") {
		val, err := fs.GetString("url")
		if err != nil {
			return err
		}
		cfg.URL = val
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetInt("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = time.Duration(val) * time.Second
	}
	if fs.Changed("body") {
		val, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = val
	}
	if fs.Changed("headers") {
		val, err := fs.GetString("headers")
		if err != nil {
			return err
		}
		headers, err := ParseHeaders(val)
		if err != nil {
			return err
		}
		cfg.Headers = headers
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("otlp-endpoint") {
		val, err := fs.GetString("otlp-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = val
	}
	if fs.Changed("otlp-protocol") {
		val, err := fs.GetString("otlp-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = val
	}
	if fs.Changed("otlp-insecure") {
		val, err := fs.GetBool("otlp-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("otlp-sample-rate") {
		val, err := fs.GetFloat64("otlp-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("propagate-trace") {
		val, err := fs.GetBool("propagate-trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}
	return nil
}
