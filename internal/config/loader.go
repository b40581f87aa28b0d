package config

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file to
// produce a Config. Flag values override file values.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		Method:      "GET",
		Requests:    100,
		Concurrency: runtime.NumCPU(),
		Timeout:     30 * time.Second,
		Format:      FormatText,
		ConfigFile:  configPath,
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := applyFileSettings(cfg, v); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))

	return cfg, nil
}

// parseFileTimeout reads the timeout file key. A bare number means seconds,
// matching the --timeout flag; strings may also carry a duration suffix
// ("500ms", "1m").
func parseFileTimeout(raw any) (time.Duration, error) {
	switch val := raw.(type) {
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout %q: %w", val, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid timeout value %v", raw)
	}
}

// applyFileSettings maps config file keys onto the Config. Headers come in as
// an object; names are canonicalized and sorted so file loads stay
// deterministic.
func applyFileSettings(cfg *Config, v *viper.Viper) error {
	if v.IsSet("url") {
		cfg.URL = v.GetString("url")
	}
	if v.IsSet("method") {
		cfg.Method = v.GetString("method")
	}
	if v.IsSet("requests") {
		cfg.Requests = v.GetInt("requests")
	}
	if v.IsSet("concurrency") {
		cfg.Concurrency = v.GetInt("concurrency")
	}
	if v.IsSet("timeout") {
		timeout, err := parseFileTimeout(v.Get("timeout"))
		if err != nil {
			return err
		}
		cfg.Timeout = timeout
	}
	if v.IsSet("body") {
		cfg.Body = v.GetString("body")
	}
	if v.IsSet("rate") {
		cfg.Rate = v.GetInt("rate")
	}
	if v.IsSet("format") {
		cfg.Format = v.GetString("format")
	}
	if v.IsSet("log_errors") {
		cfg.LogErrors = v.GetBool("log_errors")
	}
	if v.IsSet("headers") {
		raw := v.GetStringMapString("headers")
		names := make([]string, 0, len(raw))
		for name := range raw {
			names = append(names, name)
		}
		sort.Strings(names)
		headers := make([]Header, 0, len(names))
		for _, name := range names {
			headers = append(headers, Header{
				Name:  http.CanonicalHeaderKey(name),
				Value: raw[name],
			})
		}
		cfg.Headers = headers
	}
	if v.IsSet("tracing.endpoint") {
		cfg.Tracing.Endpoint = v.GetString("tracing.endpoint")
	}
	if v.IsSet("tracing.protocol") {
		cfg.Tracing.Protocol = v.GetString("tracing.protocol")
	}
	if v.IsSet("tracing.service_name") {
		cfg.Tracing.ServiceName = v.GetString("tracing.service_name")
	}
	if v.IsSet("tracing.insecure") {
		cfg.Tracing.Insecure = v.GetBool("tracing.insecure")
	}
	if v.IsSet("tracing.sample_rate") {
		cfg.Tracing.SampleRate = v.GetFloat64("tracing.sample_rate")
	}
	if v.IsSet("tracing.propagate") {
		cfg.Tracing.Propagate = v.GetBool("tracing.propagate")
	}
	return nil
}
