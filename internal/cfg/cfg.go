package cfg

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
)

// Config adds console-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	UpstreamURL           string
	PushURL               string
	SessionToken          string
	APIToken              string
	DatabaseURL           string
	SlackWebhookURL       string
	RefreshTimeoutSeconds int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "console API listen TCP port (1..65535)")
	fs.StringVar(&c.UpstreamURL, "upstream-url", "", "base URL of the municipal complaint service")
	fs.StringVar(&c.PushURL, "push-url", "", "websocket URL of the complaint push channel (empty = no realtime refresh)")
	fs.StringVar(&c.SessionToken, "session-token", "", "operator session token issued by the complaint service")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token protecting the local console API (empty = open)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for the command audit trail (empty = in-memory)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for critical complaint notifications")
	fs.IntVar(&c.RefreshTimeoutSeconds, "refresh-timeout-seconds", 30, "timeout for one registry refresh (1..120)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.UpstreamURL == "" {
		errs = append(errs, errors.New("UPSTREAM_URL is required"))
	} else if u, err := url.Parse(c.UpstreamURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid UPSTREAM_URL %q", c.UpstreamURL))
	}

	if c.PushURL != "" {
		u, err := url.Parse(c.PushURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, fmt.Errorf("invalid PUSH_URL %q (must be ws:// or wss://)", c.PushURL))
		}
	}

	if c.SessionToken == "" {
		errs = append(errs, errors.New("SESSION_TOKEN is required"))
	}

	if c.RefreshTimeoutSeconds <= 0 || c.RefreshTimeoutSeconds > 120 {
		errs = append(errs, fmt.Errorf("invalid REFRESH_TIMEOUT_SECONDS %d (must be 1..120)", c.RefreshTimeoutSeconds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
