package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deixis/hcrun"
	"github.com/deixis/hcrun/internal/checkin"
	"github.com/deixis/hcrun/internal/config"
	"github.com/deixis/hcrun/internal/logging"
	"github.com/deixis/hcrun/internal/report"
	"github.com/deixis/hcrun/internal/runner"
	"github.com/deixis/hcrun/internal/workflow"
)

// Exit codes.
const (
	exitSuccess      = 0
	exitError        = 1
	exitInvalidInput = 2
)

var (
	// errUsage marks invalid flags or arguments.
	errUsage = errors.New("invalid usage")
	// errDelivery marks a completion ping that was not delivered. It has
	// already been logged when returned.
	errDelivery = errors.New("completion ping not delivered")
)

// flags holds the raw command line. Values that can also come from the
// environment or the config file are read through viper instead.
type flags struct {
	uuid      string
	slug      string
	pingKey   string
	time      bool
	head      bool
	pingOnly  bool
	log       bool
	detailed  bool
	env       bool
	verbose   bool
	userAgent string
	baseURL   string
	config    string
}

// newRootCmd builds the hcrun command. Diagnostics are written to stderr.
func newRootCmd(stderr io.Writer) *cobra.Command {
	f := &flags{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hcrun [flags] -- <command> [args...]",
		Short: "Run a command and report its outcome to Healthchecks.io",
		Long: `hcrun runs a command, captures its combined stdout and stderr, and pings a
Healthchecks.io check with the exit code and output. Use it in place of the
job command in a crontab to get alerted when the job fails or never runs.

Example:
  hcrun --uuid 0f0c5b9e-3e2b-4a4e-9d4b-5d0f4c5c1a11 -- /usr/local/bin/backup.sh
  HEALTHCHECKS_PING_KEY=abc hcrun --slug nightly-backup --time -- pg_dump app`,
		Version:       hcrun.Version,
		Args:          requireCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvocation(cmd, v, f, args, stderr)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.uuid, "uuid", "k", "", "check's UUID to ping")
	fs.StringVarP(&f.slug, "slug", "s", "", "check's slug to ping; requires a ping key")
	fs.StringVar(&f.pingKey, "ping-key", "", "project ping key used with --slug (env "+config.EnvPingKey+")")
	fs.BoolVarP(&f.time, "time", "t", false, "ping when the command starts as well as when it completes")
	fs.BoolVar(&f.head, "head", false, "report the first 10000 bytes of output instead of the last")
	fs.BoolVar(&f.pingOnly, "ping-only", false, "do not report any output from the command")
	fs.BoolVar(&f.log, "log", false, "log the run without signalling success or failure")
	fs.BoolVar(&f.detailed, "detailed", false, "include the command line, exit code and duration in the report")
	fs.BoolVar(&f.env, "env", false, "also report the process environment; requires --detailed")
	fs.BoolVar(&f.verbose, "verbose", false, "write debugging details to stderr")
	fs.StringVar(&f.userAgent, "user-agent", "", "custom label prefixed to the User-Agent header")
	fs.StringVar(&f.baseURL, "base-url", checkin.DefaultBaseURL, "base URL of the ping server (env "+config.EnvBaseURL+")")
	fs.StringVar(&f.config, "config", "", "config file (env "+config.EnvConfig+", default "+defaultConfigHint()+")")

	cmd.MarkFlagsOneRequired("uuid", "slug")
	cmd.MarkFlagsMutuallyExclusive("uuid", "slug")
	cmd.MarkFlagsMutuallyExclusive("time", "log")
	cmd.MarkFlagsMutuallyExclusive("ping-only", "detailed")
	cmd.MarkFlagsMutuallyExclusive("ping-only", "env")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	return cmd
}

// requireCommand accepts only a non-empty command given after "--".
func requireCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command, pass it after --", errUsage)
	}
	if cmd.ArgsLenAtDash() != 0 {
		return fmt.Errorf("%w: the command must follow --, got %q", errUsage, args[0])
	}
	if args[0] == "" {
		return fmt.Errorf("%w: empty command", errUsage)
	}
	return nil
}

// bindSettings layers flags over environment over the config file for the
// settings that support all three.
func bindSettings(cmd *cobra.Command, v *viper.Viper) error {
	fs := cmd.Flags()
	bindings := []struct {
		key  string
		flag string
		env  string
	}{
		{"ping_key", "ping-key", config.EnvPingKey},
		{"base_url", "base-url", config.EnvBaseURL},
		{"config", "config", config.EnvConfig},
		{"user_agent", "user-agent", ""},
	}
	for _, b := range bindings {
		if err := v.BindPFlag(b.key, fs.Lookup(b.flag)); err != nil {
			return err
		}
		if b.env == "" {
			continue
		}
		if err := v.BindEnv(b.key, b.env); err != nil {
			return err
		}
	}

	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if cfg.BaseURL != "" {
		v.SetDefault("base_url", cfg.BaseURL)
	}
	v.SetDefault("ping_key", cfg.PingKey)
	v.SetDefault("user_agent", cfg.UserAgent)
	return nil
}

func runInvocation(cmd *cobra.Command, v *viper.Viper, f *flags, args []string, stderr io.Writer) error {
	if f.env && !f.detailed {
		return fmt.Errorf("%w: --env requires --detailed", errUsage)
	}
	if err := bindSettings(cmd, v); err != nil {
		return err
	}

	// viper only falls back to a flag's default after env and SetDefault, so
	// a base URL from the config file wins over the built-in one.
	endpoint := checkin.Endpoint{
		BaseURL: v.GetString("base_url"),
		UUID:    f.uuid,
		PingKey: v.GetString("ping_key"),
		Slug:    f.slug,
	}
	prefix, err := endpoint.URL()
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	logger := logging.New(logging.Options{
		Verbose: f.verbose,
		Out:     stderr,
		Secrets: endpoint.Secrets(),
	})

	inv := workflow.Invocation{
		Command:  args,
		Time:     f.time,
		PingOnly: f.pingOnly,
		Format: report.Options{
			Detailed: f.detailed,
			Head:     f.head,
			LogOnly:  f.log,
		},
	}
	if f.env {
		inv.Format.Env = os.Environ()
	}

	engine := &workflow.Engine{
		Runner: &runner.Runner{Logger: logger},
		Notifier: checkin.New(prefix, checkin.Options{
			UserAgent: checkin.UserAgent(v.GetString("user_agent")),
			Logger:    logger,
		}),
		Logger: logger,
	}

	if _, err := engine.Run(cmd.Context(), inv); err != nil {
		logger.Error().Err(err).Msg("failed to reach the monitoring endpoint")
		return fmt.Errorf("%w: %w", errDelivery, err)
	}
	return nil
}

// exitCodeForError maps an error returned by the root command to a process
// exit code.
func exitCodeForError(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errDelivery):
		return exitError
	case errors.Is(err, errUsage), isInvalidInputError(err.Error()):
		return exitInvalidInput
	default:
		return exitError
	}
}

// isInvalidInputError catches cobra's own flag validation errors.
func isInvalidInputError(msg string) bool {
	patterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"at least one of the flags in the group",
		"required flag",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func defaultConfigHint() string {
	if p := config.DefaultPath(); p != "" {
		return p
	}
	return "none"
}
