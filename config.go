package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/liarparty/internal/game"
)

type Config struct {
	bind       string
	database   string
	jwtSecret  string
	maxRounds  int
	port       int
	prefix     string
	profile    bool
	rateBurst  int
	rateLimit  float64
	startDelay time.Duration
	tlsCert    string
	tlsKey     string
	tokenTTL   time.Duration
	turnTime   time.Duration
	verbose    bool
	version    bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.turnTime <= 0 || c.startDelay <= 0 || c.tokenTTL <= 0 {
		return errors.New("--turn-time, --start-delay and --token-ttl must be positive")
	}
	if c.maxRounds < 1 {
		return fmt.Errorf("invalid max rounds (must be at least 1): %d", c.maxRounds)
	}
	if c.rateLimit <= 0 || c.rateBurst < 1 {
		return errors.New("--rate-limit must be positive and --rate-burst at least 1")
	}
	if c.database == "" {
		return errors.New("--db must not be empty")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) settings() game.Settings {
	return game.Settings{
		TurnTime:   c.turnTime,
		StartDelay: c.startDelay,
		MaxRounds:  c.maxRounds,
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LIARPARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "liarparty",
		Short:         "A real-time room server for the liar word-guessing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := game.DefaultSettings()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LIARPARTY_BIND)")
	fs.StringVar(&cfg.database, "db", "liarparty.db", "path to the sqlite database (env: LIARPARTY_DB)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "secret used to sign login tokens; random per run if unset (env: LIARPARTY_JWT_SECRET)")
	fs.IntVar(&cfg.maxRounds, "max-rounds", defaults.MaxRounds, "turns each alive player gets before voting (env: LIARPARTY_MAX_ROUNDS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LIARPARTY_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LIARPARTY_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LIARPARTY_PROFILE)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 10, "websocket messages a connection may send in a burst (env: LIARPARTY_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 5, "sustained websocket messages per second per connection (env: LIARPARTY_RATE_LIMIT)")
	fs.DurationVar(&cfg.startDelay, "start-delay", defaults.StartDelay, "pause between role assignment and the first turn (env: LIARPARTY_START_DELAY)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LIARPARTY_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LIARPARTY_TLS_KEY)")
	fs.DurationVar(&cfg.tokenTTL, "token-ttl", 24*time.Hour, "lifetime of login tokens (env: LIARPARTY_TOKEN_TTL)")
	fs.DurationVar(&cfg.turnTime, "turn-time", defaults.TurnTime, "speaking time per turn (env: LIARPARTY_TURN_TIME)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LIARPARTY_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LIARPARTY_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("liarparty v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
