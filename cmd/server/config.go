package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/lifecycle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	historyDB     string
	logLevel      string
	messageBurst  int
	messageRate   float64
	minPlayers    int
	port          int
	prefix        string
	pretty        bool
	publicURL     string
	redisAddr     string
	redisDB       int
	redisPassword string
	resultsDelay  time.Duration
	roomTTL       time.Duration
	secureCookies bool
	sessionTTL    time.Duration
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.minPlayers < 3 || c.minPlayers > lifecycle.MaxRoomCapacity {
		return fmt.Errorf("invalid minimum players (must be between 3-%d inclusive): %d", lifecycle.MaxRoomCapacity, c.minPlayers)
	}
	if c.resultsDelay < 0 {
		return errors.New("results delay cannot be negative")
	}
	if c.redisAddr == "" {
		return errors.New("--redis-addr is required")
	}
	if c.historyDB == "" {
		return errors.New("--history-db is required")
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BLACKSHEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "blacksheep",
		Short:         "Server for a find-the-imposter word party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BLACKSHEEP_BIND)")
	fs.StringVar(&cfg.historyDB, "history-db", "blacksheep.db", "path to the finished game archive (env: BLACKSHEEP_HISTORY_DB)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "minimum log level (env: BLACKSHEEP_LOG_LEVEL)")
	fs.IntVar(&cfg.messageBurst, "message-burst", 5, "clues and chat lines a player may send at once (env: BLACKSHEEP_MESSAGE_BURST)")
	fs.Float64Var(&cfg.messageRate, "message-rate", 1, "clues and chat lines a player may send per second (env: BLACKSHEEP_MESSAGE_RATE)")
	fs.IntVar(&cfg.minPlayers, "min-players", lifecycle.DefaultMinPlayers, "players needed to start a game (env: BLACKSHEEP_MIN_PLAYERS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: BLACKSHEEP_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BLACKSHEEP_PREFIX)")
	fs.BoolVar(&cfg.pretty, "pretty", false, "write human readable logs instead of JSON (env: BLACKSHEEP_PRETTY)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "externally visible base URL for join links (env: BLACKSHEEP_PUBLIC_URL)")
	fs.StringVar(&cfg.redisAddr, "redis-addr", "localhost:6379", "redis address (env: BLACKSHEEP_REDIS_ADDR)")
	fs.IntVar(&cfg.redisDB, "redis-db", 0, "redis database number (env: BLACKSHEEP_REDIS_DB)")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "redis password (env: BLACKSHEEP_REDIS_PASSWORD)")
	fs.DurationVar(&cfg.resultsDelay, "results-delay", 4*time.Second, "how long vote results are shown before the round resolves (env: BLACKSHEEP_RESULTS_DELAY)")
	fs.DurationVar(&cfg.roomTTL, "room-ttl", 24*time.Hour, "time before an untouched room is dropped (env: BLACKSHEEP_ROOM_TTL)")
	fs.BoolVar(&cfg.secureCookies, "secure-cookies", false, "mark session cookies secure, for use behind TLS (env: BLACKSHEEP_SECURE_COOKIES)")
	fs.DurationVar(&cfg.sessionTTL, "session-ttl", 24*time.Hour, "time before an unused session expires (env: BLACKSHEEP_SESSION_TTL)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every request (env: BLACKSHEEP_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BLACKSHEEP_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("blacksheep v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
