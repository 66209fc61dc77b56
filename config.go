/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	baseURL       string
	bind          string
	corsOrigins   []string
	createLimit   int
	port          int
	prefix        string
	profile       bool
	roomTTL       time.Duration
	sweepInterval time.Duration
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.roomTTL <= 0 {
		return fmt.Errorf("invalid room ttl (must be positive): %s", c.roomTTL)
	}
	if c.sweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval (must be positive): %s", c.sweepInterval)
	}
	if c.createLimit < 1 {
		return fmt.Errorf("invalid create limit (must be at least 1): %d", c.createLimit)
	}
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base url (must be an absolute http or https url): %s", c.baseURL)
		}
		c.baseURL = strings.TrimSuffix(c.baseURL, "/")
	}

	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SHUFFLEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "shufflebox",
		Short:         "Host a room, let everyone join from their phone, and hand out secret shuffled numbers.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.baseURL, "base-url", "", "public url used in join links, e.g. https://example.com/santa (env: SHUFFLEBOX_BASE_URL)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SHUFFLEBOX_BIND)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origin", nil, "origin allowed to call the api, repeatable (env: SHUFFLEBOX_CORS_ORIGIN)")
	fs.IntVar(&cfg.createLimit, "create-limit", 30, "rooms each client may create per minute (env: SHUFFLEBOX_CREATE_LIMIT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SHUFFLEBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SHUFFLEBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SHUFFLEBOX_PROFILE)")
	fs.DurationVar(&cfg.roomTTL, "room-ttl", 2*time.Hour, "time after creation before a room is removed (env: SHUFFLEBOX_ROOM_TTL)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", time.Hour, "how often expired rooms are removed (env: SHUFFLEBOX_SWEEP_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SHUFFLEBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SHUFFLEBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SHUFFLEBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SHUFFLEBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("shufflebox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
