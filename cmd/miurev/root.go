package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-training/miurev/pkg/cache"
	"github.com/go-training/miurev/pkg/config"
	"github.com/go-training/miurev/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	envFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "miurev",
	Short: "Catalog gateway with token, cooldown and response caching",
	Long: `miurev fronts the music catalog API.

Every outbound call goes through one shared access token, a cooldown driven by
the upstream Retry-After header and a short-lived response cache.

Settings come from flags, then the environment, then a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		return config.BindFlags(v, cmd.Flags())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String(config.KeyLogLevel, "", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.String(config.KeyStore, "file", "token store backend (file, memory, redis)")
	flags.String(config.KeySessionFile, "session.json", "token session file for the file store")
	flags.String(config.KeyRedisAddr, "localhost:6379", "redis address for redis backends")
	flags.String(config.KeyCacheBackend, "memory", "response cache backend (memory, redis)")
	flags.Duration(config.KeyCacheTTL, cache.DefaultTTL, "response cache freshness window")
	flags.Duration(config.KeyHTTPTimeout, 0, "upstream request timeout (default 10s)")
	flags.String(config.KeyAPIBaseURL, "", "catalog API base URL")

	rootCmd.AddCommand(serveCmd, mcpCmd)
}

// loadConfig reads the settings and initializes the default logger on w.
func loadConfig(w io.Writer, vp *viper.Viper) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(vp)
	if err != nil {
		return nil, nil, err
	}
	if w == nil {
		w = os.Stdout
	}
	return cfg, logger.NewWithWriter(w, cfg.LogLevel), nil
}
