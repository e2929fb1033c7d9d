package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ytget/ytinfo"
	"github.com/ytget/ytinfo/client"
	"github.com/ytget/ytinfo/internal/config"
	"github.com/ytget/ytinfo/internal/jscache"
	"github.com/ytget/ytinfo/internal/logger"
	"github.com/ytget/ytinfo/internal/server"
	"github.com/ytget/ytinfo/youtube/cipher"
)

// app carries the loaded configuration between commands.
type app struct {
	v   *viper.Viper
	cfg config.Config

	newResolver func(config.Config) server.Resolver
}

func newApp() *app {
	return &app{newResolver: defaultResolver}
}

func defaultResolver(cfg config.Config) server.Resolver {
	c := client.NewWith(client.Config{
		Timeout:     cfg.HTTP.Timeout,
		MaxAttempts: cfg.HTTP.Retries,
		UserAgent:   cfg.HTTP.UserAgent,
		ProxyURL:    cfg.HTTP.Proxy,
	})
	dec := cipher.New(c)
	if cfg.Cache.Dir != "" {
		store, err := jscache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			logger.WithComponent(logger.ComponentApp).Warn("Player script cache disabled", map[string]interface{}{
				"dir":   cfg.Cache.Dir,
				"error": err.Error(),
			})
		} else {
			dec.Store = store
			dec.StoreTTL = cfg.Cache.TTL
		}
	}
	return ytinfo.New().
		WithFetcher(c).
		WithLanguage(cfg.Language).
		WithDecipherer(dec)
}

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"lang":           config.KeyLanguage,
	"http-timeout":   config.KeyHTTPTimeout,
	"retries":        config.KeyHTTPRetries,
	"ua":             config.KeyHTTPUserAgent,
	"proxy":          config.KeyHTTPProxy,
	"cache-dir":      config.KeyCacheDir,
	"log-level":      config.KeyLogLevel,
	"log-format":     config.KeyLogFormat,
	"log-components": config.KeyLogComponents,
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "ytinfo",
		Short:        "Resolve YouTube video metadata and stream formats",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.New(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			for name, key := range flagKeys {
				if f := cmd.Flags().Lookup(name); f != nil {
					if err := v.BindPFlag(key, f); err != nil {
						return err
					}
				}
			}
			if f := cmd.Flags().Lookup("addr"); f != nil {
				if err := v.BindPFlag(config.KeyServerAddr, f); err != nil {
					return err
				}
			}

			a.v = v
			a.cfg = config.From(v)
			l, err := a.cfg.Logger()
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			logger.SetGlobalLogger(l)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default ./ytinfo.yaml or <user config dir>/ytinfo/ytinfo.yaml)")
	pf.String("lang", "en", "Language sent upstream")
	pf.Duration("http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	pf.Int("retries", 2, "Total attempts per upstream request")
	pf.String("ua", "", "Override User-Agent header")
	pf.String("proxy", "", "Proxy URL (http/https/socks)")
	pf.String("cache-dir", "", "Directory keeping downloaded player scripts")
	pf.String("log-level", "INFO", "Log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	pf.String("log-format", "text", "Log format (text, json, color)")
	pf.String("log-components", "app,server", "Components to log, comma separated, or all")

	root.AddCommand(newInfoCmd(a), newBasicCmd(a), newServeCmd(a), newVersionCmd())
	return root
}
