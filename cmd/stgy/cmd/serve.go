/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/api"
	"github.com/ssargent/stgyboard/pkg/cache"
	"github.com/ssargent/stgyboard/pkg/config"
	"github.com/ssargent/stgyboard/pkg/printer"
)

const cachePrefix = "stgy"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the short-link REST API server",
	Long: `Start the REST API that encodes, decodes and stores boards and serves
their codes under /s/{id}.

Settings come from the configuration file; flags override them. When
cache.redis_addr is set, share links are served through Redis.

Examples:
  stgy serve
  stgy serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		logger := container.Logger()

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("redis-addr") {
			cfg.Cache.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
		}

		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return printer.Error(cmd.ErrOrStderr(), "Cannot generate API key", err.Error(), nil)
			}
			cfg.Security.APIKey = key
			printer.Warning(out, "No API key configured; generated one for this run: %s\n", key)
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		var tokenCache cache.TokenCache
		if cfg.Cache.RedisAddr != "" {
			redisCache, err := openCache(cfg.Cache.RedisAddr)
			if err != nil {
				printer.Warning(out, "Redis not reachable at %s (share links served from the store): %v\n", cfg.Cache.RedisAddr, err)
			} else {
				defer redisCache.Close()
				tokenCache = redisCache
				logger.Info("token cache enabled", "redis", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverConfig := api.ServerConfig{
			Port:         cfg.Port,
			Bind:         cfg.Bind,
			APIKey:       cfg.Security.APIKey,
			MaxBodyBytes: cfg.Security.MaxBodyBytes,
			BaseURL:      cfg.Share.BaseURL,
			CacheTTL:     cfg.Cache.TTL,
		}

		printer.Info(out, "Metrics available at: http://%s:%d/metrics\n", cfg.Bind, cfg.Port)
		starter := container.GetServerFactory().CreateServerStarter(logger)
		if err := starter.StartServer(ctx, store, tokenCache, serverConfig); err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Server stopped with an error", err.Error(), nil)
		}
		printer.Success(out, "Server stopped\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for /api/v1 (overrides config)")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the token cache (overrides config)")
}

func openCache(addr string) (*cache.RedisCache, error) {
	redisCache, err := cache.NewRedisCache(&redis.Options{Addr: addr}, cachePrefix)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		redisCache.Close()
		return nil, err
	}
	return redisCache, nil
}
