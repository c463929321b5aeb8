package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"devreload/internal/events"
	"devreload/internal/redis"
	"devreload/internal/transport/httpdto"

	"github.com/spf13/cobra"
)

// trigger: ask every running dev server to reload its pages.
func triggerCmd() *cobra.Command {
	var (
		source string
		server string
	)
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Broadcast a reload to connected pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if cfg.RedisEnabled && server == "" {
				client, err := redis.Connect(ctx, redisConfig())
				if err != nil {
					return err
				}
				defer client.Close()
				env, err := events.PublishReload(ctx, redis.NewPublisher(client), cfg.RedisChannel, source)
				if err != nil {
					return fmt.Errorf("publish reload: %w", err)
				}
				fmt.Printf("published reload from %s on %s\n", env.Source, cfg.RedisChannel)
				return nil
			}

			if server == "" {
				server = "http://localhost:" + cfg.AppPort
			}
			clients, err := postReload(ctx, server, source)
			if err != nil {
				return err
			}
			fmt.Printf("reloaded %d page(s)\n", clients)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source recorded with the event (default hostname)")
	cmd.Flags().StringVar(&server, "server", "", "dev server base URL; skips redis when set")
	return cmd
}

func postReload(ctx context.Context, baseURL, source string) (int, error) {
	body, err := json.Marshal(httpdto.ReloadRequest{Source: source})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/reload", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post reload: %w", err)
	}
	defer resp.Body.Close()

	var out httpdto.Response[httpdto.ReloadResponse]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode reload response: %w", err)
	}
	if !out.Success {
		return 0, fmt.Errorf("reload rejected: %s (%s)", out.Error, out.Code)
	}
	return out.Data.Clients, nil
}
