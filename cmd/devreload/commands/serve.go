package commands

import (
	"context"

	"devreload/internal/events"
	"devreload/internal/handler"
	"devreload/internal/redis"
	"devreload/internal/server"
	"devreload/internal/watcher"
	"devreload/internal/websocket"

	"github.com/spf13/cobra"
)

// serve: run the dev server that pushes reloads to connected pages.
func serveCmd() *cobra.Command {
	var (
		port    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hot-reload dev server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.AppPort = port
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			wsLogger := websocket.NewLogger(log.Named("websocket"))
			hub := websocket.NewHub(wsLogger)
			go hub.Run(ctx)

			onChange := func(path string) { hub.Reload() }
			if cfg.RedisEnabled {
				client, err := redis.Connect(ctx, redisConfig())
				if err != nil {
					return err
				}
				defer client.Close()

				bridge := websocket.NewRedisBridge(redis.NewSubscriber(client), hub, log.Named("bridge"))
				go func() {
					if err := bridge.Run(ctx, []string{cfg.RedisChannel}); err != nil {
						log.Errorf("redis bridge stopped: %s", err)
					}
				}()

				// every instance, this one included, reloads through the bridge
				pub := redis.NewPublisher(client)
				onChange = func(path string) {
					if err := publishChange(ctx, pub, path); err != nil {
						log.Errorf("publish change: %s", err)
						hub.Reload()
					}
				}
			}

			if !noWatch {
				w, err := watcher.New(cfg.WatchPaths, cfg.WatchDebounce, onChange, log.Named("watcher"))
				if err != nil {
					return err
				}
				go func() { _ = w.Run(ctx) }()
			}

			srv := server.New(cfg, log)
			if err := srv.SetupRoutes(&server.Handlers{
				Reload: handler.NewReloadHandler(hub, cfg.StaticDir, cfg.RedisEnabled),
				Socket: websocket.NewHandler(hub, wsLogger),
			}); err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $APP_PORT or 8000)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch files for changes")
	return cmd
}

func publishChange(ctx context.Context, pub events.Publisher, path string) error {
	env := events.NewReloadEnvelope(path)
	env.EventType = events.EventTypeFileChanged
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return pub.Publish(ctx, cfg.RedisChannel, data)
}

func redisConfig() redis.Config {
	return redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
