package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/tabfile/xport/internal/api"
	"github.com/tabfile/xport/internal/catalog"
	"github.com/tabfile/xport/internal/logger"
	"github.com/tabfile/xport/internal/version"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dataset REST API",
		Flags: append(append(dataDirFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyLoggingConfig(c, cfg)
			applyDataDirConfig(c, cfg)
			applyServeConfig(c, cfg, &addr)

			log := setupLogger()
			ctx = logger.WithContext(ctx, log)

			cat := catalog.New(dataDir)
			if err := cat.Refresh(); err != nil {
				log.Error("scan data directory", "dir", dataDir, "error", err)
				return err
			}
			log.Info("catalog ready", "dir", cat.Dir(), "datasets", len(cat.List()))

			server := api.NewServer(cat)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "version", version.String())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
