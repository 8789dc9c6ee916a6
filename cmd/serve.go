package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/perhapsishould/contract-processor/internal/config"
	"github.com/perhapsishould/contract-processor/internal/server"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the contract processing service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Sources: cli.EnvVars("CP_SERVER_PORT"),
			},
			&cli.StringFlag{
				Name:    "upload-dir",
				Usage:   "Directory for transient upload spooling",
				Sources: cli.EnvVars("CP_UPLOAD_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if v := cmd.String("port"); v != "" {
				port, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid port %q: %w", v, err)
				}
				cfg.Server.Port = port
			}
			if v := cmd.String("upload-dir"); v != "" {
				cfg.Upload.Dir = v
			}
			if v := cmd.String("log-level"); v != "" {
				cfg.Logging.Level = v
			}

			return server.Run(ctx, cfg)
		},
	}
}
