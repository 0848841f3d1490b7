package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/AndersSpringborg/chronus/pkg/api"
	"github.com/AndersSpringborg/chronus/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "chronusd",
		Usage: "Serve chronus systems, runs and recommendations over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "configuration file (yaml or json)",
				Sources: cli.EnvVars("CHRONUS_CONFIG"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "listen port",
				Sources: cli.EnvVars("CHRONUS_PORT", "PORT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if cmd.IsSet("port") {
				cfg.Server.Port = cmd.Int("port")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return api.Serve(ctx, cfg)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
