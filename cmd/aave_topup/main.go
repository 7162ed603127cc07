package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	defaultConfigPath = "config/config.yml"
	defaultEnvFile    = ".env"
)

func main() {
	app := &cli.App{
		Name:  "aave_topup",
		Usage: "Aave health factor value source and TriggerX auto top-up",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   defaultConfigPath,
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before the environment overrides",
				Value: defaultEnvFile,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "overrides logging.level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "public-url",
				Usage: "public base URL of the value source, overrides PUBLIC_URL",
			},
		},
		Commands: []*cli.Command{
			ServeCommand(),
			RegisterCommand(),
			CreateSafeCommand(),
			StatusCommand(),
			CheckCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
