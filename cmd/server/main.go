package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/logging"
	transport "warbler/internal/transport/http"
)

func main() {
	app := &cli.App{
		Name:   "warbler",
		Usage:  "warbler web server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "start the HTTP server",
				Action:  serve,
			},
			{
				Name:    "migrate",
				Aliases: []string{"m"},
				Usage:   "create the database tables",
				Action:  migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logging.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return transport.Run(ctx, cfg)
}

func migrate(c *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(c.Context, db); err != nil {
		return err
	}
	logging.GetLogger().Info("schema applied", zap.String("db", cfg.DBName))
	return nil
}
