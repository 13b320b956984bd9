package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/urfave/cli.v1"

	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/metrics"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "docindex"
	app.HelpName = os.Args[0]
	app.Usage = "build and query an inverted index over a tree of text files"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "path to a .yaml or .toml config file"},
		cli.StringFlag{Name: "index, i", Usage: "index file (overrides config)"},
		cli.StringFlag{Name: "stopwords, s", Usage: "stop-word list (overrides config)"},
	}
	app.Commands = []cli.Command{
		buildCommand,
		searchCommand,
		infoCommand,
	}
	return app
}

// session bundles what every command needs after flags are parsed.
type session struct {
	cfg     *config.Config
	metrics *metrics.Metrics
}

func setup(c *cli.Context) (*session, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if v := c.GlobalString("index"); v != "" {
		cfg.Index.IndexPath = v
	}
	if v := c.GlobalString("stopwords"); v != "" {
		cfg.Index.StopWordsPath = v
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return &session{
		cfg:     cfg,
		metrics: metrics.New(prometheus.NewRegistry()),
	}, nil
}

// finish exports metrics when enabled. Export failures are logged only.
func (s *session) finish() {
	if !s.cfg.Metrics.Enabled {
		return
	}
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.TextfilePath); err != nil {
		slog.Error("metrics export failed", "error", err)
	}
}

func signalContext(command string) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return logger.WithCommand(ctx, command), stop
}
