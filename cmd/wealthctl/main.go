// Command wealthctl is a terminal client for the WealthPulse API. It streams
// chat answers, fund summaries and reports as they are generated, runs
// debounced instrument search and prints portfolio data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/session"
	"github.com/wealthpulse/wealthpulse_service/pkg/streamclient"
	"github.com/wealthpulse/wealthpulse_service/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "wealthctl",
		Usage:   "talk to a WealthPulse server from the terminal",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "WealthPulse server base URL",
				EnvVars: []string{"WEALTHPULSE_URL"},
			},
			&cli.StringFlag{
				Name:    "session",
				Usage:   "value of the session cookie, for per-user routes",
				EnvVars: []string{"WEALTHPULSE_SESSION"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log requests to stderr",
			},
		},
		Commands: []*cli.Command{
			chatCommand(),
			fundCommand("summarize", "/api/ai/summarize", "stream a summary of a fund or portfolio"),
			fundCommand("report", "/api/ai/generate-report", "stream a detailed report of a fund or portfolio"),
			searchCommand(),
			portfolioCommand(),
		},
	}
}

func newLogger(c *cli.Context) *zap.Logger {
	if !c.Bool("verbose") {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func newStreamClient(c *cli.Context) *streamclient.Client {
	opts := []streamclient.Option{streamclient.WithLogger(newLogger(c))}
	if v := c.String("session"); v != "" {
		opts = append(opts, streamclient.WithCookie(session.DefaultCookieName, v))
	}
	return streamclient.New(c.String("server"), opts...)
}
