package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

func portfolioCommand() *cli.Command {
	userFlag := &cli.StringFlag{Name: "user", Usage: "user id (the session subject)", Required: true}
	return &cli.Command{
		Name:  "portfolio",
		Usage: "show portfolio items or the aggregated dashboard",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print the raw portfolio item list",
				Flags: []cli.Flag{userFlag},
				Action: func(c *cli.Context) error {
					var items json.RawMessage
					if err := newStreamClient(c).Get(c.Context, "/api/portfolio/"+url.PathEscape(c.String("user")), &items); err != nil {
						return err
					}
					return printJSON(os.Stdout, items)
				},
			},
			{
				Name:  "dashboard",
				Usage: "print per-holding metrics and the aggregate",
				Flags: []cli.Flag{userFlag, &cli.BoolFlag{Name: "json", Usage: "print the raw JSON"}},
				Action: func(c *cli.Context) error {
					var dash entities.PortfolioDashboard
					path := "/api/portfolio/" + url.PathEscape(c.String("user")) + "/dashboard"
					if err := newStreamClient(c).Get(c.Context, path, &dash); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(os.Stdout, dash)
					}
					printDashboard(os.Stdout, &dash)
					return nil
				},
			},
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDashboard(w io.Writer, d *entities.PortfolioDashboard) {
	fmt.Fprintf(w, "%-14s %-32s %10s %10s %10s %8s\n", "SYMBOL", "NAME", "NAV", "RETURN", "VOL", "SHARPE")
	for _, h := range d.PortfolioItems {
		rv := h.RiskVolatility
		if rv == nil {
			rv = &entities.RiskVolatility{}
		}
		fmt.Fprintf(w, "%-14s %-32s %10s %10s %10s %8s\n", h.Symbol, clip(h.Name, 32),
			num(h.NAV), pct(rv.AnnualizedReturn), pct(rv.AnnualizedVolatility), num(rv.SharpeRatio))
	}
	if rv := d.RiskVolatility; rv != nil {
		fmt.Fprintf(w, "\nPortfolio: return %s, volatility %s, sharpe %s\n",
			pct(rv.AnnualizedReturn), pct(rv.AnnualizedVolatility), num(rv.SharpeRatio))
	}
	for _, e := range d.Errors {
		fmt.Fprintf(w, "  unavailable: %s\n", e)
	}
}

func pct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *p*100)
}

func num(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
