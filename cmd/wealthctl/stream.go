package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v2"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

var renderFlag = &cli.BoolFlag{
	Name:  "render",
	Usage: "re-render the finished reply as formatted markdown",
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "ask the assistant a question",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "web", Usage: "let the model search the web"},
			renderFlag,
		},
		Action: func(c *cli.Context) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return cli.Exit("a question is required", 2)
			}
			body := map[string]interface{}{
				"prompt":          question,
				"enableWebSearch": c.Bool("web"),
			}
			return streamTo(c, "/api/chat", body, os.Stdout)
		},
	}
}

func fundCommand(name, path, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<fund-data.json | ->",
		Flags:     []cli.Flag{renderFlag},
		Action: func(c *cli.Context) error {
			data, err := readFundData(c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return streamTo(c, path, map[string]interface{}{"fundData": data}, os.Stdout)
		},
	}
}

// readFundData loads a fund payload from a file, or stdin when path is "-".
func readFundData(path string) (*entities.FundData, error) {
	var r io.Reader
	switch path {
	case "":
		return nil, fmt.Errorf("a fund data file is required")
	case "-":
		r = os.Stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open fund data: %w", err)
		}
		defer f.Close()
		r = f
	}
	var data entities.FundData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode fund data: %w", err)
	}
	return &data, nil
}

// streamTo prints fragments to w as they arrive. With --render the finished
// text is printed again through glamour.
func streamTo(c *cli.Context, path string, body interface{}, w io.Writer) error {
	full, err := newStreamClient(c).Stream(c.Context, path, body, func(chunk string) {
		fmt.Fprint(w, chunk)
	})
	fmt.Fprintln(w)
	if err != nil {
		return err
	}
	if !c.Bool("render") || strings.TrimSpace(full) == "" {
		return nil
	}
	out, err := renderMarkdown(full)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Fprint(w, out)
	return nil
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
