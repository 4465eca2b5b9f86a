package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/pkg/debounce"
)

type searchFunc func(ctx context.Context, q string, seq uint64) (*entities.SearchResult, error)

// searcher debounces keystroke-sized query updates and only prints the
// response to the most recent query. Responses to superseded queries are
// dropped even when they arrive last.
type searcher struct {
	fetch    searchFunc
	debounce *debounce.Debouncer
	seq      debounce.Sequencer
	print    func(*entities.SearchResult)
	logger   *zap.Logger

	mu       sync.Mutex
	pending  string
	inflight sync.WaitGroup
}

func newSearcher(fetch searchFunc, window time.Duration, print func(*entities.SearchResult), logger *zap.Logger) *searcher {
	return &searcher{
		fetch:    fetch,
		debounce: debounce.New(window),
		print:    print,
		logger:   logger,
	}
}

// Update records the latest query text.
func (s *searcher) Update(ctx context.Context, q string) {
	q = strings.TrimSpace(q)
	s.mu.Lock()
	s.pending = q
	s.mu.Unlock()
	if q == "" {
		s.debounce.Cancel()
		s.seq.Next()
		return
	}
	s.debounce.Trigger(func() {
		s.mu.Lock()
		if s.pending != q {
			// Flushed or replaced while the timer was firing.
			s.mu.Unlock()
			return
		}
		s.pending = ""
		s.inflight.Add(1)
		s.mu.Unlock()
		ticket := s.seq.Next()
		go func() {
			defer s.inflight.Done()
			s.run(ctx, q, ticket)
		}()
	})
}

func (s *searcher) run(ctx context.Context, q string, ticket uint64) {
	res, err := s.fetch(ctx, q, ticket)
	if !s.seq.IsLatest(ticket) {
		s.logger.Debug("Dropping stale search response", zap.String("query", q), zap.Uint64("seq", ticket))
		return
	}
	if err != nil {
		s.logger.Warn("Search failed", zap.String("query", q), zap.Error(err))
		return
	}
	s.print(res)
}

// Flush sends a query still waiting out its quiet period right away and
// waits for every outstanding response.
func (s *searcher) Flush(ctx context.Context) {
	s.debounce.Cancel()
	s.mu.Lock()
	q := s.pending
	s.pending = ""
	s.mu.Unlock()
	if q != "" {
		s.run(ctx, q, s.seq.Next())
	}
	s.inflight.Wait()
}

func (s *searcher) Stop() {
	s.debounce.Cancel()
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search instruments; type queries line by line",
		ArgsUsage: "<stock|mutual|crypto>",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "debounce", Value: 300 * time.Millisecond, Usage: "quiet period before a query is sent"},
		},
		Action: func(c *cli.Context) error {
			kind, ok := entities.ParseAssetKind(c.Args().First())
			if !ok {
				return cli.Exit("kind must be one of stock, mutual, crypto", 2)
			}
			client := newStreamClient(c)
			fetch := func(ctx context.Context, q string, seq uint64) (*entities.SearchResult, error) {
				var res entities.SearchResult
				path := fmt.Sprintf("/api/market/search/%s?q=%s&seq=%s", kind, url.QueryEscape(q), strconv.FormatUint(seq, 10))
				if err := client.Get(ctx, path, &res); err != nil {
					return nil, err
				}
				return &res, nil
			}
			s := newSearcher(fetch, c.Duration("debounce"), func(res *entities.SearchResult) {
				printSuggestions(os.Stdout, res)
			}, newLogger(c))
			defer s.Stop()
			if err := readQueries(c.Context, os.Stdin, s); err != nil {
				return err
			}
			s.Flush(c.Context)
			return nil
		},
	}
}

func readQueries(ctx context.Context, r io.Reader, s *searcher) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		s.Update(ctx, scanner.Text())
	}
	return scanner.Err()
}

func printSuggestions(w io.Writer, res *entities.SearchResult) {
	fmt.Fprintf(w, "-- %q (%d)\n", res.Query, len(res.Suggestions))
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "  %-14s %s\n", s.ID, s.Name)
	}
}
