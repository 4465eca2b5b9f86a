package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

type collector struct {
	mu      sync.Mutex
	results []*entities.SearchResult
}

func (c *collector) add(r *entities.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.results))
	for _, r := range c.results {
		out = append(out, r.Query)
	}
	return out
}

func TestSearcher_DebouncesBursts(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	fetch := func(_ context.Context, q string, seq uint64) (*entities.SearchResult, error) {
		mu.Lock()
		sent = append(sent, q)
		mu.Unlock()
		return &entities.SearchResult{Query: q, Seq: seq}, nil
	}
	var got collector
	s := newSearcher(fetch, 20*time.Millisecond, got.add, zaptest.NewLogger(t))
	defer s.Stop()

	for _, q := range []string{"b", "bi", "bit", "bitc"} {
		s.Update(context.Background(), q)
	}

	require.Eventually(t, func() bool { return len(got.queries()) == 1 }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"bitc"}, sent)
	assert.Equal(t, []string{"bitc"}, got.queries())
}

func TestSearcher_DropsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	fetch := func(_ context.Context, q string, seq uint64) (*entities.SearchResult, error) {
		if q == "slow" {
			<-release
		}
		return &entities.SearchResult{Query: q, Seq: seq}, nil
	}
	var got collector
	s := newSearcher(fetch, time.Millisecond, got.add, zaptest.NewLogger(t))
	defer s.Stop()

	s.Update(context.Background(), "slow")
	time.Sleep(20 * time.Millisecond)
	s.Update(context.Background(), "fast")

	require.Eventually(t, func() bool { return len(got.queries()) == 1 }, time.Second, 5*time.Millisecond)
	close(release)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, []string{"fast"}, got.queries())
}

func TestSearcher_EmptyQuerySupersedesPending(t *testing.T) {
	fetch := func(_ context.Context, q string, seq uint64) (*entities.SearchResult, error) {
		return &entities.SearchResult{Query: q, Seq: seq}, nil
	}
	var got collector
	s := newSearcher(fetch, 10*time.Millisecond, got.add, zaptest.NewLogger(t))

	s.Update(context.Background(), "axis")
	s.Update(context.Background(), "  ")
	time.Sleep(40 * time.Millisecond)
	s.Flush(context.Background())

	assert.Empty(t, got.queries())
}

func TestSearcher_FlushWaitsForInflightRequest(t *testing.T) {
	started := make(chan struct{})
	fetch := func(_ context.Context, q string, seq uint64) (*entities.SearchResult, error) {
		close(started)
		time.Sleep(30 * time.Millisecond)
		return &entities.SearchResult{Query: q, Seq: seq}, nil
	}
	var got collector
	s := newSearcher(fetch, time.Millisecond, got.add, zaptest.NewLogger(t))

	s.Update(context.Background(), "nifty")
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("search was never sent")
	}
	s.Flush(context.Background())

	assert.Equal(t, []string{"nifty"}, got.queries())
}

func TestReadQueries_FlushesLastLine(t *testing.T) {
	fetch := func(_ context.Context, q string, seq uint64) (*entities.SearchResult, error) {
		return &entities.SearchResult{Query: q, Seq: seq}, nil
	}
	var got collector
	s := newSearcher(fetch, time.Hour, got.add, zaptest.NewLogger(t))

	require.NoError(t, readQueries(context.Background(), strings.NewReader("h\nhd\nhdfc\n"), s))
	s.Flush(context.Background())

	assert.Equal(t, []string{"hdfc"}, got.queries())
}

func TestPrintDashboard(t *testing.T) {
	ret, vol := 0.12, 0.2
	d := &entities.PortfolioDashboard{
		FundData: entities.FundData{
			PortfolioItems: []entities.PortfolioHolding{
				{PortfolioItem: entities.PortfolioItem{Symbol: "119551", Name: "Axis Bluechip Fund"},
					RiskVolatility: &entities.RiskVolatility{AnnualizedReturn: &ret, AnnualizedVolatility: &vol}},
				{PortfolioItem: entities.PortfolioItem{Symbol: "bitcoin", Name: "Bitcoin"}},
			},
			RiskVolatility: &entities.RiskVolatility{AnnualizedReturn: &ret},
		},
		Errors: []string{"bitcoin: risk_volatility"},
	}

	var buf bytes.Buffer
	printDashboard(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "12.00%")
	assert.Contains(t, out, "20.00%")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "unavailable: bitcoin: risk_volatility")
}
