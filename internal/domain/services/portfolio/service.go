package portfolio

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/analytics"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
)

const (
	DefaultRiskFreeRate = 0.05
	defaultParallel     = 8
)

// Backend is the slice of the analytics client the portfolio needs.
type Backend interface {
	ListPortfolio(ctx context.Context, userID string) (*analytics.RawResponse, error)
	AddPortfolioItem(ctx context.Context, userID string, req entities.AddPortfolioItemRequest) (*analytics.RawResponse, error)
	RemovePortfolioItem(ctx context.Context, userID, itemID string) (*analytics.RawResponse, error)
	PortfolioItems(ctx context.Context, userID string) ([]entities.PortfolioItem, error)
	RiskVolatility(ctx context.Context, kind entities.AssetKind, id string) (*entities.RiskVolatility, error)
	LatestPrice(ctx context.Context, kind entities.AssetKind, id string) (*float64, error)
}

type Config struct {
	RiskFreeRate float64
	Parallel     int
}

// Service proxies portfolio CRUD and builds the aggregated dashboard.
type Service struct {
	backend      Backend
	riskFreeRate float64
	parallel     int
	logger       *logger.Logger
}

func NewService(backend Backend, cfg Config, log *logger.Logger) *Service {
	if cfg.Parallel <= 0 {
		cfg.Parallel = defaultParallel
	}
	return &Service{
		backend:      backend,
		riskFreeRate: cfg.RiskFreeRate,
		parallel:     cfg.Parallel,
		logger:       log,
	}
}

func (s *Service) List(ctx context.Context, userID string) (*analytics.RawResponse, error) {
	return s.backend.ListPortfolio(ctx, userID)
}

// Add forwards a new item. A missing item type defaults to stock.
func (s *Service) Add(ctx context.Context, userID string, req entities.AddPortfolioItemRequest) (*analytics.RawResponse, error) {
	if req.ItemType == "" {
		req.ItemType = entities.ItemTypeStock
	}
	s.logger.CtxInfo(ctx, "Adding portfolio item",
		"user_id", userID,
		"symbol", req.Symbol,
		"item_type", req.ItemType)
	return s.backend.AddPortfolioItem(ctx, userID, req)
}

func (s *Service) Remove(ctx context.Context, userID, itemID string) (*analytics.RawResponse, error) {
	s.logger.CtxInfo(ctx, "Removing portfolio item", "user_id", userID, "item_id", itemID)
	return s.backend.RemovePortfolioItem(ctx, userID, itemID)
}

// Dashboard enriches every holding with its risk summary and latest price,
// then aggregates. Per-holding failures leave that holding's metrics empty
// and are listed in Errors.
func (s *Service) Dashboard(ctx context.Context, userID string) (*entities.PortfolioDashboard, error) {
	items, err := s.backend.PortfolioItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]entities.PortfolioHolding, len(items))
	var (
		mu     sync.Mutex
		failed []string
	)
	fail := func(item entities.PortfolioItem, part string, err error) {
		metrics.SnapshotPartsFailedTotal.WithLabelValues(string(item.ItemType.AssetKind()), part).Inc()
		s.logger.CtxWarn(ctx, "Portfolio enrichment failed",
			"symbol", item.Symbol,
			"part", part,
			"error", err)
		mu.Lock()
		failed = append(failed, fmt.Sprintf("%s: %s", item.Symbol, part))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, item := range items {
		i, item := i, item
		holdings[i].PortfolioItem = item
		kind := item.ItemType.AssetKind()

		g.Go(func() error {
			rv, err := s.backend.RiskVolatility(gctx, kind, item.Symbol)
			if err != nil {
				fail(item, "risk_volatility", err)
				return nil
			}
			holdings[i].RiskVolatility = rv
			return nil
		})
		g.Go(func() error {
			nav, err := s.backend.LatestPrice(gctx, kind, item.Symbol)
			if err != nil {
				fail(item, "nav", err)
				return nil
			}
			holdings[i].NAV = nav
			return nil
		})
	}
	// Workers never return errors; failures are recorded per holding.
	_ = g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return &entities.PortfolioDashboard{
		FundData: Aggregate(holdings, s.riskFreeRate),
		Errors:   failed,
	}, nil
}

// Aggregate builds portfolio-level metrics from holdings. Means are taken over
// all holdings with missing values counted as zero. The Sharpe ratio is nil
// when mean volatility is zero.
func Aggregate(holdings []entities.PortfolioHolding, riskFreeRate float64) entities.FundData {
	data := entities.FundData{
		Meta:           countMeta(holdings),
		PortfolioItems: holdings,
	}
	if len(holdings) == 0 {
		return data
	}

	var sumVol, sumRet float64
	total := decimal.Zero
	for _, h := range holdings {
		if rv := h.RiskVolatility; rv != nil {
			sumVol += valueOrZero(rv.AnnualizedVolatility)
			sumRet += valueOrZero(rv.AnnualizedReturn)
		}
		if v := valueOrZero(h.NAV); v != 0 {
			total = total.Add(decimal.NewFromFloat(v))
		}
	}
	n := float64(len(holdings))
	meanVol, meanRet := sumVol/n, sumRet/n

	risk := &entities.RiskVolatility{
		AnnualizedVolatility: ptr(meanVol),
		AnnualizedReturn:     ptr(meanRet),
	}
	if meanVol != 0 {
		risk.SharpeRatio = ptr((meanRet - riskFreeRate) / meanVol)
	}
	data.RiskVolatility = risk

	expected, _ := total.Float64()
	probability := 45.0
	if meanRet > 0 {
		probability = 75
	}
	data.MonteCarlo = &entities.MonteCarlo{
		ExpectedNAV:               ptr(expected),
		ProbabilityPositiveReturn: ptr(probability),
		LowerBound5thPercentile:   ptr(meanRet * 0.95),
		UpperBound95thPercentile:  ptr(meanRet * 1.05),
		SimulationPaths:           []entities.SimulationPath{},
	}
	return data
}

func countMeta(holdings []entities.PortfolioHolding) entities.FundMeta {
	meta := entities.FundMeta{PortfolioSize: len(holdings)}
	for _, h := range holdings {
		switch h.ItemType {
		case entities.ItemTypeStock:
			meta.StocksCount++
		case entities.ItemTypeMutualFund:
			meta.MutualFundsCount++
		case entities.ItemTypeCrypto:
			meta.CryptoCount++
		}
	}
	return meta
}

func valueOrZero(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0
	}
	return *p
}

func ptr(v float64) *float64 { return &v }
