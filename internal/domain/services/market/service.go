package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/cache"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
	"github.com/wealthpulse/wealthpulse_service/pkg/sanitize"
)

const (
	DefaultSuggestionLimit = 8
	maxQueryRunes          = 100
)

// Backend is the market-data surface of the analytics client.
type Backend interface {
	Profile(ctx context.Context, kind entities.AssetKind, id string) (json.RawMessage, error)
	History(ctx context.Context, kind entities.AssetKind, id string) (json.RawMessage, error)
	Heatmap(ctx context.Context, kind entities.AssetKind, id string) ([]entities.HeatmapBucket, error)
	RiskVolatility(ctx context.Context, kind entities.AssetKind, id string) (*entities.RiskVolatility, error)
	MonteCarlo(ctx context.Context, kind entities.AssetKind, id string) (*entities.MonteCarlo, error)
	SchemeDetails(ctx context.Context, schemeCode string) (*entities.FundMeta, error)
	Search(ctx context.Context, kind entities.AssetKind, q string) ([]entities.Suggestion, error)
	FamousCoins(ctx context.Context) ([]entities.Suggestion, error)
}

type Config struct {
	SuggestionLimit int
	CacheTTL        time.Duration
}

type Service struct {
	backend Backend
	cache   cache.Cache
	limit   int
	ttl     time.Duration
	logger  *logger.Logger
}

func NewService(backend Backend, c cache.Cache, cfg Config, log *logger.Logger) *Service {
	if c == nil {
		c = cache.NoopCache{}
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = DefaultSuggestionLimit
	}
	return &Service{
		backend: backend,
		cache:   c,
		limit:   cfg.SuggestionLimit,
		ttl:     cfg.CacheTTL,
		logger:  log,
	}
}

// Snapshot fetches every dashboard part concurrently. A failed part keeps an
// empty default and is named in Errors; Snapshot itself only fails when ctx
// is done.
func (s *Service) Snapshot(ctx context.Context, kind entities.AssetKind, id string) (*entities.Snapshot, error) {
	snap := &entities.Snapshot{
		Kind:    kind,
		ID:      id,
		Profile: json.RawMessage("{}"),
		History: json.RawMessage("[]"),
		Heatmap: []entities.HeatmapBucket{},
		Risk:    &entities.RiskVolatility{},
		MonteCarlo: &entities.MonteCarlo{
			SimulationPaths: []entities.SimulationPath{},
		},
	}

	var mu sync.Mutex
	part := func(name string, fetch func(context.Context) error) func() error {
		return func() error {
			if err := fetch(ctx); err != nil {
				metrics.SnapshotPartsFailedTotal.WithLabelValues(string(kind), name).Inc()
				s.logger.CtxWarn(ctx, "Snapshot part failed",
					"kind", kind,
					"id", id,
					"part", name,
					"error", err)
				mu.Lock()
				snap.Errors = append(snap.Errors, name)
				mu.Unlock()
			}
			return nil
		}
	}

	var g errgroup.Group
	g.Go(part("profile", func(ctx context.Context) error {
		v, err := s.backend.Profile(ctx, kind, id)
		if err == nil && len(v) > 0 {
			snap.Profile = v
		}
		return err
	}))
	g.Go(part("history", func(ctx context.Context) error {
		v, err := s.backend.History(ctx, kind, id)
		if err == nil && len(v) > 0 {
			snap.History = v
		}
		return err
	}))
	g.Go(part("heatmap", func(ctx context.Context) error {
		v, err := s.backend.Heatmap(ctx, kind, id)
		if err == nil && v != nil {
			snap.Heatmap = v
		}
		return err
	}))
	g.Go(part("risk_volatility", func(ctx context.Context) error {
		v, err := s.backend.RiskVolatility(ctx, kind, id)
		if err == nil && v != nil {
			snap.Risk = v
		}
		return err
	}))
	g.Go(part("monte_carlo", func(ctx context.Context) error {
		v, err := s.backend.MonteCarlo(ctx, kind, id)
		if err == nil && v != nil {
			snap.MonteCarlo = v
		}
		return err
	}))
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap.Prediction = Prediction(snap.MonteCarlo)
	return snap, nil
}

// Prediction reports whether a projection chart can be drawn.
func Prediction(mc *entities.MonteCarlo) entities.PredictionView {
	if mc.HasPrediction() {
		return entities.PredictionView{Available: true}
	}
	return entities.PredictionView{Placeholder: entities.NoPredictionPlaceholder}
}

// Search returns at most the configured number of suggestions for q. Results
// are cached per kind and normalised query. seq is echoed unchanged.
func (s *Service) Search(ctx context.Context, kind entities.AssetKind, q string, seq uint64) (*entities.SearchResult, error) {
	q = sanitize.Query(q, maxQueryRunes)
	result := &entities.SearchResult{Query: q, Seq: seq, Suggestions: []entities.Suggestion{}}
	if q == "" {
		return result, nil
	}

	key := cache.Key("search", string(kind), q)
	var cached []entities.Suggestion
	if s.cache.GetJSON(ctx, key, &cached) {
		result.Suggestions = cached
		return result, nil
	}

	found, err := s.backend.Search(ctx, kind, q)
	if err != nil {
		return nil, err
	}
	if len(found) > s.limit {
		found = found[:s.limit]
	}
	if found != nil {
		result.Suggestions = found
	}
	s.cache.SetJSON(ctx, key, result.Suggestions, s.ttl)
	return result, nil
}

func (s *Service) FamousCoins(ctx context.Context) ([]entities.Suggestion, error) {
	key := cache.Key("famous", string(entities.AssetCrypto))
	var cached []entities.Suggestion
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	coins, err := s.backend.FamousCoins(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, coins, s.ttl)
	return coins, nil
}

// Compare loads two mutual fund schemes and describes how they relate.
func (s *Service) Compare(ctx context.Context, first, second string) (*entities.Comparison, error) {
	codes := [2]string{first, second}
	var metas [2]*entities.FundMeta

	g, gctx := errgroup.WithContext(ctx)
	for i := range codes {
		i := i
		g.Go(func() error {
			meta, err := s.backend.SchemeDetails(gctx, codes[i])
			if err != nil {
				return fmt.Errorf("scheme %s: %w", codes[i], err)
			}
			metas[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a, b := *metas[0], *metas[1]
	if a.DisplayName() == "" {
		a.SchemeName = first
	}
	if b.DisplayName() == "" {
		b.SchemeName = second
	}
	return &entities.Comparison{First: a, Second: b, Analysis: Analysis(a, b)}, nil
}

// Analysis renders the comparison paragraph for two funds.
func Analysis(a, b entities.FundMeta) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the comparison between %s and %s, ", a.DisplayName(), b.DisplayName())
	if a.House() == b.House() {
		fmt.Fprintf(&sb, "both funds are managed by %s. ", a.House())
	} else {
		fmt.Fprintf(&sb, "both funds are managed by %s and %s respectively. ", a.House(), b.House())
	}
	if a.SchemeType == b.SchemeType {
		fmt.Fprintf(&sb, "Both funds are %s schemes. ", a.SchemeType)
	} else {
		fmt.Fprintf(&sb, "%s is a %s scheme while %s is a %s scheme. ",
			a.DisplayName(), a.SchemeType, b.DisplayName(), b.SchemeType)
	}
	sb.WriteString("Consider your investment goals, risk tolerance, and conduct further research before making investment decisions. ")
	sb.WriteString("This analysis is for informational purposes only and should not be considered as financial advice.")
	return sb.String()
}
