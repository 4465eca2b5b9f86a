package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

var (
	profilePaths = map[entities.AssetKind]string{
		entities.AssetStock:  "/api/stock/profile/",
		entities.AssetMutual: "/api/mutual/scheme-details/",
		entities.AssetCrypto: "/api/crypto/coin-details/",
	}
	historyPaths = map[entities.AssetKind]string{
		entities.AssetStock:  "/api/stock/history/",
		entities.AssetMutual: "/api/mutual/historical-nav/",
		entities.AssetCrypto: "/api/crypto/historical-price/",
	}
	heatmapPaths = map[entities.AssetKind]string{
		entities.AssetStock:  "/api/stock/performance-heatmap/",
		entities.AssetMutual: "/api/mutual/performance-heatmap/",
		entities.AssetCrypto: "/api/crypto/performance-heatmap/",
	}
	// Profile field holding the latest price or NAV per kind.
	priceFields = map[entities.AssetKind][]string{
		entities.AssetStock:  {"currentPrice", "regularMarketPrice", "price"},
		entities.AssetMutual: {"nav"},
		entities.AssetCrypto: {"current_price"},
	}
)

func kindPath(paths map[entities.AssetKind]string, kind entities.AssetKind, id string) (string, error) {
	p, ok := paths[kind]
	if !ok {
		return "", fmt.Errorf("unsupported asset kind %q", kind)
	}
	return p + pathEscape(id), nil
}

// Profile returns the instrument's descriptive record as sent by the backend.
func (c *Client) Profile(ctx context.Context, kind entities.AssetKind, id string) (json.RawMessage, error) {
	p, err := kindPath(profilePaths, kind, id)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.getJSON(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("get %s profile %s: %w", kind, id, err)
	}
	return out, nil
}

// History returns the price or NAV series as sent by the backend.
func (c *Client) History(ctx context.Context, kind entities.AssetKind, id string) (json.RawMessage, error) {
	p, err := kindPath(historyPaths, kind, id)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.getJSON(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("get %s history %s: %w", kind, id, err)
	}
	return out, nil
}

// NAVHistory returns a mutual fund's typed NAV series.
func (c *Client) NAVHistory(ctx context.Context, schemeCode string) ([]entities.NAVPoint, error) {
	var out []entities.NAVPoint
	if err := c.getJSON(ctx, historyPaths[entities.AssetMutual]+pathEscape(schemeCode), nil, &out); err != nil {
		return nil, fmt.Errorf("get nav history %s: %w", schemeCode, err)
	}
	return out, nil
}

// Heatmap returns monthly return buckets. Kinds without a heatmap yield an
// empty slice.
func (c *Client) Heatmap(ctx context.Context, kind entities.AssetKind, id string) ([]entities.HeatmapBucket, error) {
	p, ok := heatmapPaths[kind]
	if !ok {
		return []entities.HeatmapBucket{}, nil
	}
	var out []entities.HeatmapBucket
	if err := c.getJSON(ctx, p+pathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get %s heatmap %s: %w", kind, id, err)
	}
	return out, nil
}

func (c *Client) RiskVolatility(ctx context.Context, kind entities.AssetKind, id string) (*entities.RiskVolatility, error) {
	var out entities.RiskVolatility
	if err := c.getJSON(ctx, fmt.Sprintf("/api/%s/risk-volatility/%s", kind, pathEscape(id)), nil, &out); err != nil {
		return nil, fmt.Errorf("get %s risk %s: %w", kind, id, err)
	}
	return &out, nil
}

func (c *Client) MonteCarlo(ctx context.Context, kind entities.AssetKind, id string) (*entities.MonteCarlo, error) {
	var out entities.MonteCarlo
	if err := c.getJSON(ctx, fmt.Sprintf("/api/%s/monte-carlo-prediction/%s", kind, pathEscape(id)), nil, &out); err != nil {
		return nil, fmt.Errorf("get %s monte carlo %s: %w", kind, id, err)
	}
	return &out, nil
}

// SchemeDetails returns the typed metadata of a mutual fund.
func (c *Client) SchemeDetails(ctx context.Context, schemeCode string) (*entities.FundMeta, error) {
	var out entities.FundMeta
	if err := c.getJSON(ctx, profilePaths[entities.AssetMutual]+pathEscape(schemeCode), nil, &out); err != nil {
		return nil, fmt.Errorf("get scheme details %s: %w", schemeCode, err)
	}
	if out.SchemeCode == "" {
		out.SchemeCode = entities.FlexString(schemeCode)
	}
	return &out, nil
}

// LatestPrice reads the current price or NAV from the instrument's profile.
// A nil result means the profile carried no usable number.
func (c *Client) LatestPrice(ctx context.Context, kind entities.AssetKind, id string) (*float64, error) {
	raw, err := c.Profile(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode %s profile %s: %w", kind, id, err)
	}
	for _, name := range priceFields[kind] {
		var f entities.FlexString
		if json.Unmarshal(fields[name], &f) != nil {
			continue
		}
		if v, ok := f.Float(); ok {
			return &v, nil
		}
	}
	return nil, nil
}

// Search returns instruments matching q, normalised to suggestions. The
// caller applies the display limit.
func (c *Client) Search(ctx context.Context, kind entities.AssetKind, q string) ([]entities.Suggestion, error) {
	switch kind {
	case entities.AssetMutual:
		var schemes map[string]string
		if err := c.getJSON(ctx, "/api/mutual/schemes", url.Values{"search": {q}}, &schemes); err != nil {
			return nil, fmt.Errorf("search schemes: %w", err)
		}
		out := make([]entities.Suggestion, 0, len(schemes))
		for code, name := range schemes {
			out = append(out, entities.Suggestion{ID: code, Symbol: code, Name: name})
		}
		sort.Slice(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
		return out, nil

	case entities.AssetStock:
		var stocks []struct {
			Symbol   string `json:"symbol"`
			Name     string `json:"name"`
			Exchange string `json:"exchange"`
		}
		if err := c.getJSON(ctx, "/api/stock/search-stocks", url.Values{"q": {q}}, &stocks); err != nil {
			return nil, fmt.Errorf("search stocks: %w", err)
		}
		out := make([]entities.Suggestion, 0, len(stocks))
		for _, s := range stocks {
			out = append(out, entities.Suggestion{ID: s.Symbol, Symbol: s.Symbol, Name: s.Name, Exchange: s.Exchange})
		}
		return out, nil

	case entities.AssetCrypto:
		coins, err := c.coins(ctx, "/api/crypto/coins", url.Values{"search": {q}})
		if err != nil {
			return nil, fmt.Errorf("search coins: %w", err)
		}
		return coins, nil
	}
	return nil, fmt.Errorf("unsupported asset kind %q", kind)
}

// FamousCoins returns the backend's curated list of large-cap coins.
func (c *Client) FamousCoins(ctx context.Context) ([]entities.Suggestion, error) {
	coins, err := c.coins(ctx, "/api/crypto/famous", nil)
	if err != nil {
		return nil, fmt.Errorf("famous coins: %w", err)
	}
	return coins, nil
}

func (c *Client) coins(ctx context.Context, endpoint string, q url.Values) ([]entities.Suggestion, error) {
	var coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Image  string `json:"image"`
	}
	if err := c.getJSON(ctx, endpoint, q, &coins); err != nil {
		return nil, err
	}
	out := make([]entities.Suggestion, 0, len(coins))
	for _, coin := range coins {
		out = append(out, entities.Suggestion{ID: coin.ID, Symbol: coin.Symbol, Name: coin.Name, Image: coin.Image})
	}
	return out, nil
}
