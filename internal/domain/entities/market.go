package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AssetKind is the instrument family segment used by the analytics backend.
type AssetKind string

const (
	AssetStock  AssetKind = "stock"
	AssetMutual AssetKind = "mutual"
	AssetCrypto AssetKind = "crypto"
)

func ParseAssetKind(s string) (AssetKind, bool) {
	switch AssetKind(s) {
	case AssetStock, AssetMutual, AssetCrypto:
		return AssetKind(s), true
	}
	return "", false
}

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flexstring: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// Float parses the value, reporting false when it is empty or not numeric.
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NAVPoint is one entry of a mutual fund NAV history. The backend sends NAVs
// as strings.
type NAVPoint struct {
	Date string     `json:"date"`
	NAV  FlexString `json:"nav"`
}

// PricePoint is one entry of a crypto price history.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type ReturnPoint struct {
	Date    string  `json:"date"`
	Returns float64 `json:"returns"`
}

// RiskVolatility is the backend's risk summary. Fields are pointers because
// any of them may be absent.
type RiskVolatility struct {
	AnnualizedVolatility *float64      `json:"annualized_volatility"`
	AnnualizedReturn     *float64      `json:"annualized_return"`
	SharpeRatio          *float64      `json:"sharpe_ratio"`
	Returns              []ReturnPoint `json:"returns,omitempty"`
}

type SimulationPoint struct {
	Day   int     `json:"day"`
	Value float64 `json:"value"`
}

type SimulationPath struct {
	Name string            `json:"name"`
	Data []SimulationPoint `json:"data"`
}

// MonteCarlo is the backend's price projection. Stock endpoints use the
// *_price field names, fund and crypto endpoints the *_nav ones.
type MonteCarlo struct {
	ExpectedNAV               *float64         `json:"expected_nav,omitempty"`
	ExpectedPrice             *float64         `json:"expected_price,omitempty"`
	ProbabilityPositiveReturn *float64         `json:"probability_positive_return"`
	LowerBound5thPercentile   *float64         `json:"lower_bound_5th_percentile"`
	UpperBound95thPercentile  *float64         `json:"upper_bound_95th_percentile"`
	LastNAV                   *float64         `json:"last_nav,omitempty"`
	LastPrice                 *float64         `json:"last_price,omitempty"`
	SimulationPaths           []SimulationPath `json:"simulation_paths"`
	HistoricalPredicted       json.RawMessage  `json:"historical_predicted,omitempty"`
}

// Expected returns whichever expected value the backend supplied.
func (m *MonteCarlo) Expected() *float64 {
	if m == nil {
		return nil
	}
	if m.ExpectedNAV != nil {
		return m.ExpectedNAV
	}
	return m.ExpectedPrice
}

// HasPrediction reports whether there are simulation paths to draw.
func (m *MonteCarlo) HasPrediction() bool {
	return m != nil && len(m.SimulationPaths) > 0
}

// HeatmapBucket is one month of a performance heatmap. Mutual fund buckets
// carry a year and NAV; stock and crypto buckets send the month as a string
// and name the value "return" or "dayChange".
type HeatmapBucket struct {
	Year  int        `json:"year,omitempty"`
	Month FlexString `json:"month"`
	Value float64    `json:"value"`
	NAV   *float64   `json:"nav,omitempty"`
}

func (h *HeatmapBucket) UnmarshalJSON(b []byte) error {
	var raw struct {
		Year      int        `json:"year"`
		Month     FlexString `json:"month"`
		Value     *float64   `json:"value"`
		Return    *float64   `json:"return"`
		DayChange *float64   `json:"dayChange"`
		NAV       *float64   `json:"nav"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*h = HeatmapBucket{Year: raw.Year, Month: raw.Month, NAV: raw.NAV}
	for _, v := range []*float64{raw.Value, raw.Return, raw.DayChange} {
		if v != nil {
			h.Value = *v
			break
		}
	}
	return nil
}

// FundMeta carries the descriptive fields used in prompts. Single-instrument
// payloads fill the scheme fields, portfolio payloads the counts.
type FundMeta struct {
	SchemeName     string     `json:"scheme_name,omitempty"`
	SchemeNameAlt  string     `json:"schemeName,omitempty"`
	FundHouse      string     `json:"fund_house,omitempty"`
	AMC            string     `json:"amc,omitempty"`
	SchemeCategory string     `json:"scheme_category,omitempty"`
	SchemeType     string     `json:"scheme_type,omitempty"`
	SchemeCode     FlexString `json:"scheme_code,omitempty"`

	PortfolioSize    int `json:"portfolio_size,omitempty"`
	StocksCount      int `json:"stocks_count,omitempty"`
	MutualFundsCount int `json:"mutual_funds_count,omitempty"`
	CryptoCount      int `json:"crypto_count,omitempty"`
}

// DisplayName prefers scheme_name, then schemeName.
func (m FundMeta) DisplayName() string {
	if m.SchemeName != "" {
		return m.SchemeName
	}
	return m.SchemeNameAlt
}

// House prefers fund_house, then amc.
func (m FundMeta) House() string {
	if m.FundHouse != "" {
		return m.FundHouse
	}
	return m.AMC
}

// FundData is the payload the summary and report endpoints build prompts from.
type FundData struct {
	Meta           FundMeta           `json:"meta"`
	NAVHistory     []NAVPoint         `json:"navHistory,omitempty"`
	RiskVolatility *RiskVolatility    `json:"riskVolatility,omitempty"`
	MonteCarlo     *MonteCarlo        `json:"monteCarlo,omitempty"`
	PortfolioItems []PortfolioHolding `json:"portfolioItems,omitempty"`
}

// IsPortfolio selects the portfolio templates.
func (f FundData) IsPortfolio() bool {
	return len(f.PortfolioItems) > 0
}

// Suggestion is one search result.
type Suggestion struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Image    string `json:"image,omitempty"`
}

// SearchResult wraps suggestions with the caller's sequence number so
// clients can drop responses to superseded queries.
type SearchResult struct {
	Query       string       `json:"query"`
	Seq         uint64       `json:"seq,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

const NoPredictionPlaceholder = "No prediction data"

// PredictionView tells the client whether a Monte Carlo chart can be drawn.
type PredictionView struct {
	Available   bool   `json:"available"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Snapshot is the fan-out result for one instrument. Parts that failed hold
// empty defaults and are named in Errors.
type Snapshot struct {
	Kind       AssetKind       `json:"kind"`
	ID         string          `json:"id"`
	Profile    json.RawMessage `json:"profile"`
	History    json.RawMessage `json:"history"`
	Heatmap    []HeatmapBucket `json:"heatmap"`
	Risk       *RiskVolatility `json:"risk_volatility"`
	MonteCarlo *MonteCarlo     `json:"monte_carlo"`
	Prediction PredictionView  `json:"prediction"`
	Errors     []string        `json:"errors,omitempty"`
}

// Comparison is the two-fund comparison view.
type Comparison struct {
	First    FundMeta `json:"first"`
	Second   FundMeta `json:"second"`
	Analysis string   `json:"analysis"`
}
