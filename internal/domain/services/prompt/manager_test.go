package prompt

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

func f(v float64) *float64 { return &v }

func singleFund() *entities.FundData {
	return &entities.FundData{
		Meta: entities.FundMeta{
			SchemeName:     "Axis Bluechip Fund",
			FundHouse:      "Axis Mutual Fund",
			SchemeCategory: "Equity Scheme - Large Cap Fund",
			SchemeType:     "Open Ended Schemes",
			SchemeCode:     "120465",
		},
		NAVHistory: []entities.NAVPoint{
			{Date: "01-01-2023", NAV: "40.00"},
			{Date: "01-01-2024", NAV: "50.123"},
		},
		RiskVolatility: &entities.RiskVolatility{
			AnnualizedReturn:     f(0.1234),
			AnnualizedVolatility: f(0.18),
			SharpeRatio:          f(0.41234),
		},
		MonteCarlo: &entities.MonteCarlo{
			ExpectedNAV:               f(55.5),
			ProbabilityPositiveReturn: f(72.456),
			LowerBound5thPercentile:   f(44),
			UpperBound95thPercentile:  f(66.789),
		},
	}
}

func TestTemplateManager_Chat(t *testing.T) {
	tm := NewTemplateManager()

	p, err := tm.Chat("  Should I start a SIP?  ")
	require.NoError(t, err)
	assert.Equal(t, "Should I start a SIP?", p.User)
	assert.True(t, strings.HasPrefix(p.System, "You are an expert financial advisor"))
	assert.Equal(t, 1.0, p.Temperature)
	assert.Equal(t, 1024, p.MaxTokens)

	_, err = tm.Chat("   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTemplateManager_SingleSummary(t *testing.T) {
	p, err := NewTemplateManager().Fund(UseCaseSummary, singleFund())
	require.NoError(t, err)

	assert.Equal(t, "summary_single", p.Name)
	assert.Equal(t, 0.8, p.Temperature)
	assert.Equal(t, 1024, p.MaxTokens)
	assert.Contains(t, p.User, `called "AI Dost"`)
	assert.Contains(t, p.User, "- Fund Name: Axis Bluechip Fund")
	assert.Contains(t, p.User, "- Annualized Return: 12.34%")
	assert.Contains(t, p.User, "- Sharpe Ratio: 0.41")
	assert.Contains(t, p.User, "- Expected NAV: ₹55.50")
	assert.Contains(t, p.User, "- Probability of Positive Return: 72.46%")
	assert.Contains(t, p.User, "- Range: ₹44.00 - ₹66.79")
	assert.Contains(t, p.User, "Current NAV: ₹50.12")
	assert.Contains(t, p.User, "Total Historical Data Points: 2")
}

func TestTemplateManager_SingleReport(t *testing.T) {
	p, err := NewTemplateManager().Fund(UseCaseReport, singleFund())
	require.NoError(t, err)

	assert.Equal(t, "report_single", p.Name)
	assert.Equal(t, 0.7, p.Temperature)
	assert.Equal(t, 2048, p.MaxTokens)
	assert.Contains(t, p.User, "MUTUAL FUND COMPREHENSIVE ANALYSIS REPORT")
	assert.Contains(t, p.User, "- Scheme Code: 120465")
	assert.Contains(t, p.User, "- Total Historical Return: 25.31%")
	assert.Contains(t, p.User, "- Sharpe Ratio: 0.4123")
	assert.Contains(t, p.User, "- Risk-Adjusted Performance: Poor")
	assert.Contains(t, p.User, "- Simulation Confidence: High")
	assert.Contains(t, p.User, "FINAL RECOMMENDATION")
}

func TestTemplateManager_PortfolioReport(t *testing.T) {
	data := &entities.FundData{
		Meta: entities.FundMeta{PortfolioSize: 2, StocksCount: 1, MutualFundsCount: 0},
		RiskVolatility: &entities.RiskVolatility{
			AnnualizedReturn:     f(0.15),
			AnnualizedVolatility: f(0.2),
			SharpeRatio:          f(0.5),
		},
		MonteCarlo: &entities.MonteCarlo{ExpectedNAV: f(1234.5), ProbabilityPositiveReturn: f(75)},
		PortfolioItems: []entities.PortfolioHolding{
			{
				PortfolioItem: entities.PortfolioItem{Symbol: "TCS.NS", Name: "TCS", ItemType: entities.ItemTypeStock, AddedAt: "2024-05-06T10:00:00Z"},
				NAV:           f(3890.5),
				RiskVolatility: &entities.RiskVolatility{
					AnnualizedReturn: f(0.2), AnnualizedVolatility: f(0.35), SharpeRatio: f(0.43),
				},
			},
			{
				PortfolioItem: entities.PortfolioItem{Symbol: "bitcoin", Name: "Bitcoin", ItemType: entities.ItemTypeCrypto, AddedAt: "bad"},
			},
		},
	}
	p, err := NewTemplateManager().Fund(UseCaseReport, data)
	require.NoError(t, err)

	assert.Equal(t, "report_portfolio", p.Name)
	assert.Contains(t, p.User, "- Cryptocurrencies: 1")
	assert.Contains(t, p.User, "- Diversification Score: Needs More Diversification")
	assert.Contains(t, p.User, "- Risk-Adjusted Performance: Moderate")
	assert.Contains(t, p.User, "- Expected Portfolio Value: ₹1234.50")
	assert.Contains(t, p.User, "- Confidence Level: High")
	assert.Contains(t, p.User, "1. TCS (STOCK)")
	assert.Contains(t, p.User, "   - Current Price/NAV: ₹3890.5")
	assert.Contains(t, p.User, "   - Risk Category: High")
	assert.Contains(t, p.User, "   - Date Added: 5/6/2024")
	assert.Contains(t, p.User, "2. Bitcoin (CRYPTO)")
	assert.Contains(t, p.User, "   - Risk Category: Low")
}

func TestTemplateManager_MissingNumbersRenderPlaceholder(t *testing.T) {
	tm := NewTemplateManager()
	inputs := map[string]*entities.FundData{
		"empty single": {},
		"nan metrics": {
			RiskVolatility: &entities.RiskVolatility{
				AnnualizedReturn: f(math.NaN()), AnnualizedVolatility: f(math.Inf(1)),
			},
			MonteCarlo: &entities.MonteCarlo{ExpectedNAV: f(math.NaN())},
			NAVHistory: []entities.NAVPoint{{NAV: "NaN"}},
		},
		"bare portfolio": {
			PortfolioItems: []entities.PortfolioHolding{{PortfolioItem: entities.PortfolioItem{Name: "X"}, NAV: f(math.NaN())}},
		},
	}
	for name, data := range inputs {
		for _, uc := range []UseCase{UseCaseSummary, UseCaseReport} {
			t.Run(name+"/"+string(uc), func(t *testing.T) {
				p, err := tm.Fund(uc, data)
				require.NoError(t, err)
				assert.NotContains(t, p.User, "NaN")
				assert.NotContains(t, p.User, "Inf")
				assert.NotContains(t, p.User, "undefined")
				assert.NotContains(t, p.User, "<nil>")
				assert.NotContains(t, p.User, "<no value>")
				assert.Contains(t, p.User, Placeholder)
			})
		}
	}
}

func TestTemplateManager_UnknownUseCase(t *testing.T) {
	_, err := NewTemplateManager().Fund(UseCase("poem"), singleFund())
	assert.Error(t, err)
	_, err = NewTemplateManager().Fund(UseCaseSummary, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "N/A", formatPct(nil))
	assert.Equal(t, "-5.00%", formatPct(f(-0.05)))
	assert.Equal(t, "₹10.00", formatRupee(f(10)))
	assert.Equal(t, "Medium", riskCategory(f(0.2)))
	assert.Equal(t, "Low", riskCategory(nil))
	assert.Equal(t, "12/31/2024", formatDate("2024-12-31"))
}
