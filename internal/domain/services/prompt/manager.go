package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

// Placeholder is rendered for any missing or non-finite number.
const Placeholder = "N/A"

const unknown = "Unknown"

// UseCase selects the generation settings and template family.
type UseCase string

const (
	UseCaseChat    UseCase = "chat"
	UseCaseSummary UseCase = "summary"
	UseCaseReport  UseCase = "report"
)

// ErrEmptyInput is returned when there is nothing to build a prompt from.
var ErrEmptyInput = errors.New("empty prompt input")

// Prompt is a fully built model request.
type Prompt struct {
	Name        string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// PromptTemplate represents a template for AI prompts
type PromptTemplate struct {
	Name         string
	System       string
	UserTemplate string
	Temperature  float64
	MaxTokens    int
	template     *template.Template
}

// TemplateManager manages prompt templates
type TemplateManager struct {
	templates map[string]*PromptTemplate
	upper     cases.Caser
}

// NewTemplateManager creates a new template manager
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*PromptTemplate),
		upper:     cases.Upper(language.Und),
	}
	for _, t := range []*PromptTemplate{
		{Name: "summary_single", UserTemplate: summarySingleTemplate, Temperature: 0.8, MaxTokens: 1024},
		{Name: "summary_portfolio", UserTemplate: summaryPortfolioTemplate, Temperature: 0.8, MaxTokens: 1024},
		{Name: "report_single", UserTemplate: reportSingleTemplate, Temperature: 0.7, MaxTokens: 2048},
		{Name: "report_portfolio", UserTemplate: reportPortfolioTemplate, Temperature: 0.7, MaxTokens: 2048},
	} {
		// The built-in templates are constants; a parse failure is a programming error.
		if err := tm.compileTemplate(t); err != nil {
			panic(err)
		}
		tm.templates[t.Name] = t
	}
	return tm
}

func (tm *TemplateManager) compileTemplate(tmpl *PromptTemplate) error {
	funcMap := template.FuncMap{
		"pct":          formatPct,
		"fixed":        formatFixed,
		"percent":      formatPercent,
		"rupee":        formatRupee,
		"grade":        grade,
		"riskCategory": riskCategory,
		"upper": func(s string) string {
			return tm.upper.String(s)
		},
	}
	compiled, err := template.New(tmpl.Name).Funcs(funcMap).Option("missingkey=zero").Parse(tmpl.UserTemplate)
	if err != nil {
		return fmt.Errorf("failed to compile template %s: %w", tmpl.Name, err)
	}
	tmpl.template = compiled
	return nil
}

// Chat wraps a free-text question with the advisor system prompt.
func (tm *TemplateManager) Chat(question string) (*Prompt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyInput
	}
	return &Prompt{
		Name:        "chat",
		System:      chatSystem,
		User:        question,
		Temperature: 1,
		MaxTokens:   1024,
	}, nil
}

// Fund builds the summary or report prompt for a single instrument or a
// portfolio, chosen by whether data carries portfolio items.
func (tm *TemplateManager) Fund(useCase UseCase, data *entities.FundData) (*Prompt, error) {
	if data == nil {
		return nil, ErrEmptyInput
	}
	name := string(useCase) + "_single"
	if data.IsPortfolio() {
		name = string(useCase) + "_portfolio"
	}
	tmpl, ok := tm.templates[name]
	if !ok {
		return nil, fmt.Errorf("template not found for use case: %s", useCase)
	}

	var buf bytes.Buffer
	if err := tmpl.template.Execute(&buf, newFundView(data)); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return &Prompt{
		Name:        name,
		System:      tmpl.System,
		User:        buf.String(),
		Temperature: tmpl.Temperature,
		MaxTokens:   tmpl.MaxTokens,
	}, nil
}

// GetAvailableTemplates returns a list of available template names
func (tm *TemplateManager) GetAvailableTemplates() []string {
	names := make([]string, 0, len(tm.templates))
	for name := range tm.templates {
		names = append(names, name)
	}
	return names
}

// fundView is the template context. Pointers that templates dereference are
// never nil.
type fundView struct {
	Meta     entities.FundMeta
	Risk     *entities.RiskVolatility
	Monte    *entities.MonteCarlo
	Expected *float64

	Name, House, Code, Category, Type string
	CurrentNAV                        string
	DataPoints                        int
	TotalReturn                       string

	Stocks, MutualFunds, Crypto int
	Diversification             string
	Holdings                    []holdingView
}

type holdingView struct {
	Index      int
	Name       string
	ItemType   string
	Symbol     string
	NAV        string
	Return     *float64
	Volatility *float64
	Sharpe     *float64
	Added      string
}

func newFundView(data *entities.FundData) fundView {
	v := fundView{
		Meta:       data.Meta,
		Risk:       data.RiskVolatility,
		Monte:      data.MonteCarlo,
		Name:       orUnknown(data.Meta.DisplayName()),
		House:      orUnknown(data.Meta.House()),
		Code:       orUnknown(string(data.Meta.SchemeCode)),
		Category:   orUnknown(data.Meta.SchemeCategory),
		Type:       orUnknown(data.Meta.SchemeType),
		DataPoints: len(data.NAVHistory),
	}
	if v.Risk == nil {
		v.Risk = &entities.RiskVolatility{}
	}
	if v.Monte == nil {
		v.Monte = &entities.MonteCarlo{}
	}
	v.Expected = v.Monte.Expected()

	v.CurrentNAV, v.TotalReturn = navStats(data.NAVHistory)

	v.Stocks = data.Meta.StocksCount
	v.MutualFunds = data.Meta.MutualFundsCount
	for i, item := range data.PortfolioItems {
		if item.ItemType == entities.ItemTypeCrypto {
			v.Crypto++
		}
		h := holdingView{
			Index:    i + 1,
			Name:     item.Name,
			ItemType: string(item.ItemType),
			Symbol:   item.Symbol,
			NAV:      Placeholder,
			Added:    formatDate(item.AddedAt),
		}
		if h.Symbol == "" {
			h.Symbol = Placeholder
		}
		if finite(item.NAV) {
			h.NAV = "₹" + decimal.NewFromFloat(*item.NAV).String()
		}
		if rv := item.RiskVolatility; rv != nil {
			h.Return, h.Volatility, h.Sharpe = rv.AnnualizedReturn, rv.AnnualizedVolatility, rv.SharpeRatio
		}
		v.Holdings = append(v.Holdings, h)
	}
	if v.Stocks+v.MutualFunds+v.Crypto >= 5 {
		v.Diversification = "Well Diversified"
	} else {
		v.Diversification = "Needs More Diversification"
	}
	return v
}

// navStats returns the latest NAV and the total return over the series.
func navStats(history []entities.NAVPoint) (current, totalReturn string) {
	current, totalReturn = Placeholder, Placeholder
	if len(history) == 0 {
		return
	}
	last, err := decimal.NewFromString(string(history[len(history)-1].NAV))
	if err != nil {
		return
	}
	current = "₹" + last.StringFixed(2)

	first, err := decimal.NewFromString(string(history[0].NAV))
	if err != nil || !first.IsPositive() {
		return
	}
	totalReturn = last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	return
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

func finite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// formatPct renders a fraction as a percentage, e.g. 0.1234 as "12.34%".
func formatPct(p *float64) string {
	if !finite(p) {
		return Placeholder
	}
	return decimal.NewFromFloat(*p).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func formatFixed(p *float64, places int) string {
	if !finite(p) {
		return Placeholder
	}
	return decimal.NewFromFloat(*p).StringFixed(int32(places))
}

// formatPercent renders a value that is already a percentage.
func formatPercent(p *float64) string {
	if !finite(p) {
		return Placeholder
	}
	return decimal.NewFromFloat(*p).StringFixed(2) + "%"
}

func formatRupee(p *float64) string {
	if !finite(p) {
		return Placeholder
	}
	return "₹" + decimal.NewFromFloat(*p).StringFixed(2)
}

// grade labels v against two descending thresholds. Missing values get the
// lowest label.
func grade(p *float64, high, mid float64, top, middle, bottom string) string {
	switch {
	case !finite(p):
		return bottom
	case *p > high:
		return top
	case *p > mid:
		return middle
	default:
		return bottom
	}
}

func riskCategory(vol *float64) string {
	return grade(vol, 0.3, 0.15, "High", "Medium", "Low")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatDate renders a backend timestamp as M/D/YYYY.
func formatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return Placeholder
}
