package entities

// ItemType classifies a portfolio instrument.
type ItemType string

const (
	ItemTypeStock      ItemType = "stock"
	ItemTypeMutualFund ItemType = "mutual_fund"
	ItemTypeCrypto     ItemType = "crypto"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeStock, ItemTypeMutualFund, ItemTypeCrypto:
		return true
	}
	return false
}

// AssetKind maps the item type onto the analytics backend's route segment.
func (t ItemType) AssetKind() AssetKind {
	switch t {
	case ItemTypeMutualFund:
		return AssetMutual
	case ItemTypeCrypto:
		return AssetCrypto
	default:
		return AssetStock
	}
}

// PortfolioItem mirrors the analytics backend's portfolio record.
type PortfolioItem struct {
	ID       FlexString `json:"id"`
	Symbol   string     `json:"symbol"`
	Name     string     `json:"name"`
	ItemType ItemType   `json:"item_type"`
	AddedAt  string     `json:"added_at"`
}

// AddPortfolioItemRequest is the body forwarded to the backend on add.
type AddPortfolioItemRequest struct {
	Symbol   string   `json:"symbol" validate:"required,max=64"`
	Name     string   `json:"name" validate:"required,max=256"`
	ItemType ItemType `json:"item_type" validate:"omitempty,oneof=stock mutual_fund crypto"`
}

// PortfolioHolding is a portfolio item enriched with its latest metrics.
type PortfolioHolding struct {
	PortfolioItem
	NAV            *float64        `json:"nav"`
	RiskVolatility *RiskVolatility `json:"risk_volatility,omitempty"`
}

// PortfolioDashboard is the aggregated portfolio view. Its JSON shape is
// accepted as fundData by the summary and report endpoints.
type PortfolioDashboard struct {
	FundData
	Errors []string `json:"errors,omitempty"`
}
