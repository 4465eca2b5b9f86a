package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
)

// ListPortfolio relays GET /api/portfolio/{userId}.
func (c *Client) ListPortfolio(ctx context.Context, userID string) (*RawResponse, error) {
	return c.Forward(ctx, http.MethodGet, "/api/portfolio/"+pathEscape(userID), nil)
}

// AddPortfolioItem relays POST /api/portfolio/add/{userId}.
func (c *Client) AddPortfolioItem(ctx context.Context, userID string, req entities.AddPortfolioItemRequest) (*RawResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal portfolio item: %w", err)
	}
	return c.Forward(ctx, http.MethodPost, "/api/portfolio/add/"+pathEscape(userID), body)
}

// RemovePortfolioItem relays DELETE /api/portfolio/{userId}/{itemId}.
func (c *Client) RemovePortfolioItem(ctx context.Context, userID, itemID string) (*RawResponse, error) {
	return c.Forward(ctx, http.MethodDelete, "/api/portfolio/"+pathEscape(userID)+"/"+pathEscape(itemID), nil)
}

// PortfolioItems is the typed variant of ListPortfolio used by the dashboard.
func (c *Client) PortfolioItems(ctx context.Context, userID string) ([]entities.PortfolioItem, error) {
	var items []entities.PortfolioItem
	if err := c.getJSON(ctx, "/api/portfolio/"+pathEscape(userID), nil, &items); err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	return items, nil
}
