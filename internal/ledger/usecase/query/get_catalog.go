package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
)

// GetCatalogQuery represents the query to list every item
type GetCatalogQuery struct {
	GroupByCategory bool
}

// CatalogView is the catalog either flat or bucketed by category
type CatalogView struct {
	Items  []domain.StockItem     `json:"items,omitempty"`
	Groups []report.CategoryGroup `json:"groups,omitempty"`
}

// GetCatalogHandler handles get catalog query
type GetCatalogHandler struct {
	repo domain.LedgerRepository
}

// NewGetCatalogHandler creates a new get catalog handler
func NewGetCatalogHandler(repo domain.LedgerRepository) *GetCatalogHandler {
	return &GetCatalogHandler{repo: repo}
}

// Handle executes the get catalog query
func (h *GetCatalogHandler) Handle(ctx context.Context, query GetCatalogQuery) (*CatalogView, error) {
	items, err := h.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	if query.GroupByCategory {
		return &CatalogView{Groups: report.GroupByCategory(items)}, nil
	}
	return &CatalogView{Items: items}, nil
}
