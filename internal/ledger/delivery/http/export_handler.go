package http

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
	"github.com/tair/stock-ledger/pkg/logger"
)

// ExportCatalog handles GET /api/export/catalog.csv
func (h *LedgerHandler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.Catalog.Handle(r.Context(), query.GetCatalogQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows := [][]string{{"name", "category", "total_stock", "used", "remaining"}}
	for _, item := range view.Items {
		rows = append(rows, []string{
			item.Name,
			item.Category,
			strconv.Itoa(item.TotalStock),
			strconv.Itoa(item.Used),
			strconv.Itoa(item.Remaining()),
		})
	}
	writeCSV(w, r, "catalog.csv", rows)
}

// ExportLedger handles GET /api/export/ledger.csv
func (h *LedgerHandler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queries.Ledger.Handle(r.Context(), query.GetLedgerQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows := [][]string{{"id", "timestamp", "actor", "item_name", "quantity", "action"}}
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			entry.Timestamp.Format(time.RFC3339),
			entry.Actor,
			entry.ItemName,
			strconv.Itoa(entry.Quantity),
			string(entry.Action),
		})
	}
	writeCSV(w, r, "ledger.csv", rows)
}

func writeCSV(w http.ResponseWriter, r *http.Request, filename string, rows [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		logger.Error(r.Context()).Err(err).Str("file", filename).Msg("Failed to write export")
	}
}
