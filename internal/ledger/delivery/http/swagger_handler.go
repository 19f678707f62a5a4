package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for the Stock Ledger
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// Login godoc
// @Summary User login
// @Description Authenticate and receive a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} object{success=bool,data=object{token=string,user=object}}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/auth/login [post]
func (h *LedgerHandler) LoginDoc() {}

// Register godoc
// @Summary Register a new user
// @Description Create an employee or admin account (Admin only)
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string,role=string} true "Account data"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/auth/register [post]
func (h *LedgerHandler) RegisterDoc() {}

// ListItems godoc
// @Summary List the catalog
// @Description Every item ordered by name, or grouped by category
// @Tags Items
// @Security BearerAuth
// @Produce json
// @Param group query string false "Set to category to group items"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/items [get]
func (h *LedgerHandler) ListItemsDoc() {}

// CreateItem godoc
// @Summary Add an item
// @Description Create an item with its initial stock
// @Tags Items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,stock=int,category=string} true "Item data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/items [post]
func (h *LedgerHandler) CreateItemDoc() {}

// LogUsage godoc
// @Summary Log usage
// @Description Consume units of an item on behalf of the caller
// @Tags Items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Item name"
// @Param Idempotency-Key header string false "At-most-once key"
// @Param request body object{quantity=int} true "Units used"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string}
// @Router /api/items/{name}/usage [post]
func (h *LedgerHandler) LogUsageDoc() {}

// Restock godoc
// @Summary Restock an item
// @Description Add units to an item's total stock
// @Tags Items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Item name"
// @Param Idempotency-Key header string false "At-most-once key"
// @Param request body object{quantity=int} true "Units added"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/items/{name}/restock [post]
func (h *LedgerHandler) RestockDoc() {}

// Ledger godoc
// @Summary Full ledger
// @Description Every ledger entry in insertion order (Admin only)
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=array}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/ledger [get]
func (h *LedgerHandler) LedgerDoc() {}

// MostUsed godoc
// @Summary Most used items
// @Description Items ranked by cumulative usage, ties broken by name
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum rows, all when omitted"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/reports/most-used [get]
func (h *LedgerHandler) MostUsedDoc() {}

// Contributions godoc
// @Summary Employee contributions
// @Description Units used per actor
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/reports/employee-contributions [get]
func (h *LedgerHandler) ContributionsDoc() {}

// UsageTrends godoc
// @Summary Usage trends
// @Description Units used per item per calendar date
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param format query string false "sparse (default) or matrix"
// @Param tz query string false "IANA timezone for day boundaries"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/reports/usage-trends [get]
func (h *LedgerHandler) UsageTrendsDoc() {}

// Reconcile godoc
// @Summary Reconcile catalog with ledger
// @Description Replay the ledger and report drifted items (Admin only)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/admin/reconcile [get]
func (h *LedgerHandler) ReconcileDoc() {}

// Export godoc
// @Summary CSV exports
// @Description Download the catalog or the ledger as CSV (Admin only)
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Router /api/export/catalog.csv [get]
// @Router /api/export/ledger.csv [get]
func (h *LedgerHandler) ExportDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Reports whether the storage answers
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *LedgerHandler) HealthCheckDoc() {}
