package main

// @title Stock Ledger API
// @version 1.0
// @description Inventory ledger and usage reporting with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Auth
// @tag.description Login and account registration

// @tag.name Items
// @tag.description Catalog and stock mutations

// @tag.name Reports
// @tag.description Usage reports and ledger views

// @tag.name Health
// @tag.description Health check endpoints
