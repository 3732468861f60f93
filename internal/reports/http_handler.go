package reports

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/rpattn/nwreports/internal/repository"
)

const noDataMessage = "No data available in the database"

// Handler serves the fixed reports as JSON arrays.
type Handler struct {
	repo repository.ReportRepository
}

// NewHTTPHandler wraps the report repository.
func NewHTTPHandler(repo repository.ReportRepository) *Handler {
	return &Handler{repo: repo}
}

// Route pairs a report with the path it is served on.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

// Routes lists every report endpoint, ready to be registered on a mux.
func (h *Handler) Routes() []Route {
	return []Route{
		{"GET /get_orders_report", h.OrdersReport},
		{"GET /get_customer_sales_by_year", h.CustomerSalesByYear},
		{"GET /get_top_performers", h.TopPerformers},
		{"GET /get_sales_choropleth", h.SalesChoropleth},
		{"GET /get_year_built_total", h.YearBuiltTotal},
		{"GET /get_sales_by_bedroom", h.SalesByBedroom},
		{"GET /get_avg_price_per_acreage", h.AvgPricePerAcreage},
		{"GET /get_currencies", h.Currencies},
		{"GET /get_correlation_table", h.CorrelationTable},
		{"GET /get_correlation_stats_above_zero", h.CorrelationStatsAboveZero},
		{"GET /get_correlation_stats_below_zero", h.CorrelationStatsBelowZero},
	}
}

func (h *Handler) OrdersReport(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportOrders, h.repo.OrdersReport)
}

func (h *Handler) CustomerSalesByYear(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportCustomerSalesByYear, h.repo.CustomerSalesByYear)
}

func (h *Handler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportTopPerformers, h.repo.TopPerformers)
}

func (h *Handler) SalesChoropleth(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportSalesChoropleth, h.repo.SalesChoropleth)
}

func (h *Handler) YearBuiltTotal(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportYearBuiltTotal, h.repo.YearBuiltTotal)
}

func (h *Handler) SalesByBedroom(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportSalesByBedroom, h.repo.SalesByBedroom)
}

func (h *Handler) AvgPricePerAcreage(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportAvgPricePerAcreage, h.repo.AvgPricePerAcreage)
}

func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportCurrencies, h.repo.Currencies)
}

func (h *Handler) CorrelationTable(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportCorrelationTable, h.repo.CorrelationTable)
}

func (h *Handler) CorrelationStatsAboveZero(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportCorrelationStatsAbove, h.repo.CorrelationStatsAboveZero)
}

func (h *Handler) CorrelationStatsBelowZero(w http.ResponseWriter, r *http.Request) {
	serve(w, r, repository.ReportCorrelationStatsBelow, h.repo.CorrelationStatsBelowZero)
}

// serve runs fetch and writes 200 with the rows, 404 when there are none, or
// 500 with the report's label when the query fails.
func serve[T any](w http.ResponseWriter, r *http.Request, name string, fetch func(context.Context) ([]T, error)) {
	rows, err := fetch(r.Context())
	if err != nil {
		label := name
		if report, ok := repository.LookupReport(name); ok {
			label = report.Label
		}
		log.Printf("[HTTP] report %s failed: %v", name, err)
		http.Error(w, "Error retrieving "+label+" data", http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		http.Error(w, noDataMessage, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
