package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"tintura-sst/internal/models"
	"tintura-sst/internal/quantity"
	"tintura-sst/internal/services"
	"tintura-sst/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportsHandler struct {
	reports   *services.ReportService
	dashboard *services.DashboardService
	store     store.Store
}

func NewReportsHandler(reports *services.ReportService, dashboard *services.DashboardService, st store.Store) *ReportsHandler {
	return &ReportsHandler{reports: reports, dashboard: dashboard, store: st}
}

func reportFilter(c *gin.Context) (quantity.ReportFilter, error) {
	f := quantity.ReportFilter{Start: c.Query("start"), End: c.Query("end")}
	if raw := c.Query("unit_id"); raw != "" && raw != "all" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, err
		}
		f.UnitID = &v
	}
	return f, nil
}

// Report godoc
// @Summary     Production report
// @Description Order counts, completion rate and per-unit volumes for orders in the filter.
// @Description Dates are YYYY-MM-DD and inclusive. The order date is the creation date, or the target delivery date when the creation date is unknown.
// @Tags        reports
// @Produce     json
// @Param       unit_id query int false "Unit ID"
// @Param       start query string false "Start date"
// @Param       end query string false "End date"
// @Success     200 {object} services.Report
// @Failure     400 {object} models.ErrorResponse
// @Router      /reports [get]
func (h *ReportsHandler) Report(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		badRequest(c, "invalid unit_id", err)
		return
	}
	report, err := h.reports.Build(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportReport godoc
// @Summary     Production report as XLSX
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param       unit_id query int false "Unit ID"
// @Param       start query string false "Start date"
// @Param       end query string false "End date"
// @Success     200 {file} file
// @Router      /reports/export [get]
func (h *ReportsHandler) ExportReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		badRequest(c, "invalid unit_id", err)
		return
	}
	report, err := h.reports.Build(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to build spreadsheet", Message: err.Error()})
		return
	}
	filename := fmt.Sprintf("production-report-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Dashboard godoc
// @Summary     Dashboard
// @Description Orders, units, stock count and open material requests in one call
// @Tags        reports
// @Produce     json
// @Success     200 {object} services.Dashboard
// @Failure     503 {object} models.ErrorResponse
// @Router      /dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *ReportsHandler) ListUnits(c *gin.Context) {
	units, err := h.store.ListUnits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}
