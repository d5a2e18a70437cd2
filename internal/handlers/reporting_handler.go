package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/middleware"
	"github.com/smpconsole/subscription-tracker/internal/services/reporting"
)

// ReportingHandler serves the dashboard and renewal window endpoints.
type ReportingHandler struct {
	service *reporting.Service
	logger  ports.Logger
}

func NewReportingHandler(service *reporting.Service, logger ports.Logger) *ReportingHandler {
	return &ReportingHandler{service: service, logger: logger}
}

func toCostSummaryView(summary ports.CostSummary) gin.H {
	return gin.H{
		"currency":      summary.Currency,
		"monthly_total": summary.MonthlyTotal.StringFixed(2),
		"annual_total":  summary.AnnualTotal.StringFixed(2),
	}
}

func (h *ReportingHandler) Dashboard(c *gin.Context) {
	summary, err := h.service.Dashboard(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"base_currency":      summary.BaseCurrency,
		"providers":          summary.Providers,
		"subscriptions":      summary.Subscriptions,
		"billing_cycles":     summary.BillingCycles,
		"notification_rules": summary.NotificationRules,
		"pending_renewals":   summary.PendingRenewals,
		"costs":              toCostSummaryView(summary.Costs),
		"upcoming_renewals":  toRenewalEventViews(summary.UpcomingRenewals),
	})
}

func (h *ReportingHandler) UpcomingRenewals(c *gin.Context) {
	horizonDays := 0
	if raw := c.Query("horizon_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid horizon_days"))
			return
		}
		horizonDays = parsed
	}

	events, err := h.service.UpcomingRenewals(c.Request.Context(), middleware.PrincipalFrom(c), horizonDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"renewal_events": toRenewalEventViews(events)})
}
