package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/middleware"
	"github.com/smpconsole/subscription-tracker/pkg/timeutil"
)

type createRuleBody struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	Timing         string `json:"timing" binding:"required"`
	Enabled        *bool  `json:"enabled"`
}

func (h *SubscriptionHandler) CreateRule(c *gin.Context) {
	var body createRuleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}
	subID, err := uuid.Parse(body.SubscriptionID)
	if err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid subscription_id"))
		return
	}

	enabled := true
	if body.Enabled != nil {
		enabled = *body.Enabled
	}
	rule, err := h.service.CreateRule(c.Request.Context(), middleware.PrincipalFrom(c), &ports.CreateNotificationRuleRequest{
		SubscriptionID: subID,
		Timing:         domain.NotificationTiming(body.Timing),
		Enabled:        enabled,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRuleView(rule))
}

func toRuleView(rule *domain.NotificationRule) gin.H {
	return gin.H{
		"id":              rule.ID,
		"subscription_id": rule.SubscriptionID,
		"timing":          string(rule.Timing),
		"enabled":         rule.Enabled,
		"created_at":      rule.CreatedAt,
	}
}

func (h *SubscriptionHandler) GetRule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rule, err := h.service.GetRule(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleView(rule))
}

func (h *SubscriptionHandler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		views = append(views, toRuleView(rule))
	}
	c.JSON(http.StatusOK, gin.H{"notification_rules": views})
}

type updateRuleBody struct {
	Timing  *string `json:"timing"`
	Enabled *bool   `json:"enabled"`
}

func (h *SubscriptionHandler) UpdateRule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body updateRuleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	req := &ports.UpdateNotificationRuleRequest{RuleID: id, Enabled: body.Enabled}
	if body.Timing != nil {
		timing := domain.NotificationTiming(*body.Timing)
		req.Timing = &timing
	}
	rule, err := h.service.UpdateRule(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleView(rule))
}

func (h *SubscriptionHandler) DeleteRule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRule(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createEventBody struct {
	SubscriptionID string  `json:"subscription_id" binding:"required"`
	RenewalDate    string  `json:"renewal_date" binding:"required"`
	Amount         *string `json:"amount"`
	Currency       string  `json:"currency"`
	IsProcessed    bool    `json:"is_processed"`
}

func (h *SubscriptionHandler) CreateEvent(c *gin.Context) {
	var body createEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}
	subID, err := uuid.Parse(body.SubscriptionID)
	if err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid subscription_id"))
		return
	}
	renewalDate, err := timeutil.ParseDate(dateLayout, body.RenewalDate)
	if err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid renewal_date"))
		return
	}

	req := &ports.CreateRenewalEventRequest{
		SubscriptionID: subID,
		RenewalDate:    renewalDate,
		Currency:       body.Currency,
		IsProcessed:    body.IsProcessed,
	}
	if body.Amount != nil {
		amount, err := decimal.NewFromString(*body.Amount)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid amount"))
			return
		}
		req.Amount = amount
	}

	event, err := h.service.CreateEvent(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRenewalEventView(event))
}

func (h *SubscriptionHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := h.service.GetEvent(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRenewalEventView(event))
}

func (h *SubscriptionHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListEvents(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"renewal_events": toRenewalEventViews(events)})
}

type updateEventBody struct {
	RenewalDate *string `json:"renewal_date"`
	Amount      *string `json:"amount"`
	Currency    *string `json:"currency"`
	IsProcessed *bool   `json:"is_processed"`
}

func (h *SubscriptionHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body updateEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	req := &ports.UpdateRenewalEventRequest{
		EventID:     id,
		Currency:    body.Currency,
		IsProcessed: body.IsProcessed,
	}
	if body.RenewalDate != nil {
		date, err := timeutil.ParseDate(dateLayout, *body.RenewalDate)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid renewal_date"))
			return
		}
		req.RenewalDate = &date
	}
	if body.Amount != nil {
		amount, err := decimal.NewFromString(*body.Amount)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid amount"))
			return
		}
		req.Amount = &amount
	}

	event, err := h.service.UpdateEvent(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRenewalEventView(event))
}

func (h *SubscriptionHandler) MarkEventProcessed(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := h.service.MarkEventProcessed(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRenewalEventView(event))
}

func (h *SubscriptionHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
