package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/middleware"
	"github.com/smpconsole/subscription-tracker/internal/services/subscription"
	"github.com/smpconsole/subscription-tracker/pkg/timeutil"
)

// SubscriptionHandler exposes the subscription aggregate over HTTP.
type SubscriptionHandler struct {
	service *subscription.Service
	logger  ports.Logger
}

func NewSubscriptionHandler(service *subscription.Service, logger ports.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, logger: logger}
}

type createSubscriptionBody struct {
	Name            string  `json:"name" binding:"required"`
	ProviderID      string  `json:"provider_id" binding:"required"`
	CostAmount      string  `json:"cost_amount" binding:"required"`
	CostCurrency    string  `json:"cost_currency" binding:"required"`
	BillingCycleID  string  `json:"billing_cycle_id" binding:"required"`
	StartDate       string  `json:"start_date" binding:"required"`
	NextBillingDate *string `json:"next_billing_date"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
	OwnerID         *string `json:"owner_id"`
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	var body createSubscriptionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	req := &ports.CreateSubscriptionRequest{
		Name:         body.Name,
		CostCurrency: body.CostCurrency,
		Status:       domain.SubscriptionStatus(body.Status),
		Notes:        body.Notes,
	}

	var err error
	if req.ProviderID, err = uuid.Parse(body.ProviderID); err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid provider_id"))
		return
	}
	if req.BillingCycleID, err = uuid.Parse(body.BillingCycleID); err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid billing_cycle_id"))
		return
	}
	if req.CostAmount, err = decimal.NewFromString(body.CostAmount); err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid cost_amount"))
		return
	}
	if req.StartDate, err = timeutil.ParseDate(dateLayout, body.StartDate); err != nil {
		respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid start_date"))
		return
	}
	if body.NextBillingDate != nil {
		nbd, err := timeutil.ParseDate(dateLayout, *body.NextBillingDate)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid next_billing_date"))
			return
		}
		req.NextBillingDate = &nbd
	}
	if body.OwnerID != nil {
		owner, err := uuid.Parse(*body.OwnerID)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid owner_id"))
			return
		}
		req.OwnerID = &owner
	}

	sub, err := h.service.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubscriptionView(sub))
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetDetail(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	rules := make([]gin.H, 0, len(detail.Rules))
	for _, rule := range detail.Rules {
		rules = append(rules, gin.H{
			"id":      rule.ID,
			"timing":  string(rule.Timing),
			"enabled": rule.Enabled,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"subscription":       toSubscriptionView(detail.Subscription),
		"history":            toHistoryViews(detail.History),
		"notification_rules": rules,
	})
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	filter := ports.SubscriptionFilter{OrderBy: c.Query("order_by")}

	if raw := c.Query("provider_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid provider_id"))
			return
		}
		filter.ProviderID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.SubscriptionStatus(raw)
		if !status.IsValid() {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid status"))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("cost_min"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid cost_min"))
			return
		}
		filter.CostMin = &min
	}
	if raw := c.Query("cost_max"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid cost_max"))
			return
		}
		filter.CostMax = &max
	}

	subs, err := h.service.List(c.Request.Context(), middleware.PrincipalFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": toSubscriptionViews(subs)})
}

type updateSubscriptionBody struct {
	Name            *string `json:"name"`
	ProviderID      *string `json:"provider_id"`
	CostAmount      *string `json:"cost_amount"`
	CostCurrency    *string `json:"cost_currency"`
	BillingCycleID  *string `json:"billing_cycle_id"`
	StartDate       *string `json:"start_date"`
	NextBillingDate *string `json:"next_billing_date"`
	Notes           *string `json:"notes"`
}

func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body updateSubscriptionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	req := &ports.UpdateSubscriptionRequest{
		SubscriptionID: id,
		Name:           body.Name,
		CostCurrency:   body.CostCurrency,
		Notes:          body.Notes,
	}
	if body.ProviderID != nil {
		pid, err := uuid.Parse(*body.ProviderID)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid provider_id"))
			return
		}
		req.ProviderID = &pid
	}
	if body.BillingCycleID != nil {
		cid, err := uuid.Parse(*body.BillingCycleID)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid billing_cycle_id"))
			return
		}
		req.BillingCycleID = &cid
	}
	if body.CostAmount != nil {
		amount, err := decimal.NewFromString(*body.CostAmount)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid cost_amount"))
			return
		}
		req.CostAmount = &amount
	}
	if body.StartDate != nil {
		start, err := timeutil.ParseDate(dateLayout, *body.StartDate)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid start_date"))
			return
		}
		req.StartDate = &start
	}
	if body.NextBillingDate != nil {
		nbd, err := timeutil.ParseDate(dateLayout, *body.NextBillingDate)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid next_billing_date"))
			return
		}
		req.NextBillingDate = &nbd
	}

	sub, err := h.service.Update(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSubscriptionView(sub))
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) Pause(c *gin.Context) {
	h.lifecycle(c, h.service.Pause)
}

func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.lifecycle(c, h.service.Resume)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.service.Cancel)
}

func (h *SubscriptionHandler) lifecycle(c *gin.Context, op func(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sub, err := op(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSubscriptionView(sub))
}

func (h *SubscriptionHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.service.ListHistory(c.Request.Context(), middleware.PrincipalFrom(c), id, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": toHistoryViews(entries)})
}
