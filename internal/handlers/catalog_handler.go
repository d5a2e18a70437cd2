package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/middleware"
	"github.com/smpconsole/subscription-tracker/internal/services/catalog"
)

// CatalogHandler serves provider and billing cycle endpoints.
type CatalogHandler struct {
	service *catalog.Service
	logger  ports.Logger
}

func NewCatalogHandler(service *catalog.Service, logger ports.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

type providerView struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         *uuid.UUID `json:"owner_id,omitempty"`
	Name            string     `json:"name"`
	Category        string     `json:"category,omitempty"`
	Website         string     `json:"website,omitempty"`
	CancellationURL string     `json:"cancellation_url,omitempty"`
}

func toProviderView(provider *domain.Provider) providerView {
	return providerView{
		ID:              provider.ID,
		OwnerID:         provider.OwnerID,
		Name:            provider.Name,
		Category:        provider.Category,
		Website:         provider.Website,
		CancellationURL: provider.CancellationURL,
	}
}

type createProviderBody struct {
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category"`
	Website         string  `json:"website"`
	CancellationURL string  `json:"cancellation_url"`
	OwnerID         *string `json:"owner_id"`
}

func (h *CatalogHandler) CreateProvider(c *gin.Context) {
	var body createProviderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	req := &ports.CreateProviderRequest{
		Name:            body.Name,
		Category:        body.Category,
		Website:         body.Website,
		CancellationURL: body.CancellationURL,
	}
	if body.OwnerID != nil {
		ownerID, err := uuid.Parse(*body.OwnerID)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid owner_id"))
			return
		}
		req.OwnerID = &ownerID
	}

	provider, err := h.service.CreateProvider(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProviderView(provider))
}

func (h *CatalogHandler) GetProvider(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	provider, err := h.service.GetProvider(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderView(provider))
}

type updateProviderBody struct {
	Name            *string `json:"name"`
	Category        *string `json:"category"`
	Website         *string `json:"website"`
	CancellationURL *string `json:"cancellation_url"`
}

func (h *CatalogHandler) UpdateProvider(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body updateProviderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	provider, err := h.service.UpdateProvider(c.Request.Context(), middleware.PrincipalFrom(c), &ports.UpdateProviderRequest{
		ProviderID:      id,
		Name:            body.Name,
		Category:        body.Category,
		Website:         body.Website,
		CancellationURL: body.CancellationURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderView(provider))
}

func (h *CatalogHandler) DeleteProvider(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProvider(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListProviders(c *gin.Context) {
	providers, err := h.service.ListProviders(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]providerView, 0, len(providers))
	for _, provider := range providers {
		views = append(views, toProviderView(provider))
	}
	c.JSON(http.StatusOK, gin.H{"providers": views})
}

type createCycleBody struct {
	Interval int     `json:"interval" binding:"required"`
	Unit     string  `json:"unit" binding:"required"`
	OwnerID  *string `json:"owner_id"`
}

func (h *CatalogHandler) CreateCycle(c *gin.Context) {
	var body createCycleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	req := &ports.CreateBillingCycleRequest{
		Interval: body.Interval,
		Unit:     domain.CycleUnit(body.Unit),
	}
	if body.OwnerID != nil {
		ownerID, err := uuid.Parse(*body.OwnerID)
		if err != nil {
			respondError(c, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid owner_id"))
			return
		}
		req.OwnerID = &ownerID
	}

	cycle, err := h.service.CreateCycle(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCycleView(cycle))
}

func toCycleView(cycle *domain.BillingCycle) billingCycleView {
	return billingCycleView{
		ID:       cycle.ID,
		Interval: cycle.Interval,
		Unit:     string(cycle.Unit),
		Display:  cycle.String(),
	}
}

func (h *CatalogHandler) GetCycle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cycle, err := h.service.GetCycle(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCycleView(cycle))
}

func (h *CatalogHandler) DeleteCycle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCycle(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListCycles(c *gin.Context) {
	cycles, err := h.service.ListCycles(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]billingCycleView, 0, len(cycles))
	for _, cycle := range cycles {
		views = append(views, toCycleView(cycle))
	}
	c.JSON(http.StatusOK, gin.H{"billing_cycles": views})
}
