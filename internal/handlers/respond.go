package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

const dateLayout = "2006-01-02"

// respondError maps a domain error onto an HTTP status: not-found 404,
// validation 400, conflicts and rejected transitions 409, everything
// else 500. The body carries the machine-readable code and the message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsNotFoundError(err):
		status = http.StatusNotFound
	case domain.IsValidationError(err):
		status = http.StatusBadRequest
	case domain.IsInvalidTransition(err), domain.IsConflictError(err):
		status = http.StatusConflict
	}

	message := "internal error"
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) && status != http.StatusInternalServerError {
		message = domainErr.Message
	}

	c.JSON(status, gin.H{
		"error": message,
		"code":  string(domain.GetErrorCode(err)),
	})
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid " + name,
			"code":  string(domain.ErrorCodeValidationFailed),
		})
		return uuid.Nil, false
	}
	return id, true
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// subscriptionView is the wire shape of a subscription. Money renders as
// a decimal string, dates as yyyy-mm-dd.
type subscriptionView struct {
	ID               uuid.UUID         `json:"id"`
	OwnerID          *uuid.UUID        `json:"owner_id,omitempty"`
	Name             string            `json:"name"`
	ProviderID       uuid.UUID         `json:"provider_id"`
	CostAmount       string            `json:"cost_amount"`
	CostCurrency     string            `json:"cost_currency"`
	BillingCycle     *billingCycleView `json:"billing_cycle,omitempty"`
	Status           string            `json:"status"`
	StartDate        string            `json:"start_date"`
	NextBillingDate  string            `json:"next_billing_date"`
	CancellationDate *string           `json:"cancellation_date,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type billingCycleView struct {
	ID       uuid.UUID `json:"id"`
	Interval int       `json:"interval"`
	Unit     string    `json:"unit"`
	Display  string    `json:"display"`
}

func toSubscriptionView(sub *domain.Subscription) subscriptionView {
	view := subscriptionView{
		ID:               sub.ID,
		OwnerID:          sub.OwnerID,
		Name:             sub.Name,
		ProviderID:       sub.ProviderID,
		CostAmount:       sub.CostAmount.String(),
		CostCurrency:     sub.CostCurrency,
		Status:           string(sub.Status),
		StartDate:        formatDate(sub.StartDate),
		NextBillingDate:  formatDate(sub.NextBillingDate),
		CancellationDate: formatOptionalDate(sub.CancellationDate),
		Notes:            sub.Notes,
		CreatedAt:        sub.CreatedAt,
		UpdatedAt:        sub.UpdatedAt,
	}
	if sub.Cycle != nil {
		view.BillingCycle = &billingCycleView{
			ID:       sub.Cycle.ID,
			Interval: sub.Cycle.Interval,
			Unit:     string(sub.Cycle.Unit),
			Display:  sub.Cycle.String(),
		}
	}
	return view
}

func toSubscriptionViews(subs []*domain.Subscription) []subscriptionView {
	views := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, toSubscriptionView(sub))
	}
	return views
}

type renewalEventView struct {
	ID             uuid.UUID `json:"id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	RenewalDate    string    `json:"renewal_date"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	IsProcessed    bool      `json:"is_processed"`
	CreatedAt      time.Time `json:"created_at"`
}

func toRenewalEventView(event *domain.RenewalEvent) renewalEventView {
	return renewalEventView{
		ID:             event.ID,
		SubscriptionID: event.SubscriptionID,
		RenewalDate:    formatDate(event.RenewalDate),
		Amount:         event.Amount.String(),
		Currency:       event.Currency,
		IsProcessed:    event.IsProcessed,
		CreatedAt:      event.CreatedAt,
	}
}

func toRenewalEventViews(events []*domain.RenewalEvent) []renewalEventView {
	views := make([]renewalEventView, 0, len(events))
	for _, event := range events {
		views = append(views, toRenewalEventView(event))
	}
	return views
}

type historyView struct {
	ID          uuid.UUID `json:"id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toHistoryViews(entries []*domain.SubscriptionHistory) []historyView {
	views := make([]historyView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, historyView{
			ID:          entry.ID,
			EventType:   string(entry.EventType),
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return views
}
