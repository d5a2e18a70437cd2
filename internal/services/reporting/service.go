package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

const (
	// defaultHorizonDays bounds the upcoming renewal window when the
	// caller does not override it.
	defaultHorizonDays = 30

	// maxUpcomingRenewals caps the renewal window result set.
	maxUpcomingRenewals = 25
)

// Service computes the read-only aggregates: cost summaries, the
// upcoming renewal window and the dashboard overview.
type Service struct {
	db        ports.DBPort
	subs      ports.SubscriptionRepository
	providers ports.ProviderRepository
	cycles    ports.BillingCycleRepository
	rules     ports.NotificationRuleRepository
	events    ports.RenewalEventRepository
	converter *domain.CurrencyConverter
	logger    ports.Logger
	now       func() time.Time
}

func NewService(
	db ports.DBPort,
	subs ports.SubscriptionRepository,
	providers ports.ProviderRepository,
	cycles ports.BillingCycleRepository,
	rules ports.NotificationRuleRepository,
	events ports.RenewalEventRepository,
	converter *domain.CurrencyConverter,
	logger ports.Logger,
) *Service {
	return &Service{
		db:        db,
		subs:      subs,
		providers: providers,
		cycles:    cycles,
		rules:     rules,
		events:    events,
		converter: converter,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SummarizeCosts folds a set of subscriptions into base-currency monthly
// and annual totals, rounded to 2 decimal places. An empty set yields
// exact zeros.
func (s *Service) SummarizeCosts(subs []*domain.Subscription) (ports.CostSummary, error) {
	summary := ports.CostSummary{
		Currency:     s.converter.Base(),
		MonthlyTotal: decimal.Zero,
		AnnualTotal:  decimal.Zero,
	}
	for _, sub := range subs {
		monthly, err := sub.MonthlyCostInBase(s.converter)
		if err != nil {
			return ports.CostSummary{}, err
		}
		annual, err := sub.AnnualCostInBase(s.converter)
		if err != nil {
			return ports.CostSummary{}, err
		}
		summary.MonthlyTotal = summary.MonthlyTotal.Add(monthly)
		summary.AnnualTotal = summary.AnnualTotal.Add(annual)
	}
	summary.MonthlyTotal = summary.MonthlyTotal.Round(2)
	summary.AnnualTotal = summary.AnnualTotal.Round(2)
	return summary, nil
}

// UpcomingRenewals returns the principal's unprocessed renewal events due
// within the horizon, ascending by renewal date, capped at 25. A
// non-positive horizon falls back to 30 days.
func (s *Service) UpcomingRenewals(ctx context.Context, principal domain.Principal, horizonDays int) ([]*domain.RenewalEvent, error) {
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}
	before := s.now().AddDate(0, 0, horizonDays)

	var events []*domain.RenewalEvent
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		events, err = s.events.ListUnprocessedDueBefore(ctx, tx, principal, before, maxUpcomingRenewals)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Dashboard assembles the per-principal overview in one consistent read:
// entity counts, the cost summary over active subscriptions and the
// upcoming renewal window.
func (s *Service) Dashboard(ctx context.Context, principal domain.Principal) (*ports.DashboardSummary, error) {
	summary := &ports.DashboardSummary{
		BaseCurrency: s.converter.Base(),
	}

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		if summary.Providers, err = s.providers.Count(ctx, tx, principal); err != nil {
			return err
		}
		if summary.Subscriptions, err = s.subs.Count(ctx, tx, principal); err != nil {
			return err
		}
		if summary.BillingCycles, err = s.cycles.Count(ctx, tx, principal); err != nil {
			return err
		}
		if summary.NotificationRules, err = s.rules.Count(ctx, tx, principal); err != nil {
			return err
		}
		if summary.PendingRenewals, err = s.events.CountUnprocessed(ctx, tx, principal); err != nil {
			return err
		}

		active := domain.SubscriptionStatusActive
		activeSubs, err := s.subs.List(ctx, tx, principal, ports.SubscriptionFilter{Status: &active})
		if err != nil {
			return err
		}
		if summary.Costs, err = s.SummarizeCosts(activeSubs); err != nil {
			return err
		}

		before := s.now().AddDate(0, 0, defaultHorizonDays)
		summary.UpcomingRenewals, err = s.events.ListUnprocessedDueBefore(ctx, tx, principal, before, maxUpcomingRenewals)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
