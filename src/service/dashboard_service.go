package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"spendwise-server/src/models"
)

const recentExpenseLimit = 5

type DashboardStore interface {
	TotalExpenses(ctx context.Context, userID int) (float64, error)
	MonthTotal(ctx context.Context, userID, year int, month time.Month) (float64, error)
	CategoryMonthTotals(ctx context.Context, userID, year int, month time.Month) ([]models.CategoryExpense, error)
	RecentExpenses(ctx context.Context, userID, limit int) ([]models.Expense, error)
}

// DashboardAggregator composes the per-user expense summaries into a single
// read-only payload.
type DashboardAggregator struct {
	Store DashboardStore
	Now   func() time.Time
}

func NewDashboardAggregator(store DashboardStore) *DashboardAggregator {
	return &DashboardAggregator{Store: store, Now: time.Now}
}

func (a *DashboardAggregator) Stats(ctx context.Context, userID int) (*models.DashboardStats, error) {
	now := a.Now()
	year, month := now.Year(), now.Month()

	total, err := a.Store.TotalExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("total expenses: %w", err)
	}

	monthTotal, err := a.Store.MonthTotal(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("month total: %w", err)
	}

	// amount > 0 is enforced at the store, so a negative sum means the data
	// is corrupt.
	if total < 0 || monthTotal < 0 {
		return nil, fmt.Errorf("negative expense total for user %d", userID)
	}

	byCategory, err := a.Store.CategoryMonthTotals(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	for i := range byCategory {
		if monthTotal > 0 {
			byCategory[i].Percentage = round2(byCategory[i].Amount / monthTotal * 100)
		} else {
			byCategory[i].Percentage = 0
		}
	}
	sort.SliceStable(byCategory, func(i, j int) bool {
		return byCategory[i].Amount > byCategory[j].Amount
	})

	trend, err := a.monthlyTrend(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	recent, err := a.Store.RecentExpenses(ctx, userID, recentExpenseLimit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}

	if byCategory == nil {
		byCategory = []models.CategoryExpense{}
	}
	if recent == nil {
		recent = []models.Expense{}
	}

	return &models.DashboardStats{
		TotalExpenses:    total,
		MonthlyExpenses:  monthTotal,
		CategoryExpenses: byCategory,
		MonthlyTrend:     trend,
		RecentExpenses:   recent,
	}, nil
}

// monthlyTrend sums the 6 most recent calendar months ending at the current
// one, oldest first. Months with no expenses show up with amount 0.
func (a *DashboardAggregator) monthlyTrend(ctx context.Context, userID int, now time.Time) ([]models.MonthlyTrendPoint, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	trend := make([]models.MonthlyTrendPoint, 0, 6)
	for i := 5; i >= 0; i-- {
		bucket := first.AddDate(0, -i, 0)
		amount, err := a.Store.MonthTotal(ctx, userID, bucket.Year(), bucket.Month())
		if err != nil {
			return nil, fmt.Errorf("trend month %s: %w", bucket.Format("2006-01"), err)
		}
		trend = append(trend, models.MonthlyTrendPoint{
			Month:  bucket.Format("January 2006"),
			Amount: amount,
		})
	}
	return trend, nil
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
