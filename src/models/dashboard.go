package models

type CategoryExpense struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type MonthlyTrendPoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type DashboardStats struct {
	TotalExpenses    float64             `json:"total_expenses"`
	MonthlyExpenses  float64             `json:"monthly_expenses"`
	CategoryExpenses []CategoryExpense   `json:"category_expenses"`
	MonthlyTrend     []MonthlyTrendPoint `json:"monthly_trend"`
	RecentExpenses   []Expense           `json:"recent_expenses"`
}
