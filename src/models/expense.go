package models

import "time"

type Expense struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	CategoryID   *int      `json:"category"`
	CategoryName *string   `json:"category_name"`
	Amount       float64   `json:"amount"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
