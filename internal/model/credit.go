package model

import "time"

// Installment - one AutoPay debit of a KCC loan
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"due_date"`
	Amount    float64   `json:"amount"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Remaining float64   `json:"remaining"`
}
