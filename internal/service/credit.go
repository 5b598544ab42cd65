package service

import (
	"math"
	"time"

	"loan4farm-api/internal/model"
)

// CalculateMonthlyPayment returns the annuity payment
func CalculateMonthlyPayment(amount float64, termMonths int, interestRate float64) float64 {
	if termMonths <= 0 {
		return amount
	}
	monthlyRate := interestRate / 12 / 100
	if monthlyRate == 0 {
		return amount / float64(termMonths)
	}
	annuityCoeff := (monthlyRate * math.Pow(1+monthlyRate, float64(termMonths))) /
		(math.Pow(1+monthlyRate, float64(termMonths)) - 1)
	return amount * annuityCoeff
}

// RepaymentSchedule splits the annuity into monthly AutoPay debits due on dueDay,
// starting the month after start
func RepaymentSchedule(amount float64, termMonths int, interestRate float64, start time.Time, dueDay int) []model.Installment {
	if termMonths <= 0 || amount <= 0 {
		return nil
	}

	payment := CalculateMonthlyPayment(amount, termMonths, interestRate)
	monthlyRate := interestRate / 12 / 100
	remaining := amount
	first := time.Date(start.Year(), start.Month(), dueDay, 0, 0, 0, 0, start.Location())

	schedule := make([]model.Installment, 0, termMonths)
	for i := 1; i <= termMonths; i++ {
		interest := remaining * monthlyRate
		principal := payment - interest
		if i == termMonths {
			// last debit absorbs rounding
			principal = remaining
		}
		remaining -= principal

		schedule = append(schedule, model.Installment{
			Number:    i,
			DueDate:   first.AddDate(0, i, 0),
			Amount:    roundPaise(principal + interest),
			Principal: roundPaise(principal),
			Interest:  roundPaise(interest),
			Remaining: roundPaise(math.Max(remaining, 0)),
		})
	}
	return schedule
}

func roundPaise(v float64) float64 {
	return math.Round(v*100) / 100
}
