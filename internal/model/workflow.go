package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkflowKind string

const (
	WorkflowLogin     WorkflowKind = "login"
	WorkflowLoan      WorkflowKind = "loan"
	WorkflowEmergency WorkflowKind = "emergency"
)

// Shops a disbursement can be transferred to
const (
	ShopInputDealer  = "input_dealer"
	ShopMachineryHub = "machinery_hub"
	ShopBankAccount  = "bank_account"
)

type WorkflowStep struct {
	State     string    `json:"state"`
	EnteredAt time.Time `json:"entered_at"`
}

// WorkflowSession - snapshot of a simulated multi-step flow
type WorkflowSession struct {
	ID               uuid.UUID      `json:"id"`
	Kind             WorkflowKind   `json:"kind"`
	State            string         `json:"state"`
	Done             bool           `json:"done"`
	Amount           float64        `json:"amount"`
	Shop             string         `json:"shop,omitempty"`
	Signed           bool           `json:"signed"`
	MonthlyEMI       float64        `json:"monthly_emi,omitempty"`
	AutoPayDay       int            `json:"autopay_day,omitempty"`
	InsurancePremium float64        `json:"insurance_premium,omitempty"`
	Schedule         []Installment  `json:"schedule,omitempty"`
	Message          string         `json:"message,omitempty"`
	History          []WorkflowStep `json:"history"`
}

type StartLoanInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// WorkflowEventInput - user action on a workflow step
type WorkflowEventInput struct {
	Event     string `json:"event" validate:"required,max=32"`
	Shop      string `json:"shop" validate:"omitempty,oneof=input_dealer machinery_hub bank_account"`
	Signature string `json:"signature" validate:"max=65536"`
}
