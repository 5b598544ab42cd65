package workflow

import "time"

// Login (OTP) states and events
const (
	LoginOTPSent  State = "otp_sent"
	LoginVerified State = "verified"
	LoginExpired  State = "expired"

	EventVerify Event = "verify"
	EventResend Event = "resend"
)

// Loan disbursement wizard states and events
const (
	LoanVideoKYC        State = "video_kyc"
	LoanVoiceConfirm    State = "voice_confirm"
	LoanESign           State = "e_sign"
	LoanShopSelect      State = "shop_select"
	LoanShopTransferred State = "shop_transferred"
	LoanInsurance       State = "insurance"
	LoanInsuranceActive State = "insurance_active"
	LoanAutoPay         State = "autopay"
	LoanCompleted       State = "completed"

	EventCaptureFace   Event = "capture_face"
	EventConfirmVoice  Event = "confirm_voice"
	EventSkip          Event = "skip"
	EventSign          Event = "sign"
	EventSelectShop    Event = "select_shop"
	EventNext          Event = "next"
	EventBuyInsurance  Event = "buy_insurance"
	EventEnableAutoPay Event = "enable_autopay"
)

// Emergency relief states and events
const (
	EmergencyUpload    State = "upload"
	EmergencyAnalyzing State = "analyzing"
	EmergencyApproved  State = "approved"

	EventUpload Event = "upload"
)

// Login builds the OTP flow; the code is valid for otpTTL
func Login(otpTTL time.Duration) *Definition {
	return &Definition{
		Name:     "login",
		Initial:  LoginOTPSent,
		Terminal: []State{LoginVerified},
		Transitions: []Transition{
			{From: LoginOTPSent, Event: EventVerify, To: LoginVerified},
			{From: LoginExpired, Event: EventResend, To: LoginOTPSent},
		},
		Timers: []Timer{
			{From: LoginOTPSent, After: otpTTL, To: LoginExpired},
		},
	}
}

// Loan is the KYC + disbursement wizard
func Loan() *Definition {
	return &Definition{
		Name:     "loan",
		Initial:  LoanVideoKYC,
		Terminal: []State{LoanCompleted},
		Transitions: []Transition{
			{From: LoanVideoKYC, Event: EventCaptureFace, To: LoanVoiceConfirm},
			{From: LoanVoiceConfirm, Event: EventConfirmVoice, To: LoanESign},
			{From: LoanVoiceConfirm, Event: EventSkip, To: LoanESign},
			{From: LoanESign, Event: EventSign, To: LoanShopSelect},
			{From: LoanShopSelect, Event: EventSelectShop, To: LoanShopTransferred},
			{From: LoanShopTransferred, Event: EventNext, To: LoanInsurance},
			{From: LoanInsurance, Event: EventBuyInsurance, To: LoanInsuranceActive},
			{From: LoanInsuranceActive, Event: EventNext, To: LoanAutoPay},
			{From: LoanAutoPay, Event: EventEnableAutoPay, To: LoanCompleted},
		},
	}
}

// Emergency is the photo-scan instant relief flow
func Emergency(scanDelay time.Duration) *Definition {
	return &Definition{
		Name:     "emergency",
		Initial:  EmergencyUpload,
		Terminal: []State{EmergencyApproved},
		Transitions: []Transition{
			{From: EmergencyUpload, Event: EventUpload, To: EmergencyAnalyzing},
		},
		Timers: []Timer{
			{From: EmergencyAnalyzing, After: scanDelay, To: EmergencyApproved},
		},
	}
}
