package model

import (
	"time"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/wallet"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // intent created; awaiting gateway outcome
	PaymentStatusCompleted PaymentStatus = "completed" // verified OK at provider
	PaymentStatusFailed    PaymentStatus = "failed"    // declined, expired or verification failed
)

// Terminal reports whether s can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

type PaymentType string

const (
	PaymentTypeOneTime     PaymentType = "one_time"
	PaymentTypeInstallment PaymentType = "installment"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMobileWallet PaymentMethod = "mobile_wallet"
)

// Installment is one entry of an intent's payment schedule.
type Installment struct {
	Amount  int64     `json:"amount"` // minor units
	DueDate time.Time `json:"dueDate"`
	IsPaid  bool      `json:"isPaid"`
}

// PaymentIntent records one attempt to pay for one course enrollment.
// Status is mutated only from gateway verification; the read API never
// writes it.
type PaymentIntent struct {
	ID           string // UUID
	ReferenceID  string // opaque id assigned by the gateway; poll key
	CourseID     string
	UserID       string
	Amount       int64 // minor units
	Currency     string
	PaymentType  PaymentType
	Method       PaymentMethod
	WalletType   wallet.WalletType // set iff Method == mobile_wallet
	Phone        string            // canonical, required
	Installments []Installment     // set iff PaymentType == installment
	Status       PaymentStatus
	RedirectURL  string // hosted payment page, when the gateway issues one
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PaidAt       *time.Time // set when completed
}

// NewPaymentIntent validates and constructs a pending intent. Phone must
// already be canonical (see the wallet package).
func NewPaymentIntent(id, courseID, userID string, amount int64, currency string, pt PaymentType, method PaymentMethod, wt wallet.WalletType, phone string, installments []Installment, now time.Time) (*PaymentIntent, error) {
	if id == "" || courseID == "" || userID == "" || amount <= 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	switch method {
	case PaymentMethodMobileWallet:
		if wt == "" {
			return nil, domain.ErrWalletRequired
		}
	case PaymentMethodCard:
		if wt != "" {
			return nil, domain.ErrInvalidArgument
		}
	default:
		return nil, domain.ErrInvalidArgument
	}
	switch pt {
	case PaymentTypeInstallment:
		if err := ValidateSchedule(installments, amount); err != nil {
			return nil, err
		}
	case PaymentTypeOneTime:
		if len(installments) != 0 {
			return nil, domain.ErrInvalidArgument
		}
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &PaymentIntent{
		ID:           id,
		CourseID:     courseID,
		UserID:       userID,
		Amount:       amount,
		Currency:     currency,
		PaymentType:  pt,
		Method:       method,
		WalletType:   wt,
		Phone:        phone,
		Installments: installments,
		Status:       PaymentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
