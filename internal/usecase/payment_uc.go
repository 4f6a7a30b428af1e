package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/ports/adapter"
	"academy-payments/internal/domain/ports/repository"
	"academy-payments/internal/domain/wallet"
	"academy-payments/internal/infra/logging"
	"academy-payments/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// InitiateRequest is the validated-at-the-edge input for creating an intent.
// Phone is raw user input; normalization happens here, in one place.
type InitiateRequest struct {
	CourseID    string
	UserID      string
	PaymentType model.PaymentType
	Method      model.PaymentMethod
	WalletType  string // raw wallet identifier; empty for card
	Phone       string
	Months      int // installment plan length; 0 for one_time
}

type PaymentUseCase interface {
	// Initiate validates the request, opens a session with the gateway and
	// persists a pending intent. Validation failures never reach the gateway.
	Initiate(ctx context.Context, req InitiateRequest) (*model.PaymentIntent, error)
	// Status is the read model behind the verify endpoint.
	Status(ctx context.Context, referenceID string) (*model.PaymentIntent, error)
	// ConfirmAuto re-queries the gateway and finalizes the intent if the
	// provider reached a terminal state. Idempotent; terminal intents are
	// returned unchanged.
	ConfirmAuto(ctx context.Context, referenceID string) (*model.PaymentIntent, error)
	// SumByPeriod totals completed payments for admin stats ("week"|"month"|"year").
	SumByPeriod(ctx context.Context, period string) (int64, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	courses  repository.CourseRepository
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewPaymentUseCase(payments repository.PaymentRepository, courses repository.CourseRepository, gateway adapter.PaymentGateway, tm repository.TransactionManager, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{payments: payments, courses: courses, gateway: gateway, tm: tm, log: logger}
}

func (u *paymentUC) Initiate(ctx context.Context, req InitiateRequest) (*model.PaymentIntent, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Initiate")()

	course, err := u.courses.FindByID(ctx, nil, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	if !course.Active {
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now()

	var installments []model.Installment
	switch req.PaymentType {
	case model.PaymentTypeInstallment:
		if req.Months == 0 {
			return nil, domain.ErrPlanNotSelected
		}
		installments, err = model.BuildSchedule(course.Price, req.Months, now)
		if err != nil {
			return nil, err
		}
	case model.PaymentTypeOneTime:
		if req.Months != 0 {
			return nil, domain.ErrInvalidArgument
		}
	default:
		return nil, domain.ErrInvalidArgument
	}

	var wt wallet.WalletType
	var phone string
	switch req.Method {
	case model.PaymentMethodMobileWallet:
		if req.WalletType == "" {
			return nil, domain.ErrWalletRequired
		}
		w, err := wallet.Parse(req.WalletType)
		if err != nil {
			return nil, err
		}
		phone, err = wallet.Normalize(req.Phone, w)
		if err != nil {
			return nil, err
		}
		wt = w.Canonical()
	case model.PaymentMethodCard:
		phone, err = wallet.NormalizeCard(req.Phone)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidArgument
	}

	intent, err := model.NewPaymentIntent(uuid.NewString(), course.ID, req.UserID, course.Price, course.Currency, req.PaymentType, req.Method, wt, phone, installments, now)
	if err != nil {
		return nil, err
	}
	intent.Description = fmt.Sprintf("enrollment: %s", course.Name)

	refID, redirectURL, err := u.gateway.RequestPayment(ctx, adapter.PaymentRequest{
		Amount:      intent.Amount,
		Currency:    intent.Currency,
		Phone:       intent.Phone,
		Description: intent.Description,
		HostedPage:  req.Method == model.PaymentMethodCard,
	})
	if err != nil {
		u.log.Error().Err(err).Str("course_id", course.ID).Msg("gateway request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	intent.ReferenceID = refID
	intent.RedirectURL = redirectURL

	if err := u.payments.Save(ctx, nil, intent); err != nil {
		return nil, fmt.Errorf("save intent: %w", err)
	}
	metrics.IncPayment(string(intent.Status))
	u.log.Info().Str("ref_id", refID).Str("course_id", course.ID).Int64("amount", intent.Amount).Msg("payment intent created")
	return intent, nil
}

func (u *paymentUC) Status(ctx context.Context, referenceID string) (*model.PaymentIntent, error) {
	return u.payments.FindByReference(ctx, nil, referenceID)
}

func (u *paymentUC) ConfirmAuto(ctx context.Context, referenceID string) (*model.PaymentIntent, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.ConfirmAuto")()

	p, err := u.payments.FindByReference(ctx, nil, referenceID)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return p, nil
	}

	gwStatus, err := u.gateway.QueryPayment(ctx, referenceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	status, final := mapGatewayStatus(gwStatus)
	if !final {
		return p, nil
	}

	now := time.Now()
	var paidAt *time.Time
	if status == model.PaymentStatusCompleted {
		paidAt = &now
	}
	// Row lock plus conditional update so concurrent confirms (API verify vs
	// reconciler) cannot both finalize the same intent.
	var finalized bool
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		cur, err := u.payments.FindByReference(ctx, tx, referenceID)
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			p = cur
			return nil
		}
		changed, err := u.payments.UpdateStatusIfPending(ctx, tx, cur.ID, status, paidAt)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		finalized = changed
		p.Status = status
		p.PaidAt = paidAt
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if finalized {
		metrics.IncPayment(string(status))
		if status == model.PaymentStatusCompleted {
			metrics.AddPaymentRevenue(p.Currency, p.Amount)
		}
		u.log.Info().Str("ref_id", referenceID).Str("status", string(status)).Msg("payment finalized")
	}
	return p, nil
}

func (u *paymentUC) SumByPeriod(ctx context.Context, period string) (int64, error) {
	return u.payments.SumByPeriod(ctx, nil, period)
}

func mapGatewayStatus(s adapter.GatewayStatus) (model.PaymentStatus, bool) {
	switch s {
	case adapter.GatewayStatusApproved:
		return model.PaymentStatusCompleted, true
	case adapter.GatewayStatusDeclined, adapter.GatewayStatusExpired:
		return model.PaymentStatusFailed, true
	default:
		return model.PaymentStatusPending, false
	}
}
