//go:build !integration

package model_test

import (
	"errors"
	"testing"
	"time"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/wallet"
)

func TestSplitAmount(t *testing.T) {
	t.Run("even split", func(t *testing.T) {
		parts, err := model.SplitAmount(300_00, 3)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range parts {
			if p != 100_00 {
				t.Fatalf("part %d = %d, want 10000", i, p)
			}
		}
	})

	t.Run("remainder lands on the last part", func(t *testing.T) {
		parts, err := model.SplitAmount(100_00, 3)
		if err != nil {
			t.Fatal(err)
		}
		want := []int64{3333, 3333, 3334}
		for i := range want {
			if parts[i] != want[i] {
				t.Fatalf("parts = %v, want %v", parts, want)
			}
		}
	})

	t.Run("parts always sum to total", func(t *testing.T) {
		for _, total := range []int64{1, 99, 100_00, 12345, 999_999} {
			for _, months := range []int{3, 6, 12} {
				parts, err := model.SplitAmount(total, months)
				if err != nil {
					t.Fatal(err)
				}
				var sum int64
				for _, p := range parts {
					sum += p
				}
				if sum != total {
					t.Fatalf("SplitAmount(%d, %d) sums to %d", total, months, sum)
				}
			}
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		if _, err := model.SplitAmount(100, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("months=0: want ErrInvalidArgument, got %v", err)
		}
		if _, err := model.SplitAmount(-1, 3); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("negative total: want ErrInvalidArgument, got %v", err)
		}
	})
}

func TestBuildSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sched, err := model.BuildSchedule(300_00, 3, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(sched) != 3 {
		t.Fatalf("len = %d, want 3", len(sched))
	}
	if !sched[0].IsPaid {
		t.Fatal("first installment must be marked paid")
	}
	for i := 1; i < len(sched); i++ {
		if sched[i].IsPaid {
			t.Fatalf("installment %d marked paid", i)
		}
		gap := sched[i].DueDate.Sub(sched[i-1].DueDate)
		if gap != 30*24*time.Hour {
			t.Fatalf("gap between %d and %d = %s, want 720h", i-1, i, gap)
		}
	}
	if !sched[0].DueDate.Equal(now) {
		t.Fatalf("first due date = %s, want %s", sched[0].DueDate, now)
	}

	if _, err := model.BuildSchedule(300_00, 5, now); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("months=5: want ErrInvalidArgument, got %v", err)
	}
}

func TestValidateSchedule(t *testing.T) {
	now := time.Now()
	sched, err := model.BuildSchedule(100_00, 3, now)
	if err != nil {
		t.Fatal(err)
	}

	if err := model.ValidateSchedule(sched, 100_00); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
	if err := model.ValidateSchedule(nil, 100_00); !errors.Is(err, domain.ErrPlanNotSelected) {
		t.Fatalf("empty schedule: want ErrPlanNotSelected, got %v", err)
	}
	if err := model.ValidateSchedule(sched, 100_01); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("sum mismatch: want ErrInvalidArgument, got %v", err)
	}

	unpaid := append([]model.Installment(nil), sched...)
	unpaid[0].IsPaid = false
	if err := model.ValidateSchedule(unpaid, 100_00); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("first unpaid: want ErrInvalidArgument, got %v", err)
	}
}

func TestNewPaymentIntent(t *testing.T) {
	now := time.Now()
	sched, err := model.BuildSchedule(300_00, 3, now)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("one_time card", func(t *testing.T) {
		p, err := model.NewPaymentIntent("id-1", "course-1", "user-1", 300_00, "USD",
			model.PaymentTypeOneTime, model.PaymentMethodCard, "", "+252611111111", nil, now)
		if err != nil {
			t.Fatal(err)
		}
		if p.Status != model.PaymentStatusPending {
			t.Fatalf("status = %s, want pending", p.Status)
		}
	})

	t.Run("installment wallet", func(t *testing.T) {
		p, err := model.NewPaymentIntent("id-2", "course-1", "user-1", 300_00, "USD",
			model.PaymentTypeInstallment, model.PaymentMethodMobileWallet, wallet.WalletEVCPlus, "+25261611111111", sched, now)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Installments) != 3 {
			t.Fatalf("installments = %d, want 3", len(p.Installments))
		}
	})

	t.Run("wallet method requires wallet type", func(t *testing.T) {
		_, err := model.NewPaymentIntent("id-3", "course-1", "user-1", 300_00, "USD",
			model.PaymentTypeOneTime, model.PaymentMethodMobileWallet, "", "+25261611111111", nil, now)
		if !errors.Is(err, domain.ErrWalletRequired) {
			t.Fatalf("want ErrWalletRequired, got %v", err)
		}
	})

	t.Run("installment type requires a schedule", func(t *testing.T) {
		_, err := model.NewPaymentIntent("id-4", "course-1", "user-1", 300_00, "USD",
			model.PaymentTypeInstallment, model.PaymentMethodCard, "", "+252611111111", nil, now)
		if !errors.Is(err, domain.ErrPlanNotSelected) {
			t.Fatalf("want ErrPlanNotSelected, got %v", err)
		}
	})

	t.Run("missing phone", func(t *testing.T) {
		_, err := model.NewPaymentIntent("id-5", "course-1", "user-1", 300_00, "USD",
			model.PaymentTypeOneTime, model.PaymentMethodCard, "", "", nil, now)
		if !errors.Is(err, domain.ErrPhoneRequired) {
			t.Fatalf("want ErrPhoneRequired, got %v", err)
		}
	})
}

func TestPaymentStatusTerminal(t *testing.T) {
	if model.PaymentStatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
	if !model.PaymentStatusCompleted.Terminal() || !model.PaymentStatusFailed.Terminal() {
		t.Fatal("completed and failed must be terminal")
	}
}
