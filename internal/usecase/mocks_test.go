//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/ports/adapter"
	"academy-payments/internal/domain/ports/repository"
)

// ---- In-memory PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentIntent // by ID

	// SaveFunc, when set, intercepts Save so tests can observe or fail it.
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.PaymentIntent) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.PaymentIntent)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentIntent) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByReference(ctx context.Context, tx repository.Tx, referenceID string) (*model.PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.ReferenceID == referenceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.PaidAt = paidAt
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PaymentIntent
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

// ---- In-memory CourseRepository ----

type MockCourseRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Course
}

var _ repository.CourseRepository = (*MockCourseRepo)(nil)

func NewMockCourseRepo() *MockCourseRepo {
	return &MockCourseRepo{store: make(map[string]*model.Course)}
}

func (m *MockCourseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCourseRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Course
	for _, c := range m.store {
		if c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- In-memory UserRepository ----

type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) TouchLastActive(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[id]; ok {
		u.LastActiveAt = time.Now()
	}
	return nil
}

// ---- Mock PaymentGateway ----

type MockGateway struct {
	mu sync.Mutex

	RequestPaymentFunc func(ctx context.Context, req adapter.PaymentRequest) (string, string, error)
	QueryPaymentFunc   func(ctx context.Context, referenceID string) (adapter.GatewayStatus, error)

	RequestCalls int
	QueryCalls   int
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) RequestPayment(ctx context.Context, req adapter.PaymentRequest) (string, string, error) {
	m.mu.Lock()
	m.RequestCalls++
	m.mu.Unlock()
	if m.RequestPaymentFunc != nil {
		return m.RequestPaymentFunc(ctx, req)
	}
	return "ref-1", "", nil
}

func (m *MockGateway) QueryPayment(ctx context.Context, referenceID string) (adapter.GatewayStatus, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.mu.Unlock()
	if m.QueryPaymentFunc != nil {
		return m.QueryPaymentFunc(ctx, referenceID)
	}
	return adapter.GatewayStatusPending, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs fn immediately without a real transaction unless a test
// installs its own behavior.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
