package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ---------------------------------------------------------------------------
// repositories
// ---------------------------------------------------------------------------

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil {
		o.ID = 42
	}
	return args.Error(0)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Order, int, error) {
	args := m.Called(ctx, userID, page)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReturnRepo struct {
	mock.Mock
}

func (m *mockReturnRepo) IsEligible(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReturnRepo) CreateReturn(ctx context.Context, req *domain.ReturnRequest) error {
	args := m.Called(ctx, req)
	req.ID = 1
	req.Status = domain.RequestStatusPending
	return args.Error(0)
}

func (m *mockReturnRepo) CreateRefund(ctx context.Context, req *domain.RefundRequest) error {
	args := m.Called(ctx, req)
	req.ID = 2
	req.Status = domain.RequestStatusPending
	return args.Error(0)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if p := args.Get(0); p != nil {
		return p.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, query, limit)
	if p := args.Get(0); p != nil {
		return p.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if r := args.Get(0); r != nil {
		return r.([]domain.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewRepo) Upsert(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

// memItems is a minimal in-memory ItemRepository for signed-in carts.
type memItems struct {
	mu        sync.Mutex
	rows      map[int64]domain.LineItem
	clears    int
	failClear error
}

func newMemItems(items ...domain.LineItem) *memItems {
	m := &memItems{rows: map[int64]domain.LineItem{}}
	for _, it := range items {
		m.rows[it.ProductID] = it
	}
	return m
}

func (m *memItems) ListByUser(context.Context, string) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LineItem, 0, len(m.rows))
	for _, it := range m.rows {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *memItems) Insert(_ context.Context, _ string, item domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[item.ProductID] = item
	return nil
}

func (m *memItems) UpdateQuantity(_ context.Context, _ string, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.rows[productID]
	it.Quantity = qty
	m.rows[productID] = it
	return nil
}

func (m *memItems) Delete(_ context.Context, _ string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, productID)
	return nil
}

func (m *memItems) DeleteAllByUser(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.failClear != nil {
		return m.failClear
	}
	m.rows = map[int64]domain.LineItem{}
	return nil
}

// ---------------------------------------------------------------------------
// collaborators
// ---------------------------------------------------------------------------

type mockAuthority struct {
	mock.Mock
}

func (m *mockAuthority) IsCouponValid(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthority) CouponDiscount(ctx context.Context, code string) (decimal.Decimal, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n notice.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Message
	}
	return out
}

type recordingOrderPublisher struct {
	orders []*domain.Order
	err    error
}

func (r *recordingOrderPublisher) PublishOrderPlaced(_ context.Context, o *domain.Order) error {
	r.orders = append(r.orders, o)
	return r.err
}

type fakeEngine struct {
	calls   int
	query   string
	limit   int
	results []domain.Product
	err     error
}

func (f *fakeEngine) Search(_ context.Context, query string, limit int) ([]domain.Product, error) {
	f.calls++
	f.query = query
	f.limit = limit
	return f.results, f.err
}
