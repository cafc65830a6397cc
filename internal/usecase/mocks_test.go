package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type TxReposStub struct {
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	products     repo.ProductRepository
	downloadLogs repo.DownloadLogRepository
	auditLogs    repo.AuditLogRepository
}

func (r *TxReposStub) Orders() repo.OrderRepository             { return r.orders }
func (r *TxReposStub) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *TxReposStub) Products() repo.ProductRepository         { return r.products }
func (r *TxReposStub) DownloadLogs() repo.DownloadLogRepository { return r.downloadLogs }
func (r *TxReposStub) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) SubmitUTR(ctx context.Context, orderID int64, userID int64, utr string) error {
	args := m.Called(ctx, orderID, userID, utr)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkVerified(ctx context.Context, orderID int64, paidAt time.Time) error {
	args := m.Called(ctx, orderID, paidAt)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkRejected(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	args := m.Called(ctx, itemID)
	it, _ := args.Get(0).(model.OrderItem)
	return it, args.Error(1)
}

func (m *OrderItemRepoMock) SetExpiry(ctx context.Context, itemID int64, expiresAt time.Time) error {
	args := m.Called(ctx, itemID, expiresAt)
	return args.Error(0)
}

func (m *OrderItemRepoMock) IncrementDownloadCount(ctx context.Context, itemID int64, now time.Time) error {
	args := m.Called(ctx, itemID, now)
	return args.Error(0)
}

func (m *OrderItemRepoMock) CacheDownloadURL(ctx context.Context, itemID int64, url string) error {
	args := m.Called(ctx, itemID, url)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListEntitledByUserID(ctx context.Context, userID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindActiveByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) IncrementDownloadCount(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type DownloadLogRepoMock struct{ mock.Mock }

func (m *DownloadLogRepoMock) Create(ctx context.Context, log model.DownloadLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) Get(ctx context.Context, owner repo.CartOwner) ([]int64, error) {
	args := m.Called(ctx, owner)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *CartStoreMock) Add(ctx context.Context, owner repo.CartOwner, productID int64) (int, error) {
	args := m.Called(ctx, owner, productID)
	return args.Int(0), args.Error(1)
}

func (m *CartStoreMock) Remove(ctx context.Context, owner repo.CartOwner, productID int64) (int, error) {
	args := m.Called(ctx, owner, productID)
	return args.Int(0), args.Error(1)
}

func (m *CartStoreMock) Clear(ctx context.Context, owner repo.CartOwner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}
