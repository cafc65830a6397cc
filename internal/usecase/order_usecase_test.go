package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/upi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{6}-[0-9A-Z]{6}$`)

func newOrderUsecaseForTest(orders *OrderRepoMock, items *OrderItemRepoMock, products *ProductRepoMock, cart *CartStoreMock) *OrderUsecase {
	tx := &TxManagerMock{Repos: &TxReposStub{
		orders:     orders,
		orderItems: items,
		products:   products,
	}}
	return NewOrderUsecase(tx, cart, upi.NewBuilder("shop@upi", "Digital Shop"), zap.NewNop())
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	cart := &CartStoreMock{}
	cart.On("Get", mock.Anything, mock.Anything).Return([]int64{}, nil)

	uc := newOrderUsecaseForTest(&OrderRepoMock{}, &OrderItemRepoMock{}, &ProductRepoMock{}, cart)

	_, err := uc.CreateOrder(context.Background(), 10, "user@example.com")

	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "cart is empty", he.Message)
	cart.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// カートに入れた後で非公開になった商品はチェックアウトから落ちる
func TestCreateOrder_FiltersInactiveProducts(t *testing.T) {
	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}

	cart := &CartStoreMock{}
	cart.On("Get", mock.Anything, owner).Return([]int64{1, 2}, nil)
	cart.On("Clear", mock.Anything, owner).Return(nil)

	products := &ProductRepoMock{}
	//商品2は非公開になっているので返ってこない
	products.On("FindActiveByIDs", mock.Anything, []int64{1, 2}).Return([]model.Product{
		{ID: 1, Title: "Go Patterns (ebook)", Price: 10000, FileRef: "ebooks/go-patterns.pdf", IsActive: true},
	}, nil)

	orders := &OrderRepoMock{}
	var createdOrder model.Order
	orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		createdOrder = args.Get(1).(model.Order)
	}).Return(int64(77), nil)

	items := &OrderItemRepoMock{}
	var createdItems []model.OrderItem
	items.On("CreateBulk", mock.Anything, int64(77), mock.Anything).Run(func(args mock.Arguments) {
		createdItems = args.Get(2).([]model.OrderItem)
	}).Return(nil)

	uc := newOrderUsecaseForTest(orders, items, products, cart)

	out, err := uc.CreateOrder(context.Background(), 10, "user@example.com")
	require.NoError(t, err)

	//合計は公開中の商品だけのスナップショット合計
	assert.Equal(t, int64(10000), createdOrder.TotalAmount)
	assert.Equal(t, model.PaymentStatusPending, createdOrder.PaymentStatus)
	assert.Regexp(t, orderNumberPattern, createdOrder.OrderNumber)

	require.Len(t, createdItems, 1)
	assert.Equal(t, int64(1), createdItems[0].ProductID)
	assert.Equal(t, int64(10000), createdItems[0].ProductPriceSnapshot)
	assert.Equal(t, model.DefaultDownloadLimit, createdItems[0].DownloadLimit)
	assert.Equal(t, int64(0), createdItems[0].DownloadCount)
	assert.Nil(t, createdItems[0].ExpiresAt)

	//支払いリクエストが付いてくる（100.00ルピー）
	require.NotNil(t, out.Payment)
	assert.Equal(t, "100.00", out.Payment.Amount)
	assert.Contains(t, out.Payment.UpiLink, "upi://pay?")

	cart.AssertCalled(t, "Clear", mock.Anything, owner)
}

func TestCreateOrder_NoValidProducts(t *testing.T) {
	cart := &CartStoreMock{}
	cart.On("Get", mock.Anything, mock.Anything).Return([]int64{1, 2}, nil)

	products := &ProductRepoMock{}
	products.On("FindActiveByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)

	uc := newOrderUsecaseForTest(&OrderRepoMock{}, &OrderItemRepoMock{}, products, cart)

	_, err := uc.CreateOrder(context.Background(), 10, "user@example.com")

	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "no valid products", he.Message)

	//失敗したらカートは残す
	cart.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 注文番号が衝突したら番号を作り直してリトライする
func TestCreateOrder_RetriesOnOrderNumberCollision(t *testing.T) {
	cart := &CartStoreMock{}
	cart.On("Get", mock.Anything, mock.Anything).Return([]int64{1}, nil)
	cart.On("Clear", mock.Anything, mock.Anything).Return(nil)

	products := &ProductRepoMock{}
	products.On("FindActiveByIDs", mock.Anything, mock.Anything).Return([]model.Product{
		{ID: 1, Title: "Template Pack", Price: 4900, FileRef: "templates/pack.zip", IsActive: true},
	}, nil)

	orders := &OrderRepoMock{}
	var numbers []string
	orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		numbers = append(numbers, args.Get(1).(model.Order).OrderNumber)
	}).Return(int64(0), gorm.ErrDuplicatedKey).Once()
	orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		numbers = append(numbers, args.Get(1).(model.Order).OrderNumber)
	}).Return(int64(5), nil).Once()

	items := &OrderItemRepoMock{}
	items.On("CreateBulk", mock.Anything, int64(5), mock.Anything).Return(nil)

	uc := newOrderUsecaseForTest(orders, items, products, cart)

	out, err := uc.CreateOrder(context.Background(), 10, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Order.ID)

	require.Len(t, numbers, 2)
	assert.NotEqual(t, numbers[0], numbers[1])
}

func TestCreateOrder_CartKeptOnPersistFailure(t *testing.T) {
	cart := &CartStoreMock{}
	cart.On("Get", mock.Anything, mock.Anything).Return([]int64{1}, nil)

	products := &ProductRepoMock{}
	products.On("FindActiveByIDs", mock.Anything, mock.Anything).Return([]model.Product{
		{ID: 1, Title: "Course", Price: 100, FileRef: "courses/intro.zip", IsActive: true},
	}, nil)

	orders := &OrderRepoMock{}
	orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	uc := newOrderUsecaseForTest(orders, &OrderItemRepoMock{}, products, cart)

	_, err := uc.CreateOrder(context.Background(), 10, "user@example.com")

	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	cart.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestSubmitUTR_ValidatesLength(t *testing.T) {
	uc := newOrderUsecaseForTest(&OrderRepoMock{}, &OrderItemRepoMock{}, &ProductRepoMock{}, &CartStoreMock{})

	for _, utr := range []string{"", "1234", string(make([]byte, 51))} {
		err := uc.SubmitUTR(context.Background(), 10, 1, SubmitUTRInput{UTRNumber: utr})
		he, ok := AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Status)
		assert.Equal(t, "invalid utr_number", he.Message)
	}
}

func TestSubmitUTR_Success(t *testing.T) {
	orders := &OrderRepoMock{}
	orders.On("SubmitUTR", mock.Anything, int64(1), int64(10), "UTR123456").Return(nil)

	uc := newOrderUsecaseForTest(orders, &OrderItemRepoMock{}, &ProductRepoMock{}, &CartStoreMock{})

	err := uc.SubmitUTR(context.Background(), 10, 1, SubmitUTRInput{UTRNumber: "  UTR123456  "})
	require.NoError(t, err)
	orders.AssertExpectations(t)
}

// 無い・他人の・PENDING以外は区別せず404
func TestSubmitUTR_NotPendingOrNotOwned(t *testing.T) {
	orders := &OrderRepoMock{}
	orders.On("SubmitUTR", mock.Anything, int64(1), int64(10), "UTR123456").Return(repo.ErrNotFound)

	uc := newOrderUsecaseForTest(orders, &OrderItemRepoMock{}, &ProductRepoMock{}, &CartStoreMock{})

	err := uc.SubmitUTR(context.Background(), 10, 1, SubmitUTRInput{UTRNumber: "UTR123456"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, "not found", he.Message)
}

func TestGetMyOrderDetail_PendingIncludesPaymentRequest(t *testing.T) {
	orders := &OrderRepoMock{}
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:            1,
		OrderNumber:   "ORD-202608-ABC123",
		UserID:        10,
		TotalAmount:   12345,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusPending,
	}, nil)

	items := &OrderItemRepoMock{}
	items.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	uc := newOrderUsecaseForTest(orders, items, &ProductRepoMock{}, &CartStoreMock{})

	out, err := uc.GetMyOrderDetail(context.Background(), 10, 1)
	require.NoError(t, err)
	require.NotNil(t, out.Payment)
	assert.Equal(t, "123.45", out.Payment.Amount)
	assert.Equal(t, "ORD-202608-ABC123", out.Payment.OrderNumber)
}

func TestGetMyOrderDetail_VerifiedHasNoPaymentRequest(t *testing.T) {
	orders := &OrderRepoMock{}
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:            1,
		OrderNumber:   "ORD-202608-ABC123",
		UserID:        10,
		TotalAmount:   12345,
		PaymentStatus: model.PaymentStatusVerified,
		Status:        model.OrderStatusCompleted,
	}, nil)

	items := &OrderItemRepoMock{}
	items.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	uc := newOrderUsecaseForTest(orders, items, &ProductRepoMock{}, &CartStoreMock{})

	out, err := uc.GetMyOrderDetail(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Nil(t, out.Payment)
}

// 他人の注文は「存在しない扱い」
func TestGetMyOrderDetail_OtherUsersOrderHidden(t *testing.T) {
	orders := &OrderRepoMock{}
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		UserID: 99,
	}, nil)

	uc := newOrderUsecaseForTest(orders, &OrderItemRepoMock{}, &ProductRepoMock{}, &CartStoreMock{})

	_, err := uc.GetMyOrderDetail(context.Background(), 10, 1)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}
