package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub is an in-memory order store with the same conditional
// transition semantics as the real repository, so state-machine tests observe
// realistic compare-and-swap behaviour. Function overrides take precedence.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	ByID   map[int64]*model.Order
	Lines  map[int64][]model.OrderLine
	Next   int64
	Refund map[int64]*model.Refund

	GetByIDFn        func(context.Context, int64) (*model.Order, error)
	ListFn           func(context.Context, repository.OrderFilter) ([]model.Order, error)
	UpdateShippingFn func(context.Context, int64, repository.ShippingUpdate) error
	SetSessionFn     func(context.Context, int64, string, string) error
	MarkCancelledFn  func(context.Context, int64, *model.Refund) error
	ApproveFn        func(context.Context, int64, string) error

	ListCalls    []repository.OrderFilter
	ApproveCalls []string
}

// NewOrderRepositoryStub constructs stub with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		ByID:   make(map[int64]*model.Order),
		Lines:  make(map[int64][]model.OrderLine),
		Refund: make(map[int64]*model.Refund),
		Next:   1,
	}
}

// Seed stores an order (and optional lines) directly, assigning an id when absent.
func (s *OrderRepositoryStub) Seed(order model.Order, lines ...model.OrderLine) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.Next
		s.Next++
	} else if order.ID >= s.Next {
		s.Next = order.ID + 1
	}
	stored := order
	s.ByID[order.ID] = &stored
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	s.Lines[order.ID] = lines
	return &stored
}

// Get returns a copy of the stored order for assertions.
func (s *OrderRepositoryStub) Get(id int64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.ByID[id]; ok {
		return *order
	}
	return model.Order{}
}

// Create stores order and lines, assigning the next identifier.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *order
	created.ID = s.Next
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.Next++
	stored := created
	s.ByID[created.ID] = &stored
	copied := make([]model.OrderLine, len(lines))
	copy(copied, lines)
	for i := range copied {
		copied[i].ID = int64(i + 1)
		copied[i].OrderID = created.ID
	}
	s.Lines[created.ID] = copied
	return &created, nil
}

// GetByID returns a copy of the stored order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

// LinesByOrder returns stored lines.
func (s *OrderRepositoryStub) LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Lines[orderID], nil
}

// List filters stored orders the way the SQL implementation does.
func (s *OrderRepositoryStub) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	s.ListCalls = append(s.ListCalls, filter)
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.ByID {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.OrderStatus != nil && order.OrderStatus != *filter.OrderStatus {
			continue
		}
		if filter.PaymentStatus != nil && order.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

// UpdateShipping applies a partial update with COALESCE semantics.
func (s *OrderRepositoryStub) UpdateShipping(ctx context.Context, id int64, upd repository.ShippingUpdate) error {
	if s.UpdateShippingFn != nil {
		return s.UpdateShippingFn(ctx, id, upd)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.Name = upd.Name
	order.Phone = upd.Phone
	order.StreetAddress = upd.StreetAddress
	order.City = upd.City
	order.State = upd.State
	order.PostalCode = upd.PostalCode
	if upd.Carrier != nil {
		order.Carrier = *upd.Carrier
	}
	if upd.TrackingNumber != nil {
		order.TrackingNumber = *upd.TrackingNumber
	}
	return nil
}

// SetSession stores the session reference once.
func (s *OrderRepositoryStub) SetSession(ctx context.Context, id int64, sessionID, paymentIntentID string) error {
	if s.SetSessionFn != nil {
		return s.SetSessionFn(ctx, id, sessionID, paymentIntentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.SessionID != nil {
		return domainErrors.ErrAlreadyCheckedOut
	}
	order.SessionID = &sessionID
	if paymentIntentID != "" {
		order.PaymentIntentID = &paymentIntentID
	}
	return nil
}

// TransitionStatus applies a conditional order status change.
func (s *OrderRepositoryStub) TransitionStatus(ctx context.Context, id int64, from []model.OrderStatus, to model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	for _, status := range from {
		if order.OrderStatus == status {
			order.OrderStatus = to
			return nil
		}
	}
	return domainErrors.ErrInvalidTransition
}

// MarkShipped transitions INPROCESS orders into SHIPPED.
func (s *OrderRepositoryStub) MarkShipped(ctx context.Context, id int64, carrier, trackingNumber string, shippedAt time.Time, dueDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.OrderStatus != model.OrderStatusInProcess {
		return domainErrors.ErrInvalidTransition
	}
	order.Carrier = carrier
	order.TrackingNumber = trackingNumber
	order.OrderStatus = model.OrderStatusShipped
	order.ShippingDate = &shippedAt
	if dueDate != nil {
		order.PaymentDueDate = dueDate
	}
	return nil
}

// MarkCancelled finalizes cancellation, recording at most one refund.
func (s *OrderRepositoryStub) MarkCancelled(ctx context.Context, id int64, refund *model.Refund) error {
	if s.MarkCancelledFn != nil {
		return s.MarkCancelledFn(ctx, id, refund)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.OrderStatus == model.OrderStatusCancelled || order.OrderStatus == model.OrderStatusRefunded {
		return domainErrors.ErrInvalidTransition
	}
	if refund != nil {
		if _, exists := s.Refund[id]; exists {
			return domainErrors.ErrInvalidTransition
		}
		s.Refund[id] = refund
	}
	order.OrderStatus = model.OrderStatusCancelled
	order.PaymentStatus = model.PaymentStatusRefunded
	return nil
}

// ApprovePayment settles an unsettled payment.
func (s *OrderRepositoryStub) ApprovePayment(ctx context.Context, id int64, paymentIntentID string) error {
	s.ApproveCalls = append(s.ApproveCalls, paymentIntentID)
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, id, paymentIntentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	switch order.PaymentStatus {
	case model.PaymentStatusApproved:
		return nil
	case model.PaymentStatusPending, model.PaymentStatusDelayed:
	default:
		return domainErrors.ErrInvalidTransition
	}
	if order.PaymentStatus == model.PaymentStatusPending && order.OrderStatus == model.OrderStatusPending {
		order.OrderStatus = model.OrderStatusApproved
	}
	order.PaymentStatus = model.PaymentStatusApproved
	if paymentIntentID != "" {
		order.PaymentIntentID = &paymentIntentID
	}
	return nil
}

// SelectBatchForReconciliation returns unsettled orders with sessions.
func (s *OrderRepositoryStub) SelectBatchForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.ByID {
		if len(result) >= limit {
			break
		}
		if order.SessionID == nil {
			continue
		}
		if order.PaymentStatus != model.PaymentStatusPending && order.PaymentStatus != model.PaymentStatusDelayed {
			continue
		}
		if order.OrderStatus == model.OrderStatusCancelled || order.OrderStatus == model.OrderStatusRefunded {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

// RefundRepositoryStub serves the recorded refunds.
type RefundRepositoryStub struct {
	Items []model.Refund
}

// ListByOrder returns refunds for the order.
func (s *RefundRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.Refund, error) {
	var result []model.Refund
	for _, refund := range s.Items {
		if refund.OrderID == orderID {
			result = append(result, refund)
		}
	}
	return result, nil
}

var _ repository.UserRepository = (*UserRepositoryStub)(nil)
var _ repository.OrderRepository = (*OrderRepositoryStub)(nil)
var _ repository.RefundRepository = (*RefundRepositoryStub)(nil)
