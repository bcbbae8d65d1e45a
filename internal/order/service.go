package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/cart"
	"github.com/kutuku/marketplace/pkg/messaging"
	"github.com/kutuku/marketplace/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// StatusPending is the status every new order starts in.
const StatusPending = "pending"

// PaymentStatusUnpaid is the payment status every new order starts in.
const PaymentStatusUnpaid = "unpaid"

// CartSource yields the signed-in user's cart for checkout.
type CartSource interface {
	UserCart(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
}

// OrderService defines the methods for managing orders.
// It abstracts the underlying business logic and data access.
type OrderService interface {
	// CreateFromCart places an order from everything currently in the user's
	// cart, shipping to the given address, and empties the cart. Returns
	// ErrEmptyCart when there is nothing to buy.
	CreateFromCart(ctx context.Context, userID uuid.UUID, address ShippingAddressDto) (*OrderDto, error)

	// FindByID retrieves a single order by its unique identifier.
	// Returns ErrOrderNotFound if no order exists with the given ID;
	// ErrAccessDenied if it belongs to another user.
	FindByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*OrderDto, error)

	// FindOrdersByUserID returns all available orders for a specific user.
	// Returns an empty slice if no orders exist.
	FindOrdersByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDto, error)

	// UpdateStatus changes an order's status. Intended for the shop dashboard;
	// ownership is not checked here.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int32) (*OrderDto, error)
}

// Service implements OrderService and provides methods to manage orders.
type Service struct {
	orderStore    OrderStore
	carts         CartSource
	publisher     messaging.Publisher
	validate      *validator.Validate
	logger        *slog.Logger
	ordersCounter metric.Int64Counter
	now           func() time.Time
}

// NewService creates a new instance of OrderService with the provided orderStore.
func NewService(orderStore OrderStore, carts CartSource, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("marketplace")
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &Service{
		orderStore:    orderStore,
		carts:         carts,
		publisher:     publisher,
		validate:      validator.New(),
		logger:        logger.With("component", "order_service"),
		ordersCounter: ordersCounter,
		now:           time.Now,
	}
}

// OrderDto represents the data transfer object for an order.
// Version is read-only and used for optimistic concurrency control.
type OrderDto struct {
	ID              uuid.UUID          `json:"id"`
	Number          string             `json:"number"`
	UserID          uuid.UUID          `json:"user_id"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	TotalPrice      int64              `json:"total_price"`
	ShippingAddress ShippingAddressDto `json:"shipping_address"`
	Version         int32              `json:"version"`
	CreatedAt       string             `json:"created_at"`
	Items           []OrderItemDto     `json:"items,omitempty"`
}

// ShippingAddressDto is the delivery destination submitted at checkout.
type ShippingAddressDto struct {
	Recipient  string `json:"recipient"   validate:"required"`
	Line1      string `json:"line1"       validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"        validate:"required"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country"     validate:"required,len=2"`
	Phone      string `json:"phone,omitempty"`
}

type OrderItemDto struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ShopID       uuid.UUID `json:"shop_id"`
	ProductName  string    `json:"product_name"`
	ImageURL     string    `json:"image_url"`
	Color        string    `json:"color,omitempty"`
	Size         string    `json:"size,omitempty"`
	Quantity     int32     `json:"quantity"`
	PricePerItem int64     `json:"price_per_item"`
	Price        int64     `json:"price"`
}

// CreateFromCart snapshots the cart lines into order items, persists the
// order, empties the cart and announces the order on the bus.
func (s *Service) CreateFromCart(ctx context.Context, userID uuid.UUID, address ShippingAddressDto) (*OrderDto, error) {
	if err := s.validate.Struct(address); err != nil {
		return nil, fmt.Errorf("shipping address validation failed: %w", err)
	}
	userCart, err := s.carts.UserCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	lines := userCart.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var totalPrice int64
	orderItems := make([]CreateOrderItemParams, 0, len(lines))
	for _, line := range lines {
		unit := line.Product.UnitPrice()
		price := unit * int64(line.Quantity)
		orderItems = append(orderItems, CreateOrderItemParams{
			ProductID:    line.Product.ID,
			ShopID:       line.Product.ShopID,
			ProductName:  line.Product.Name,
			ImageURL:     line.Product.ImageURL,
			Color:        line.Color,
			Size:         line.Size,
			Quantity:     line.Quantity,
			PricePerItem: unit,
			Price:        price,
		})
		totalPrice += price
	}

	orderParams := CreateOrderParams{
		Number:        fmt.Sprintf("ORD-%d", s.now().UnixMilli()),
		UserID:        userID,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		TotalPrice:    totalPrice,
		ShippingAddress: ShippingAddress{
			Recipient:  address.Recipient,
			Line1:      address.Line1,
			Line2:      address.Line2,
			City:       address.City,
			Region:     address.Region,
			PostalCode: address.PostalCode,
			Country:    address.Country,
			Phone:      address.Phone,
		},
	}
	created, items, err := s.orderStore.CreateOrder(ctx, orderParams, orderItems)
	if err != nil {
		return nil, err
	}

	// The order stands even if the cart fails to clear; the next cart read
	// will retry persistence.
	if err := userCart.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear cart after checkout", "order_id", created.ID, "error", err)
	}

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.OrderCreatedEvent{
		Carrier:     carrier,
		OrderID:     created.ID,
		OrderNumber: created.Number,
		UserID:      created.UserID,
		TotalPrice:  created.TotalPrice,
		CreatedAt:   created.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "order_id", created.ID, "error", err)
	}
	// increase the number of created orders
	s.ordersCounter.Add(ctx, 1)

	return toDto(created, items), nil
}

// FindByID retrieves an order by its ID and returns it as an OrderDto.
func (s *Service) FindByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*OrderDto, error) {
	order, items, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	} else if order != nil && order.UserID != userID {
		return nil, ErrAccessDenied
	}
	return toDto(order, items), nil
}

// FindOrdersByUserID retrieves the user's order history, newest first.
func (s *Service) FindOrdersByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDto, error) {
	orders, err := s.orderStore.FindOrdersByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]OrderDto, len(orders))
	for i := range orders {
		dtos[i] = *toDto(&orders[i], nil)
	}
	return dtos, nil
}

// UpdateStatus changes an order's status with optimistic locking.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int32) (*OrderDto, error) {
	updated, err := s.orderStore.Update(ctx, UpdateOrderParams{ID: id, Status: status, Version: version})
	if err != nil {
		return nil, err
	}
	return toDto(updated, nil), nil
}

// toDto converts a stored order to an OrderDto.
func toDto(order *Order, items []OrderItem) *OrderDto {
	if order == nil {
		return nil
	}
	var itemsDto []OrderItemDto
	if items != nil {
		itemsDto = make([]OrderItemDto, 0, len(items))
		for _, item := range items {
			itemsDto = append(itemsDto, OrderItemDto{
				ID:           item.ID,
				ProductID:    item.ProductID,
				ShopID:       item.ShopID,
				ProductName:  item.ProductName,
				ImageURL:     item.ImageURL,
				Color:        item.Color,
				Size:         item.Size,
				Quantity:     item.Quantity,
				PricePerItem: item.PricePerItem,
				Price:        item.Price,
			})
		}
	}
	return &OrderDto{
		ID:            order.ID,
		Number:        order.Number,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalPrice:    order.TotalPrice,
		ShippingAddress: ShippingAddressDto{
			Recipient:  order.ShippingAddress.Recipient,
			Line1:      order.ShippingAddress.Line1,
			Line2:      order.ShippingAddress.Line2,
			City:       order.ShippingAddress.City,
			Region:     order.ShippingAddress.Region,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
			Phone:      order.ShippingAddress.Phone,
		},
		Version:   order.Version,
		CreatedAt: order.CreatedAt.Format(time.RFC3339),
		Items:     itemsDto,
	}
}
