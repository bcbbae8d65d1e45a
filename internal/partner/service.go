package partner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SubmitRequestDto represents the payload of a seller application.
type SubmitRequestDto struct {
	ShopName  string `json:"shop_name"  validate:"required,min=2"`
	OwnerName string `json:"owner_name" validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"    validate:"max=2000"`
}

// RequestDto represents an application returned to the dashboard.
type RequestDto struct {
	ID        uuid.UUID `json:"id"`
	ShopName  string    `json:"shop_name"`
	OwnerName string    `json:"owner_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
}

// Service defines the business operations for partner requests.
type Service interface {
	Submit(ctx context.Context, dto SubmitRequestDto) (*RequestDto, error)
	List(ctx context.Context, offset, limit int32) ([]RequestDto, error)
}

type partnerService struct {
	store    Store
	validate *validator.Validate
}

// NewService creates a new partner service instance with the provided store.
func NewService(store Store) Service {
	return &partnerService{store: store, validate: validator.New()}
}

func (s *partnerService) Submit(ctx context.Context, dto SubmitRequestDto) (*RequestDto, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	created, err := s.store.Create(ctx, CreateRequestParams{
		ShopName:  dto.ShopName,
		OwnerName: dto.OwnerName,
		Email:     dto.Email,
		Phone:     dto.Phone,
		Message:   dto.Message,
	})
	if err != nil {
		return nil, err
	}
	return toDto(created), nil
}

func (s *partnerService) List(ctx context.Context, offset, limit int32) ([]RequestDto, error) {
	requests, err := s.store.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RequestDto, 0, len(requests))
	for i := range requests {
		out = append(out, *toDto(&requests[i]))
	}
	return out, nil
}

func toDto(r *Request) *RequestDto {
	return &RequestDto{
		ID:        r.ID,
		ShopName:  r.ShopName,
		OwnerName: r.OwnerName,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
