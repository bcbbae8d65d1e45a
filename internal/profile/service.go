package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProfileDto represents profile data exchanged with clients.
type ProfileDto struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// AddressDto represents a saved address returned to clients.
type AddressDto struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	Recipient  string    `json:"recipient"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	Region     string    `json:"region,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
}

// CreateAddressDto represents the payload for saving a new address.
type CreateAddressDto struct {
	Label      string `json:"label"       validate:"required"`
	Recipient  string `json:"recipient"   validate:"required"`
	Line1      string `json:"line1"       validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city"        validate:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country"     validate:"required,len=2"`
}

// Service defines the business operations for profiles and addresses.
type Service interface {
	// GetProfile returns the user's profile, or an empty one if never saved.
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDto, error)
	SaveProfile(ctx context.Context, userID uuid.UUID, dto ProfileDto) (*ProfileDto, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDto, error)
	AddAddress(ctx context.Context, userID uuid.UUID, dto CreateAddressDto) (*AddressDto, error)
	// UpdateAddress replaces an address's fields, keeping its default flag.
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, dto CreateAddressDto) (*AddressDto, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type profileService struct {
	store    Store
	validate *validator.Validate
}

// NewService creates a new profile service instance with the provided store.
func NewService(store Store) Service {
	return &profileService{store: store, validate: validator.New()}
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDto, error) {
	pr, err := s.store.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return &ProfileDto{}, nil
		}
		return nil, err
	}
	return &ProfileDto{
		FirstName: pr.FirstName,
		LastName:  pr.LastName,
		Phone:     pr.Phone,
		AvatarURL: pr.AvatarURL,
	}, nil
}

func (s *profileService) SaveProfile(ctx context.Context, userID uuid.UUID, dto ProfileDto) (*ProfileDto, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	saved, err := s.store.UpsertProfile(ctx, UpsertProfileParams{
		UserID:    userID,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Phone:     dto.Phone,
		AvatarURL: dto.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	return &ProfileDto{
		FirstName: saved.FirstName,
		LastName:  saved.LastName,
		Phone:     saved.Phone,
		AvatarURL: saved.AvatarURL,
	}, nil
}

func (s *profileService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDto, error) {
	addresses, err := s.store.FindAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressDto, 0, len(addresses))
	for i := range addresses {
		out = append(out, toAddressDto(&addresses[i]))
	}
	return out, nil
}

func (s *profileService) AddAddress(ctx context.Context, userID uuid.UUID, dto CreateAddressDto) (*AddressDto, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	created, err := s.store.CreateAddress(ctx, CreateAddressParams{
		UserID:     userID,
		Label:      dto.Label,
		Recipient:  dto.Recipient,
		Line1:      dto.Line1,
		Line2:      dto.Line2,
		City:       dto.City,
		Region:     dto.Region,
		PostalCode: dto.PostalCode,
		Country:    dto.Country,
	})
	if err != nil {
		return nil, err
	}
	out := toAddressDto(created)
	return &out, nil
}

func (s *profileService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, dto CreateAddressDto) (*AddressDto, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	updated, err := s.store.UpdateAddress(ctx, UpdateAddressParams{
		ID:         addressID,
		UserID:     userID,
		Label:      dto.Label,
		Recipient:  dto.Recipient,
		Line1:      dto.Line1,
		Line2:      dto.Line2,
		City:       dto.City,
		Region:     dto.Region,
		PostalCode: dto.PostalCode,
		Country:    dto.Country,
	})
	if err != nil {
		return nil, err
	}
	out := toAddressDto(updated)
	return &out, nil
}

func (s *profileService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.store.DeleteAddress(ctx, userID, addressID)
}

func (s *profileService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.store.SetDefaultAddress(ctx, userID, addressID)
}

func toAddressDto(a *Address) AddressDto {
	return AddressDto{
		ID:         a.ID,
		Label:      a.Label,
		Recipient:  a.Recipient,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}
