package customer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service defines customer directory business logic.
type Service interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	AccrueLoyalty(ctx context.Context, id string, points int) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	c := &Customer{
		ID:    uuid.New(),
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.List(ctx)
}

func (s *service) AccrueLoyalty(ctx context.Context, id string, points int) error {
	if points < 0 {
		return fmt.Errorf("loyalty points must not be negative")
	}
	if points == 0 {
		return nil
	}
	return s.repo.AddLoyaltyPoints(ctx, id, points)
}
