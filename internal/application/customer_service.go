package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/auth"
	"github.com/gason-app/service-booking/internal/domain"
	customerDomain "github.com/gason-app/service-booking/internal/domain/customer"
)

// RegisterRequest holds the data for registering a new customer.
type RegisterRequest struct {
	Phone    string `json:"phone" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// UpdateProfileRequest holds editable profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// CustomerDTO is the response representation of a customer.
type CustomerDTO struct {
	Phone     string    `json:"phone"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResultDTO carries the customer profile together with a session token.
type AuthResultDTO struct {
	Customer CustomerDTO `json:"customer"`
	Token    string      `json:"token"`
}

// CustomerService manages customer registration, login and profiles. Login is
// phone-based: the OTP check happens upstream at the gateway, this service
// trusts the verified phone number it receives.
type CustomerService struct {
	customers  customerDomain.Repository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customers customerDomain.Repository, jwtManager *auth.JWTManager, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, jwtManager: jwtManager, logger: logger}
}

// Register creates a customer profile and issues a session token.
func (s *CustomerService) Register(ctx context.Context, req RegisterRequest) (*AuthResultDTO, error) {
	cust, err := customerDomain.NewCustomer(req.Phone, req.FullName, req.Email, req.Address)
	if err != nil {
		return nil, err
	}

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(cust.Phone(), string(cust.Role()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer registered", zap.String("phone", cust.Phone()))

	return &AuthResultDTO{Customer: toCustomerDTO(cust), Token: token}, nil
}

// Login issues a session token for an existing customer.
func (s *CustomerService) Login(ctx context.Context, phone string) (*AuthResultDTO, error) {
	cust, err := s.customers.FindByPhone(ctx, phone)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, domain.NewNotAuthenticatedError("no account for this phone number")
		}
		return nil, err
	}

	token, err := s.jwtManager.Generate(cust.Phone(), string(cust.Role()))
	if err != nil {
		return nil, err
	}

	return &AuthResultDTO{Customer: toCustomerDTO(cust), Token: token}, nil
}

// GetProfile retrieves the session customer's profile.
func (s *CustomerService) GetProfile(ctx context.Context, sess Session) (*CustomerDTO, error) {
	if sess.Phone == "" {
		return nil, domain.NewNotAuthenticatedError("login is required")
	}

	cust, err := s.customers.FindByPhone(ctx, sess.Phone)
	if err != nil {
		return nil, err
	}

	dto := toCustomerDTO(cust)
	return &dto, nil
}

// UpdateProfile updates the session customer's editable profile fields.
func (s *CustomerService) UpdateProfile(ctx context.Context, sess Session, req UpdateProfileRequest) (*CustomerDTO, error) {
	cust, err := s.customers.FindByPhone(ctx, sess.Phone)
	if err != nil {
		return nil, err
	}

	if err := cust.UpdateProfile(req.FullName, req.Email, req.Address); err != nil {
		return nil, err
	}

	if err := s.customers.Update(ctx, cust); err != nil {
		return nil, err
	}

	dto := toCustomerDTO(cust)
	return &dto, nil
}

func toCustomerDTO(cust *customerDomain.Customer) CustomerDTO {
	return CustomerDTO{
		Phone:     cust.Phone(),
		FullName:  cust.FullName(),
		Email:     cust.Email(),
		Address:   cust.Address(),
		Role:      string(cust.Role()),
		CreatedAt: cust.CreatedAt(),
	}
}
