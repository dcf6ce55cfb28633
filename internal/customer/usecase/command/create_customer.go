package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/shop-inventory/internal/customer/domain"
	"github.com/tair/shop-inventory/pkg/logger"
)

// CreateCustomerCommand represents the command to create a customer
type CreateCustomerCommand struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// CreateCustomerHandler handles customer creation command
type CreateCustomerHandler struct {
	repo domain.CustomerRepository
}

// NewCreateCustomerHandler creates a new create customer handler
func NewCreateCustomerHandler(repo domain.CustomerRepository) *CreateCustomerHandler {
	return &CreateCustomerHandler{repo: repo}
}

// Handle executes the create customer command
func (h *CreateCustomerHandler) Handle(ctx context.Context, cmd CreateCustomerCommand) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:    strings.TrimSpace(cmd.Name),
		Phone:   cmd.Phone,
		Email:   cmd.Email,
		Address: cmd.Address,
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, customer); err != nil {
		logger.Error(ctx).Err(err).Str("name", customer.Name).Msg("Failed to create customer")
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logger.Info(ctx).Uint("customer_id", customer.ID).Msg("Customer created")
	return customer, nil
}
