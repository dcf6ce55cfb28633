package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/customer/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
)

// UpdateCustomerCommand represents the command to update a customer.
// Loyalty points are only changed through AddLoyaltyPoints.
type UpdateCustomerCommand struct {
	ID      uint
	Name    string
	Phone   string
	Email   string
	Address string
}

// UpdateCustomerHandler handles customer update command
type UpdateCustomerHandler struct {
	tx   *database.Transactor
	repo domain.CustomerRepository
}

// NewUpdateCustomerHandler creates a new update customer handler
func NewUpdateCustomerHandler(tx *database.Transactor, repo domain.CustomerRepository) *UpdateCustomerHandler {
	return &UpdateCustomerHandler{tx: tx, repo: repo}
}

// Handle executes the update customer command
func (h *UpdateCustomerHandler) Handle(ctx context.Context, cmd UpdateCustomerCommand) (*domain.Customer, error) {
	if cmd.ID == 0 {
		return nil, apperr.Validation("invalid customer id")
	}

	var customer *domain.Customer
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := h.repo.FindByID(ctx, cmd.ID)
		if err != nil {
			return err
		}
		c.Name = strings.TrimSpace(cmd.Name)
		c.Phone = cmd.Phone
		c.Email = cmd.Email
		c.Address = cmd.Address
		if err := c.Validate(); err != nil {
			return err
		}
		customer = c
		return h.repo.Update(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	logger.Info(ctx).Uint("customer_id", customer.ID).Msg("Customer updated")
	return customer, nil
}

// AddLoyaltyPointsCommand adjusts a customer's balance. Negative points
// redeem, but the balance never drops below zero.
type AddLoyaltyPointsCommand struct {
	CustomerID uint
	Points     int
}

// AddLoyaltyPointsHandler handles loyalty point adjustments
type AddLoyaltyPointsHandler struct {
	tx   *database.Transactor
	repo domain.CustomerRepository
}

// NewAddLoyaltyPointsHandler creates a new add loyalty points handler
func NewAddLoyaltyPointsHandler(tx *database.Transactor, repo domain.CustomerRepository) *AddLoyaltyPointsHandler {
	return &AddLoyaltyPointsHandler{tx: tx, repo: repo}
}

// Handle executes the command and returns the updated customer. It joins a
// transaction already active in ctx.
func (h *AddLoyaltyPointsHandler) Handle(ctx context.Context, cmd AddLoyaltyPointsCommand) (*domain.Customer, error) {
	var customer *domain.Customer
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := h.repo.FindByID(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		if c.LoyaltyPoints+cmd.Points < 0 {
			return apperr.Validation("customer %d has %d points, cannot redeem %d", c.ID, c.LoyaltyPoints, -cmd.Points)
		}
		if cmd.Points == 0 {
			customer = c
			return nil
		}
		if err := h.repo.AddPoints(ctx, c.ID, cmd.Points); err != nil {
			return err
		}
		c.LoyaltyPoints += cmd.Points
		customer = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add loyalty points: %w", err)
	}

	logger.Debug(ctx).
		Uint("customer_id", customer.ID).
		Int("points", cmd.Points).
		Int("balance", customer.LoyaltyPoints).
		Msg("Loyalty points adjusted")
	return customer, nil
}
