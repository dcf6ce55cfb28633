package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	"github.com/tair/shop-inventory/internal/repair/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// CreateRepairCommand represents the command to open a repair job
type CreateRepairCommand struct {
	CustomerID    uint
	Description   string
	ServiceCharge decimal.Decimal
	CreatedBy     string
}

// CreateRepairHandler handles create repair command
type CreateRepairHandler struct {
	repairs   domain.RepairRepository
	customers CustomerGetter
}

// NewCreateRepairHandler creates a new create repair handler
func NewCreateRepairHandler(repairs domain.RepairRepository, customers CustomerGetter) *CreateRepairHandler {
	return &CreateRepairHandler{repairs: repairs, customers: customers}
}

// Handle executes the create repair command
func (h *CreateRepairHandler) Handle(ctx context.Context, cmd CreateRepairCommand) (*domain.RepairTask, error) {
	repair := &domain.RepairTask{
		CustomerID:    cmd.CustomerID,
		Description:   strings.TrimSpace(cmd.Description),
		Status:        domain.StatusPending,
		ServiceCharge: cmd.ServiceCharge,
		CreatedBy:     cmd.CreatedBy,
	}
	if err := repair.Validate(); err != nil {
		return nil, err
	}
	if _, err := h.customers.Handle(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}
	repair.Recalculate()

	if err := h.repairs.Create(ctx, repair); err != nil {
		logger.Error(ctx).Err(err).Uint("customer_id", cmd.CustomerID).Msg("Failed to create repair")
		return nil, fmt.Errorf("failed to create repair: %w", err)
	}

	logger.Info(ctx).Uint("repair_id", repair.ID).Msg("Repair created")
	return repair, nil
}

// AddPartCommand represents the command to use stock on a repair
type AddPartCommand struct {
	RepairID  uint
	ProductID uint
	Quantity  int
}

// AddPartHandler takes parts from the store and bills them on the repair at
// the product's selling price.
type AddPartHandler struct {
	tx      *database.Transactor
	repairs domain.RepairRepository
	consume StockConsumer
}

// NewAddPartHandler creates a new add part handler
func NewAddPartHandler(tx *database.Transactor, repairs domain.RepairRepository, consume StockConsumer) *AddPartHandler {
	return &AddPartHandler{tx: tx, repairs: repairs, consume: consume}
}

// Handle executes the add part command
func (h *AddPartHandler) Handle(ctx context.Context, cmd AddPartCommand) (*domain.RepairTask, error) {
	ctx, span := tracing.Start(ctx, tracerName, "repair.add_part",
		attribute.Int("repair.id", int(cmd.RepairID)),
		attribute.Int("product.id", int(cmd.ProductID)),
		attribute.Int("quantity", cmd.Quantity),
	)
	defer span.End()

	if cmd.Quantity <= 0 {
		return nil, tracing.Fail(span, apperr.Validation("quantity must be positive"))
	}

	var repair *domain.RepairTask
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := openRepair(ctx, h.repairs, cmd.RepairID)
		if err != nil {
			return err
		}

		res, err := h.consume.Handle(ctx, invcommand.ConsumeStockCommand{
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
			From:      invdomain.LocationStore,
			Reference: repairReference(r.ID),
			Note:      "repair part",
		})
		if err != nil {
			return err
		}

		part := domain.RepairPart{
			RepairID:    r.ID,
			ProductID:   res.Product.ID,
			ProductName: res.Product.Name,
			Quantity:    cmd.Quantity,
			UnitPrice:   res.Product.SellingPrice,
			Subtotal:    res.Product.SellingPrice.Mul(decimal.NewFromInt(int64(cmd.Quantity))),
		}
		if err := h.repairs.AddPart(ctx, &part); err != nil {
			return err
		}
		r.Parts = append(r.Parts, part)
		r.Recalculate()
		repair = r
		return h.repairs.Update(ctx, r)
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logger.Warn(ctx).Err(err).Uint("repair_id", cmd.RepairID).Msg("Failed to add repair part")
		return nil, fmt.Errorf("failed to add part: %w", err)
	}

	logger.Info(ctx).
		Uint("repair_id", repair.ID).
		Uint("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Msg("Repair part added")
	return repair, err
}

// RemovePartCommand represents the command to take a part off a repair
type RemovePartCommand struct {
	RepairID uint
	PartID   uint
}

// RemovePartHandler returns a part's stock to the store and drops it from
// the bill.
type RemovePartHandler struct {
	tx      *database.Transactor
	repairs domain.RepairRepository
	receive StockReceiver
}

// NewRemovePartHandler creates a new remove part handler
func NewRemovePartHandler(tx *database.Transactor, repairs domain.RepairRepository, receive StockReceiver) *RemovePartHandler {
	return &RemovePartHandler{tx: tx, repairs: repairs, receive: receive}
}

// Handle executes the remove part command
func (h *RemovePartHandler) Handle(ctx context.Context, cmd RemovePartCommand) (*domain.RepairTask, error) {
	ctx, span := tracing.Start(ctx, tracerName, "repair.remove_part",
		attribute.Int("repair.id", int(cmd.RepairID)),
		attribute.Int("part.id", int(cmd.PartID)),
	)
	defer span.End()

	var repair *domain.RepairTask
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := openRepair(ctx, h.repairs, cmd.RepairID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range r.Parts {
			if r.Parts[i].ID == cmd.PartID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperr.NotFound("repair part", cmd.PartID)
		}
		part := r.Parts[idx]

		_, err = h.receive.Handle(ctx, invcommand.ReceiveStockCommand{
			ProductID:     part.ProductID,
			StoreQuantity: part.Quantity,
			Reference:     repairReference(r.ID),
			Note:          "repair part returned",
		})
		if err != nil {
			return err
		}
		if err := h.repairs.DeletePart(ctx, part.ID); err != nil {
			return err
		}

		r.Parts = append(r.Parts[:idx], r.Parts[idx+1:]...)
		r.Recalculate()
		repair = r
		return h.repairs.Update(ctx, r)
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		return nil, fmt.Errorf("failed to remove part: %w", err)
	}

	logger.Info(ctx).Uint("repair_id", repair.ID).Uint("part_id", cmd.PartID).Msg("Repair part removed")
	return repair, err
}

// SetServiceChargeCommand represents the command to set the labour charge
type SetServiceChargeCommand struct {
	RepairID uint
	Amount   decimal.Decimal
}

// SetServiceChargeHandler handles set service charge command
type SetServiceChargeHandler struct {
	tx      *database.Transactor
	repairs domain.RepairRepository
}

// NewSetServiceChargeHandler creates a new set service charge handler
func NewSetServiceChargeHandler(tx *database.Transactor, repairs domain.RepairRepository) *SetServiceChargeHandler {
	return &SetServiceChargeHandler{tx: tx, repairs: repairs}
}

// Handle executes the set service charge command
func (h *SetServiceChargeHandler) Handle(ctx context.Context, cmd SetServiceChargeCommand) (*domain.RepairTask, error) {
	if cmd.Amount.IsNegative() {
		return nil, apperr.Validation("service charge cannot be negative")
	}

	var repair *domain.RepairTask
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := openRepair(ctx, h.repairs, cmd.RepairID)
		if err != nil {
			return err
		}
		r.ServiceCharge = cmd.Amount
		r.Recalculate()
		repair = r
		return h.repairs.Update(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set service charge: %w", err)
	}
	return repair, nil
}

// UpdateStatusCommand represents the command to advance a repair
type UpdateStatusCommand struct {
	RepairID uint
	Status   string
}

// UpdateStatusHandler handles update status command
type UpdateStatusHandler struct {
	tx      *database.Transactor
	repairs domain.RepairRepository
	now     func() time.Time
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(tx *database.Transactor, repairs domain.RepairRepository) *UpdateStatusHandler {
	return &UpdateStatusHandler{tx: tx, repairs: repairs, now: time.Now}
}

// Handle executes the update status command
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.RepairTask, error) {
	var repair *domain.RepairTask
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := h.repairs.FindByID(ctx, cmd.RepairID)
		if err != nil {
			return err
		}
		if err := r.SetStatus(cmd.Status, h.now()); err != nil {
			return err
		}
		repair = r
		return h.repairs.Update(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update repair status: %w", err)
	}

	logger.Info(ctx).Uint("repair_id", repair.ID).Str("status", repair.Status).Msg("Repair status updated")
	return repair, nil
}

func openRepair(ctx context.Context, repairs domain.RepairRepository, id uint) (*domain.RepairTask, error) {
	r, err := repairs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.IsClosed() {
		return nil, apperr.Validation("repair %d is completed", r.ID)
	}
	return r, nil
}

func repairReference(id uint) string {
	return fmt.Sprintf("repair-%d", id)
}
