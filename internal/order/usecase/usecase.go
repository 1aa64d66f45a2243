package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arvera/comanda-service/internal/apperr"
	"github.com/arvera/comanda-service/internal/catalog"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/order"
	"github.com/arvera/comanda-service/internal/order/dto"
	"github.com/arvera/comanda-service/internal/stock"
	stockdto "github.com/arvera/comanda-service/internal/stock/dto"
	"github.com/arvera/comanda-service/pkg/logger"
)

const minCancelReasonLen = 5

type orderUseCase struct {
	repo      order.Repository
	catalog   catalog.UseCase
	stock     stock.UseCase
	publisher order.EventPublisher
	logger    logger.ZapLogger
}

func NewOrderUseCase(repo order.Repository, cat catalog.UseCase, stk stock.UseCase, pub order.EventPublisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		catalog:   cat,
		stock:     stk,
		publisher: pub,
		logger:    log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	now := time.Now()

	lines, total, err := uc.buildLines(ctx, orderID, input.Lines)
	if err != nil {
		return nil, err
	}

	// Reserve stock line by line. A failure mid-way releases everything
	// reserved so far: creation is all-or-nothing.
	var reserved []model.OrderLine
	for i := range lines {
		if err := uc.stock.Reserve(ctx, lines[i].ItemID, lines[i].Quantity, orderID); err != nil {
			uc.rollbackReservations(ctx, orderID, reserved)
			return nil, fmt.Errorf("reserve stock for %s: %w", lines[i].ItemName, err)
		}
		reserved = append(reserved, lines[i])
	}

	o := &model.Order{
		ID:            orderID,
		TableID:       input.TableID,
		CreatedBy:     input.CreatedBy,
		KitchenStatus: initialStationStatus(lines, model.StationKitchen),
		BarStatus:     initialStationStatus(lines, model.StationBar),
		Total:         total,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Lines:         lines,
	}
	o.RecomputeStatus()

	if err := uc.repo.Create(ctx, o); err != nil {
		uc.rollbackReservations(ctx, orderID, reserved)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	uc.publish(ctx, order.EventOrderCreated, o)
	return o, nil
}

func validateCreateInput(input *dto.CreateOrderInput) error {
	if input.TableID == "" {
		return apperr.Validation("table_id", "required")
	}
	if input.CreatedBy == "" {
		return apperr.Validation("created_by", "required")
	}
	if len(input.Lines) == 0 {
		return apperr.Validation("lines", "order needs at least one line")
	}
	for i, line := range input.Lines {
		if line.ItemID == "" {
			return apperr.Validation(fmt.Sprintf("lines[%d].item_id", i), "required")
		}
		if line.Quantity < 1 {
			return apperr.Validation(fmt.Sprintf("lines[%d].quantity", i), "must be at least 1")
		}
	}
	return nil
}

// buildLines resolves items and extras from the catalog and computes each
// line subtotal. Client-supplied prices do not exist in the input by design.
func (uc *orderUseCase) buildLines(ctx context.Context, orderID string, inputs []dto.CreateOrderLineInput) ([]model.OrderLine, float64, error) {
	lines := make([]model.OrderLine, 0, len(inputs))
	var total float64

	for i, in := range inputs {
		item, err := uc.catalog.GetItem(ctx, in.ItemID)
		if err != nil {
			return nil, 0, err
		}
		if !item.Sellable() {
			return nil, 0, fmt.Errorf("%s: %w", item.Name, apperr.ErrItemUnavailable)
		}

		extras, err := uc.catalog.GetExtras(ctx, in.ExtraIDs)
		if err != nil {
			return nil, 0, err
		}
		if len(extras) != len(in.ExtraIDs) {
			return nil, 0, apperr.NotFound("extra", "one or more requested extras")
		}

		line := model.OrderLine{
			OrderID:   orderID,
			LineIndex: i,
			ItemID:    item.ID,
			ItemName:  item.Name,
			Station:   item.Station,
			Quantity:  in.Quantity,
			UnitPrice: item.Price,
			Note:      in.Note,
			Extras:    make([]model.OrderLineExtra, 0, len(extras)),
		}

		extrasPerUnit := 0.0
		for _, extra := range extras {
			line.Extras = append(line.Extras, model.OrderLineExtra{
				OrderID:   orderID,
				LineIndex: i,
				ExtraID:   extra.ID,
				Name:      extra.Name,
				Price:     extra.Price,
			})
			extrasPerUnit += extra.Price
		}

		line.Subtotal = float64(in.Quantity) * (item.Price + extrasPerUnit)
		total += line.Subtotal
		lines = append(lines, line)
	}

	return lines, total, nil
}

// initialStationStatus marks a station with no lines as trivially ready so a
// pure-drinks order is never blocked on a non-existent kitchen step.
func initialStationStatus(lines []model.OrderLine, station model.Station) model.StationStatus {
	for _, line := range lines {
		if line.Station == station {
			return model.StationPending
		}
	}
	return model.StationReady
}

func (uc *orderUseCase) rollbackReservations(ctx context.Context, orderID string, reserved []model.OrderLine) {
	for _, line := range reserved {
		err := uc.stock.Release(ctx, &stockdto.ReleaseInput{
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			Reason:      "reversion de creacion de pedido",
			ReferenceID: orderID,
		})
		if err != nil {
			uc.logger.Error("failed to roll back stock reservation",
				zap.String("order_id", orderID),
				zap.String("item_id", line.ItemID),
				zap.Error(err))
		}
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *orderUseCase) TransitionStation(ctx context.Context, input *dto.TransitionInput) (*model.Order, error) {
	if !input.Station.Valid() {
		return nil, apperr.Validation("station", "must be cocina or barra")
	}
	if !input.Target.Valid() {
		return nil, apperr.Validation("status", "must be pendiente, preparando or listo")
	}

	o, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Cancelled() || o.Delivered {
		return nil, apperr.ErrInvalidTransition
	}

	current := o.StationStatusFor(input.Station)
	if !current.CanTransitionTo(input.Target) {
		return nil, fmt.Errorf("%s %s -> %s: %w",
			input.Station, current, input.Target, apperr.ErrInvalidTransition)
	}

	o.SetStationStatus(input.Station, input.Target)
	o.RecomputeStatus()

	expected := input.ExpectedVersion
	if expected == 0 {
		expected = o.Version
	}
	if err := uc.repo.UpdateWithVersion(ctx, o, expected); err != nil {
		return nil, err
	}

	uc.publish(ctx, order.EventStatusChanged, o)
	return o, nil
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, input *dto.CancelInput) (*model.Order, error) {
	reason := strings.TrimSpace(input.Reason)
	if len(reason) < minCancelReasonLen {
		return nil, fmt.Errorf("reason must be at least %d characters: %w",
			minCancelReasonLen, apperr.ErrInvalidReason)
	}

	o, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Cancelled() || o.Delivered {
		return nil, apperr.ErrInvalidTransition
	}

	// Cancellation is only legal before any preparation started. Stations
	// without lines sit at listo from inception and do not count.
	for _, line := range o.Lines {
		if o.StationStatusFor(line.Station) != model.StationPending {
			return nil, apperr.ErrAlreadyInProgress
		}
	}

	now := time.Now()
	actor := input.ActorID
	o.CancelReason = &reason
	o.CancelledBy = &actor
	o.CancelledAt = &now
	o.RecomputeStatus()

	expected := input.ExpectedVersion
	if expected == 0 {
		expected = o.Version
	}
	if err := uc.repo.UpdateWithVersion(ctx, o, expected); err != nil {
		return nil, err
	}

	// Nothing was prepared, so reserved stock goes back to the ledger. The
	// cancellation itself is already durable; release failures are logged
	// and left to the stock audit trail.
	for _, line := range o.Lines {
		err := uc.stock.Release(ctx, &stockdto.ReleaseInput{
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			MovementType: model.MovementCancel,
			Reason:       "cancelacion de pedido: " + reason,
			ReferenceID:  o.ID,
			ActorID:      input.ActorID,
		})
		if err != nil {
			uc.logger.Error("failed to release stock on cancellation",
				zap.String("order_id", o.ID),
				zap.String("item_id", line.ItemID),
				zap.Error(err))
		}
	}

	uc.publish(ctx, order.EventOrderCancelled, o)
	return o, nil
}

func (uc *orderUseCase) MarkDelivered(ctx context.Context, input *dto.DeliverInput) (*model.Order, error) {
	o, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.GeneralStatus != model.GeneralReady {
		return nil, apperr.ErrNotReady
	}

	o.Delivered = true
	o.RecomputeStatus()

	expected := input.ExpectedVersion
	if expected == 0 {
		expected = o.Version
	}
	if err := uc.repo.UpdateWithVersion(ctx, o, expected); err != nil {
		return nil, err
	}

	uc.publish(ctx, order.EventOrderDelivered, o)
	return o, nil
}

func (uc *orderUseCase) StationFeed(ctx context.Context, station model.Station, includeReady bool) ([]model.Order, error) {
	if !station.Valid() {
		return nil, apperr.Validation("station", "must be cocina or barra")
	}
	return uc.repo.ListForStation(ctx, station, includeReady)
}

func (uc *orderUseCase) WaiterFeed(ctx context.Context, creatorID string) ([]model.Order, error) {
	if creatorID == "" {
		return nil, apperr.Validation("creator_id", "required")
	}
	return uc.repo.ListActiveByCreator(ctx, creatorID)
}

func (uc *orderUseCase) ListByTable(ctx context.Context, tableID string) ([]model.Order, error) {
	return uc.repo.ListByTable(ctx, tableID)
}

func (uc *orderUseCase) ListCancelled(ctx context.Context) ([]model.Order, error) {
	return uc.repo.ListCancelled(ctx)
}

func (uc *orderUseCase) AdminFeed(ctx context.Context) (*dto.AdminSummary, error) {
	orders, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &dto.AdminSummary{Orders: orders, Total: len(orders)}
	for _, o := range orders {
		switch o.GeneralStatus {
		case model.GeneralPending:
			summary.Pending++
		case model.GeneralPreparing:
			summary.Preparing++
		case model.GeneralPartial:
			summary.Partial++
		case model.GeneralReady:
			summary.Ready++
		case model.GeneralDelivered:
			summary.Delivered++
		case model.GeneralCancelled:
			summary.Cancelled++
		}
	}
	return summary, nil
}

func (uc *orderUseCase) publish(ctx context.Context, eventType string, o *model.Order) {
	if uc.publisher == nil {
		return
	}

	event := order.Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   o,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}

	if err := uc.publisher.Publish(ctx, o.ID, payload); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
}
