package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
	"github.com/polkiloo/petshop/internal/feedback"
	"github.com/polkiloo/petshop/internal/metrics"
)

const (
	placedMessage       = "Your order has been placed successfully and is awaiting processing."
	notificationTitle   = "Order Placed Successfully"
	notificationMessage = "Your order #%s has been placed and is being processed."
)

// CartClearer empties the cart an order was placed from.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// NotificationWriter stores the confirmation notification.
type NotificationWriter interface {
	Create(ctx context.Context, n model.Notification) (*model.Notification, error)
}

// AddressLookup resolves a delivery address owned by a user.
type AddressLookup interface {
	GetForUser(ctx context.Context, userID, id int64) (*model.Address, error)
}

// Request is everything the placement sequence needs. It never reads the
// live cart; Snapshot is fixed when checkout began.
type Request struct {
	UserID    int64
	AddressID int64
	Notes     string
	Snapshot  Snapshot
}

// Receipt describes a placed order.
type Receipt struct {
	OrderID     string
	Totals      Totals
	ItemCount   int
	CartCleared bool
	PlacedAt    time.Time
}

// Placer runs the order placement sequence.
type Placer struct {
	orders        repository.OrderRepository
	notifications NotificationWriter
	addresses     AddressLookup
	ids           IDGenerator
	notifier      *feedback.Notifier
	metrics       *metrics.Checkout
	logger        *slog.Logger
	clock         func() time.Time
}

// PlacerOption customizes a Placer.
type PlacerOption func(*Placer)

// WithAddressLookup verifies that the chosen address belongs to the buyer.
func WithAddressLookup(a AddressLookup) PlacerOption {
	return func(p *Placer) { p.addresses = a }
}

// WithIDGenerator replaces the default UUID based order ids.
func WithIDGenerator(g IDGenerator) PlacerOption {
	return func(p *Placer) {
		if g != nil {
			p.ids = g
		}
	}
}

// WithPlacerNotifier sets the toast emitter.
func WithPlacerNotifier(n *feedback.Notifier) PlacerOption {
	return func(p *Placer) { p.notifier = n }
}

// WithPlacerMetrics sets the outcome recorder.
func WithPlacerMetrics(m *metrics.Checkout) PlacerOption {
	return func(p *Placer) { p.metrics = m }
}

// WithPlacerLogger sets the logger.
func WithPlacerLogger(l *slog.Logger) PlacerOption {
	return func(p *Placer) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPlacerClock overrides the time source.
func WithPlacerClock(clock func() time.Time) PlacerOption {
	return func(p *Placer) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPlacer creates a Placer writing through orders and notifications.
func NewPlacer(orders repository.OrderRepository, notifications NotificationWriter, opts ...PlacerOption) *Placer {
	p := &Placer{
		orders:        orders,
		notifications: notifications,
		ids:           UUIDGenerator{},
		logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Place validates req, writes the order header, its items and the initial
// timeline event, notifies the buyer and finally clears cart.
//
// When the order store supports transactions the first three writes are
// applied atomically; otherwise they run in sequence and a failure leaves
// earlier writes in place, reported through *errors.StepError. A failure to
// clear the cart after a successful placement is logged and reflected in
// Receipt.CartCleared only.
func (p *Placer) Place(ctx context.Context, req Request, cart CartClearer) (*Receipt, error) {
	if err := p.checkPreconditions(ctx, req); err != nil {
		p.metrics.ObserveFailure("precondition")
		return nil, err
	}

	now := p.clock()
	order := model.Order{
		ID:        p.ids.NewOrderID(),
		UserID:    req.UserID,
		AddressID: req.AddressID,
		Status:    model.OrderStatusProcessing,
		Subtotal:  req.Snapshot.Totals.Subtotal,
		Shipping:  req.Snapshot.Totals.Shipping,
		Tax:       req.Snapshot.Totals.Tax,
		Total:     req.Snapshot.Totals.Total,
		Notes:     notesOrNil(req.Notes),
		CreatedAt: now,
	}

	if err := p.writeOrder(ctx, order, req.Snapshot.Lines); err != nil {
		return nil, p.abort(ctx, err)
	}

	_, err := p.notifications.Create(ctx, model.Notification{
		UserID:    req.UserID,
		Title:     notificationTitle,
		Message:   fmt.Sprintf(notificationMessage, order.ID),
		Type:      model.NotificationTypeOrder,
		CreatedAt: now,
	})
	if err != nil {
		return nil, p.abort(ctx, &domainErrors.StepError{Step: domainErrors.StepNotification, OrderID: order.ID, Err: err})
	}

	receipt := &Receipt{
		OrderID:     order.ID,
		Totals:      req.Snapshot.Totals,
		ItemCount:   req.Snapshot.ItemCount(),
		CartCleared: true,
		PlacedAt:    now,
	}
	if cart != nil {
		if err := cart.Clear(ctx); err != nil {
			receipt.CartCleared = false
			p.logger.Warn("clear cart after order failed",
				slog.String("order_id", order.ID),
				slog.Int64("user_id", req.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	p.metrics.ObservePlaced(receipt.Totals.Total, receipt.CartCleared)
	p.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.Int64("user_id", req.UserID),
		slog.Float64("total", receipt.Totals.Total),
	)
	p.notifier.Success(ctx, "Order placed successfully!", "You will receive a confirmation shortly.")
	return receipt, nil
}

func (p *Placer) checkPreconditions(ctx context.Context, req Request) error {
	if req.UserID == 0 {
		p.notifier.Error(ctx, "Please login to place an order", "")
		return domainErrors.ErrNotAuthenticated
	}
	if req.AddressID == 0 {
		p.notifier.Error(ctx, "Please select a delivery address", "")
		return domainErrors.ErrAddressRequired
	}
	if len(req.Snapshot.Lines) == 0 {
		p.notifier.Error(ctx, "Your cart is empty", "")
		return domainErrors.ErrEmptyCart
	}
	if p.addresses != nil {
		if _, err := p.addresses.GetForUser(ctx, req.UserID, req.AddressID); err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				p.notifier.Error(ctx, "Please select a delivery address", "")
				return domainErrors.ErrAddressRequired
			}
			p.notifier.Error(ctx, "Failed to place order", err.Error())
			return fmt.Errorf("lookup address: %w", err)
		}
	}
	return nil
}

// writeOrder stores header, items and the first timeline event.
func (p *Placer) writeOrder(ctx context.Context, order model.Order, lines []model.CartLine) error {
	if tx, ok := p.orders.(repository.OrderTransactor); ok {
		var stepErr error
		err := tx.InTransaction(ctx, func(w repository.OrderWriter) error {
			stepErr = writeSteps(ctx, w, order, lines)
			return stepErr
		})
		if err == nil {
			return nil
		}
		var se *domainErrors.StepError
		if errors.As(stepErr, &se) {
			// rolled back: nothing of the order remains
			se.OrderID = ""
			return se
		}
		return &domainErrors.StepError{Step: domainErrors.StepOrderHeader, Err: err}
	}
	return writeSteps(ctx, p.orders, order, lines)
}

func writeSteps(ctx context.Context, w repository.OrderWriter, order model.Order, lines []model.CartLine) error {
	if _, err := w.CreateHeader(ctx, order); err != nil {
		return &domainErrors.StepError{Step: domainErrors.StepOrderHeader, Err: err}
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.OrderItem{
			OrderID:     order.ID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Image:       l.Image,
			Price:       l.Price,
			Quantity:    l.Quantity,
		})
	}
	if err := w.AddItems(ctx, order.ID, items); err != nil {
		return &domainErrors.StepError{Step: domainErrors.StepOrderItems, OrderID: order.ID, Err: err}
	}

	event := model.OrderTimelineEvent{
		OrderID:   order.ID,
		Status:    model.OrderStatusPlaced,
		Message:   placedMessage,
		Timestamp: order.CreatedAt,
	}
	if err := w.AppendTimeline(ctx, event); err != nil {
		return &domainErrors.StepError{Step: domainErrors.StepTimeline, OrderID: order.ID, Err: err}
	}
	return nil
}

func (p *Placer) abort(ctx context.Context, err error) error {
	step := "unknown"
	var se *domainErrors.StepError
	if errors.As(err, &se) {
		step = string(se.Step)
	}
	p.metrics.ObserveFailure(step)
	p.logger.Error("place order failed", slog.String("step", step), slog.String("error", err.Error()))
	p.notifier.Error(ctx, "Failed to place order", err.Error())
	return err
}

func notesOrNil(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}
