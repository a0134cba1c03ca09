package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
	"print-order-service/internal/model"
	"print-order-service/internal/payment"
)

const (
	paymentMethod   = "Credit Card"
	paymentCurrency = "USD"
	placedNote      = "Order placed"
)

var tracer = otel.Tracer("print-order-service/service")

// CheckoutRequest is one checkout attempt. Nil fields count as absent.
type CheckoutRequest struct {
	Payment   *payment.CardInfo
	Customer  *model.CustomerInfo
	Shipping  *model.Shipping
	CartItems []model.CartLine
	Pricing   *model.Pricing
}

type CheckoutResult struct {
	Order         *model.Order
	TransactionID string
}

// OrderCreator persists new orders.
type OrderCreator interface {
	Create(ctx context.Context, o *model.Order) error
}

// CartClearer empties a user's cart.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// CheckoutService charges the buyer and records the order. The charge and
// the write are not atomic; a write failure after capture is reported as
// KindPersistenceFailure and logged with everything needed to reconcile.
type CheckoutService struct {
	gateway payment.Gateway
	orders  OrderCreator
	numbers NumberSource
	cart    CartClearer
	notify  dispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCheckoutService(
	gateway payment.Gateway,
	orders OrderCreator,
	numbers NumberSource,
	cart CartClearer,
	notifier Notifier,
	m *metrics.Metrics,
) *CheckoutService {
	return &CheckoutService{
		gateway: gateway,
		orders:  orders,
		numbers: numbers,
		cart:    cart,
		notify:  dispatcher{notifier: notifier, metrics: m},
		metrics: m,
		now:     time.Now,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "Checkout")
	defer span.End()

	res, err := s.checkout(ctx, userID, req)
	if err != nil {
		kind := "error"
		var cerr *CheckoutError
		if errors.As(err, &cerr) {
			kind = string(cerr.Kind)
		}
		s.metrics.CheckoutOutcome(kind)
		span.SetAttributes(attribute.String("checkout.outcome", kind))
		span.SetStatus(codes.Error, kind)
		return nil, err
	}

	s.metrics.CheckoutOutcome("created")
	span.SetAttributes(
		attribute.String("checkout.outcome", "created"),
		attribute.String("order.number", res.Order.OrderNumber),
	)
	return res, nil
}

func (s *CheckoutService) checkout(ctx context.Context, userID string, req CheckoutRequest) (*CheckoutResult, error) {
	logger := logging.FromContext(ctx).With(zap.String("user_id", userID))

	// Received -> Validating
	if userID == "" || req.Payment == nil || req.Customer == nil || req.Shipping == nil ||
		len(req.CartItems) == 0 || req.Pricing == nil {
		return nil, &CheckoutError{Kind: KindMissingData, Message: "Missing required payment information"}
	}

	if _, err := payment.ValidateCard(*req.Payment); err != nil {
		return nil, validationFailure(err)
	}
	if req.Pricing.Total <= 0 {
		return nil, &CheckoutError{Kind: KindValidation, Field: "pricing.total", Message: "Order total must be greater than zero"}
	}
	if !req.Pricing.Balanced() {
		return nil, &CheckoutError{
			Kind:    KindValidation,
			Field:   "pricing",
			Message: "Order total does not match subtotal, discount, tax and shipping",
		}
	}

	// Authorizing
	masked := payment.MaskCard(req.Payment.CardNumber)
	outcome, err := s.gateway.AuthorizeAndCapture(ctx, *req.Payment, model.Money(req.Pricing.Total))
	if err != nil {
		return nil, gatewayFailure(err, outcome)
	}
	if !outcome.Success {
		return nil, &CheckoutError{Kind: KindDeclined, Message: outcome.Reason}
	}

	// Authorized -> Persisting. The buyer has been charged; a client
	// disconnect must not abort the write.
	pctx := context.WithoutCancel(ctx)
	order := s.buildOrder(userID, req, outcome)

	number, err := s.numbers.Next(pctx)
	if err == nil {
		order.OrderNumber = number
		err = s.orders.Create(pctx, order)
	}
	if err != nil {
		logger.Error("order persistence failed after payment capture",
			zap.String("checkout_state", "persist_failed"),
			zap.String("transaction_id", outcome.TransactionID),
			zap.String("auth_code", outcome.AuthCode),
			zap.String("card", masked),
			zap.String("order_number", order.OrderNumber),
			zap.Any("customer_info", req.Customer),
			zap.Any("shipping_info", req.Shipping),
			zap.Any("cart_items", req.CartItems),
			zap.Any("pricing", req.Pricing),
			zap.Error(err),
		)
		return nil, &CheckoutError{
			Kind:          KindPersistenceFailure,
			Message:       "payment received, order confirmation pending",
			TransactionID: outcome.TransactionID,
			AuthCode:      outcome.AuthCode,
			Err:           err,
		}
	}
	logger = logger.With(zap.String("order_number", order.OrderNumber))
	logger.Info("order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("transaction_id", outcome.TransactionID),
		zap.Float64("total", order.Total),
	)

	// Finalizing
	if err := s.cart.Clear(pctx, userID); err != nil {
		logger.Warn("cart clear after checkout failed", zap.Error(err))
	}

	snapshot := *order
	s.notify.send(logging.ContextWithLogger(ctx, logger), "confirmation", func(ctx context.Context, n Notifier) error {
		return n.SendOrderConfirmation(ctx, snapshot.CustomerInfo.Recipient(), &snapshot)
	})

	return &CheckoutResult{Order: order, TransactionID: outcome.TransactionID}, nil
}

func (s *CheckoutService) buildOrder(userID string, req CheckoutRequest, outcome payment.Outcome) *model.Order {
	now := s.now().UTC()
	items := make([]model.OrderItem, len(req.CartItems))
	for i, line := range req.CartItems {
		items[i] = line.Snapshot()
	}

	p := req.Pricing
	return &model.Order{
		UserID:    userID,
		OrderDate: now,
		Status:    model.StatusOrderPlaced,
		StatusHistory: []model.StatusRecord{
			{Status: model.StatusOrderPlaced, Timestamp: now, Note: placedNote},
		},
		CustomerInfo: *req.Customer,
		Payment: model.Payment{
			Method:        paymentMethod,
			TransactionID: outcome.TransactionID,
			Amount:        model.Money(p.Total),
			Currency:      paymentCurrency,
			Status:        model.PaymentCompleted,
			AuthCode:      outcome.AuthCode,
			PaymentDate:   &now,
		},
		Items:        items,
		Subtotal:     model.Money(p.Subtotal),
		Tax:          model.Money(p.Tax),
		ShippingCost: model.Money(p.Shipping),
		Discount:     model.Money(p.Discount),
		Total:        model.Money(p.Total),
		Shipping: model.Shipping{
			Method:  req.Shipping.Method,
			Address: req.Shipping.Address,
		},
		CreatedAt: now,
	}
}

func validationFailure(err error) *CheckoutError {
	cerr := &CheckoutError{Kind: KindValidation, Message: err.Error(), Err: err}
	var verr *payment.ValidationError
	if errors.As(err, &verr) {
		cerr.Field = verr.Field
		cerr.Message = verr.Message
	}
	return cerr
}

func gatewayFailure(err error, outcome payment.Outcome) *CheckoutError {
	var verr *payment.ValidationError
	switch {
	case errors.As(err, &verr):
		return validationFailure(err)
	case errors.Is(err, payment.ErrGatewayUnavailable), errors.Is(err, payment.ErrGatewayConfig):
		return &CheckoutError{Kind: KindGatewayUnavailable, Message: "Payment service unavailable, you have not been charged", Err: err}
	}
	// Anything else leaves the charge in doubt.
	msg := "Payment status unknown"
	if outcome.Reason != "" {
		msg = "Payment status unknown: " + outcome.Reason
	}
	return &CheckoutError{Kind: KindIndeterminate, Message: msg, Err: err}
}
