package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-order-service/internal/dto"
	"print-order-service/internal/logging"
	"print-order-service/internal/payment"
	"print-order-service/internal/service"
)

const msgPaymentPending = "payment received, order confirmation pending"

type PaymentController struct {
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Gateway  payment.Gateway
}

func NewPaymentController(checkout *service.CheckoutService, orders *service.OrderService, gateway payment.Gateway) *PaymentController {
	return &PaymentController{Checkout: checkout, Orders: orders, Gateway: gateway}
}

// POST /payment/process
func (ctl *PaymentController) Process(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CheckoutResponse{Error: "invalid request body"})
		return
	}

	res, err := ctl.Checkout.Checkout(c.Request.Context(), currentUser(c), req.ToService())
	if err != nil {
		status, body := checkoutFailure(c, err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		Success:       true,
		Message:       "Payment processed successfully",
		Order:         res.Order,
		TransactionID: res.TransactionID,
	})
}

func checkoutFailure(c *gin.Context, err error) (int, dto.CheckoutResponse) {
	var cerr *service.CheckoutError
	if !errors.As(err, &cerr) {
		if errors.Is(err, service.ErrMissingIdentity) {
			return http.StatusUnauthorized, dto.CheckoutResponse{Error: err.Error()}
		}
		logging.FromContext(c.Request.Context()).Error("checkout failed", zap.Error(err))
		return http.StatusInternalServerError, dto.CheckoutResponse{Error: "payment processing failed"}
	}

	body := dto.CheckoutResponse{Error: cerr.Message, Field: cerr.Field}
	switch cerr.Kind {
	case service.KindMissingData, service.KindValidation, service.KindDeclined:
		return http.StatusBadRequest, body
	case service.KindIndeterminate:
		body.PaymentStatus = "unknown"
		return http.StatusBadGateway, body
	case service.KindGatewayUnavailable:
		return http.StatusServiceUnavailable, body
	case service.KindPersistenceFailure:
		// The card was charged. Never report this as a failed payment.
		return http.StatusAccepted, dto.CheckoutResponse{
			Success:       true,
			Message:       msgPaymentPending,
			TransactionID: cerr.TransactionID,
			PaymentStatus: "captured",
		}
	}
	return http.StatusInternalServerError, body
}

// GET /payment/orders
func (ctl *PaymentController) MyOrders(c *gin.Context) {
	orders, err := ctl.Orders.UserOrders(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "error fetching orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /payment/orders/:orderId
func (ctl *PaymentController) MyOrder(c *gin.Context) {
	order, err := ctl.Orders.UserOrder(c.Request.Context(), currentUser(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err, "error fetching order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// POST /payment/orders/:orderId/reorder
func (ctl *PaymentController) Reorder(c *gin.Context) {
	n, err := ctl.Orders.Reorder(c.Request.Context(), currentUser(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err, "error reordering items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Items added to cart", "itemsAdded": n})
}

// GET /payment/test-config
func (ctl *PaymentController) TestConfig(c *gin.Context) {
	configured := ctl.Gateway != nil && ctl.Gateway.Configured()
	c.JSON(http.StatusOK, gin.H{"configured": configured})
}
