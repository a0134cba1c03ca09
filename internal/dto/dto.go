// dto.go
package dto

import (
	"time"

	"print-order-service/internal/model"
	"print-order-service/internal/payment"
	"print-order-service/internal/service"
)

type PaymentData struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CVV            string `json:"cvv"`
}

type ShippingInfo struct {
	Method  string        `json:"method"`
	Address model.Address `json:"address"`
}

// CheckoutRequest is the body of POST /payment/process.
type CheckoutRequest struct {
	PaymentData  *PaymentData        `json:"paymentData"`
	CustomerInfo *model.CustomerInfo `json:"customerInfo"`
	ShippingInfo *ShippingInfo       `json:"shippingInfo"`
	CartItems    []CartItem          `json:"cartItems"`
	Pricing      *model.Pricing      `json:"pricing"`
}

// ToService converts the body, keeping absent sections nil.
func (r CheckoutRequest) ToService() service.CheckoutRequest {
	out := service.CheckoutRequest{
		Customer: r.CustomerInfo,
		Pricing:  r.Pricing,
	}
	if r.PaymentData != nil {
		out.Payment = &payment.CardInfo{
			CardNumber:     r.PaymentData.CardNumber,
			ExpirationDate: r.PaymentData.ExpirationDate,
			CVV:            r.PaymentData.CVV,
		}
	}
	if r.ShippingInfo != nil {
		out.Shipping = &model.Shipping{
			Method:  r.ShippingInfo.Method,
			Address: r.ShippingInfo.Address,
		}
	}
	if len(r.CartItems) > 0 {
		out.CartItems = make([]model.CartLine, len(r.CartItems))
		for i, it := range r.CartItems {
			out.CartItems[i] = it.ToLine()
		}
	}
	return out
}

type CheckoutResponse struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message,omitempty"`
	Order         *model.Order `json:"order,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
	PaymentStatus string       `json:"paymentStatus,omitempty"`
	Error         string       `json:"error,omitempty"`
	Field         string       `json:"field,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type AdminNoteRequest struct {
	Note string `json:"note"`
}

// ShippingUpdateRequest is a partial update; omitted fields are left alone.
type ShippingUpdateRequest struct {
	TrackingNumber    *string    `json:"trackingNumber"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	ActualDelivery    *time.Time `json:"actualDelivery"`
	ShippingMethod    *string    `json:"shippingMethod"`
}

func (r ShippingUpdateRequest) ToModel() model.ShippingUpdate {
	return model.ShippingUpdate{
		Method:            r.ShippingMethod,
		TrackingNumber:    r.TrackingNumber,
		EstimatedDelivery: r.EstimatedDelivery,
		ActualDelivery:    r.ActualDelivery,
	}
}

type RemoveManyRequest struct {
	CartItemIDs []string `json:"cartItemIds"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
