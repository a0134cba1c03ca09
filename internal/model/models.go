// models.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusOrderPlaced     OrderStatus = "order_placed"
	StatusInPrinting      OrderStatus = "in_printing"
	StatusOrderDispatched OrderStatus = "order_dispatched"
	StatusCompleted       OrderStatus = "completed"
	StatusCancelled       OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusOrderPlaced,
	StatusInPrinting,
	StatusOrderDispatched,
	StatusCompleted,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Order is written once per captured payment. Only Status, StatusHistory,
// Shipping and AdminNotes change afterwards.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"userId"`
	OrderNumber   string             `bson:"order_number" json:"orderNumber"`
	OrderDate     time.Time          `bson:"order_date" json:"orderDate"`
	Status        OrderStatus        `bson:"status" json:"status"`
	StatusHistory []StatusRecord     `bson:"status_history" json:"statusHistory"`

	CustomerInfo CustomerInfo `bson:"customer_info" json:"customerInfo"`
	Payment      Payment      `bson:"payment" json:"payment"`
	Items        []OrderItem  `bson:"items" json:"items"`

	Subtotal     float64 `bson:"subtotal" json:"subtotal"`
	Tax          float64 `bson:"tax" json:"tax"`
	ShippingCost float64 `bson:"shipping_cost" json:"shippingCost"`
	Discount     float64 `bson:"discount" json:"discount"`
	Total        float64 `bson:"total" json:"total"`

	Shipping Shipping `bson:"shipping" json:"shipping"`

	// Visible to administrators only.
	AdminNotes string `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ForOwner returns a copy safe to hand to the buyer.
func (o Order) ForOwner() Order {
	o.AdminNotes = ""
	return o
}

type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zip_code" json:"zipCode"`
	Country string `bson:"country" json:"country"`
}

type CustomerInfo struct {
	FirstName string  `bson:"first_name" json:"firstName"`
	LastName  string  `bson:"last_name" json:"lastName"`
	Email     string  `bson:"email" json:"email"`
	Phone     string  `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   Address `bson:"address" json:"address"`
}

func (c CustomerInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Payment struct {
	Method        string        `bson:"method" json:"method"`
	TransactionID string        `bson:"transaction_id" json:"transactionId"`
	Amount        float64       `bson:"amount" json:"amount"`
	Currency      string        `bson:"currency" json:"currency"`
	Status        PaymentStatus `bson:"status" json:"status"`
	AuthCode      string        `bson:"auth_code,omitempty" json:"authCode,omitempty"`
	PaymentDate   *time.Time    `bson:"payment_date,omitempty" json:"paymentDate,omitempty"`
}

// OrderItem is a priced snapshot of a cart line taken at checkout.
type OrderItem struct {
	Kind             LineKind       `bson:"kind,omitempty" json:"kind,omitempty"`
	ProductID        string         `bson:"product_id,omitempty" json:"productId,omitempty"`
	Title            string         `bson:"title" json:"title"`
	ImageURL         string         `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Size             string         `bson:"size,omitempty" json:"size,omitempty"`
	SizeAndQuantity  map[string]int `bson:"size_and_quantity,omitempty" json:"sizeAndQuantity,omitempty"`
	ColorsName       string         `bson:"colors_name,omitempty" json:"colorsName,omitempty"`
	ColorsCode       string         `bson:"colors_code,omitempty" json:"colorsCode,omitempty"`
	Options          []string       `bson:"options,omitempty" json:"options,omitempty"`
	Quantity         int            `bson:"quantity" json:"quantity"`
	UnitPrice        float64        `bson:"unit_price" json:"unitPrice"`
	TotalPrice       float64        `bson:"total_price" json:"totalPrice"`
	ImprintFiles     []string       `bson:"imprint_files,omitempty" json:"imprintFiles,omitempty"`
	ImprintLocations []string       `bson:"imprint_locations,omitempty" json:"imprintLocations,omitempty"`
	StickerNames     []string       `bson:"sticker_names,omitempty" json:"stickerNames,omitempty"`
	OrderNotes       string         `bson:"order_notes,omitempty" json:"orderNotes,omitempty"`
}

type StatusRecord struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
}

type Shipping struct {
	Method            string     `bson:"method" json:"method"`
	TrackingNumber    string     `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time `bson:"actual_delivery,omitempty" json:"actualDelivery,omitempty"`
	Address           Address    `bson:"address" json:"address"`
}

// ShippingUpdate carries the admin-editable shipping fields. Nil means unchanged.
type ShippingUpdate struct {
	Method            *string
	TrackingNumber    *string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
}

func (u ShippingUpdate) Empty() bool {
	return u.Method == nil && u.TrackingNumber == nil && u.EstimatedDelivery == nil && u.ActualDelivery == nil
}
