package controller

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/model"
)

var summaryHeader = []string{
	"Order Number",
	"Order Date",
	"Status",
	"Customer Name",
	"Customer Email",
	"Total Amount",
	"Payment Status",
	"Transaction ID",
}

var detailHeader = []string{
	"Order Number",
	"Order Date",
	"Status",
	"Customer Name",
	"Customer Email",
	"Customer Phone",
	"Billing Street",
	"Billing City",
	"Billing State",
	"Billing ZIP",
	"Billing Country",
	"Shipping Method",
	"Shipping Street",
	"Shipping City",
	"Shipping State",
	"Shipping ZIP",
	"Shipping Country",
	"Item Title",
	"Item Quantity",
	"Unit Price",
	"Total Price",
	"Size",
	"Colors Name",
	"Colors Code",
	"Options",
	"Order Notes",
	"Item Image URL",
	"Imprint Files",
}

// GET /admin/orders/export
func (ctl *OrderController) Export(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := ctl.Service.ExportOrders(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "error exporting orders")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.csv")
	c.Status(http.StatusOK)
	c.Writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := writeSummaryCSV(c.Writer, orders); err != nil {
		logging.FromContext(c.Request.Context()).Error("orders export write failed", zap.Error(err))
	}
}

// GET /admin/orders/:orderId/export
func (ctl *OrderController) ExportOne(c *gin.Context) {
	order, err := ctl.Service.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err, "error exporting order")
		return
	}

	name := order.OrderNumber
	if name == "" {
		name = order.ID.Hex()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=order-%s.csv", name))
	c.Status(http.StatusOK)
	c.Writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := writeOrderCSV(c.Writer, order, requestBaseURL(c, ctl.BaseURL)); err != nil {
		logging.FromContext(c.Request.Context()).Error("order export write failed", zap.Error(err))
	}
}

func writeSummaryCSV(w io.Writer, orders []*model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, o := range orders {
		err := cw.Write([]string{
			o.OrderNumber,
			o.OrderDate.UTC().Format(time.DateOnly),
			string(o.Status),
			o.CustomerInfo.FullName(),
			o.CustomerInfo.Email,
			money(o.Total),
			string(o.Payment.Status),
			o.Payment.TransactionID,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeOrderCSV writes one row per item. Absent optional item fields are
// written as empty cells.
func writeOrderCSV(w io.Writer, o *model.Order, baseURL string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailHeader); err != nil {
		return err
	}

	orderDate := ""
	if !o.OrderDate.IsZero() {
		orderDate = o.OrderDate.UTC().Format(time.RFC3339)
	}
	billing, shipping := o.CustomerInfo.Address, o.Shipping.Address

	for _, it := range o.Items {
		err := cw.Write([]string{
			o.OrderNumber,
			orderDate,
			string(o.Status),
			o.CustomerInfo.FullName(),
			o.CustomerInfo.Email,
			o.CustomerInfo.Phone,
			billing.Street,
			billing.City,
			billing.State,
			billing.ZipCode,
			billing.Country,
			o.Shipping.Method,
			shipping.Street,
			shipping.City,
			shipping.State,
			shipping.ZipCode,
			shipping.Country,
			it.Title,
			strconv.Itoa(it.Quantity),
			money(it.UnitPrice),
			money(it.TotalPrice),
			it.Size,
			it.ColorsName,
			it.ColorsCode,
			strings.Join(it.Options, " | "),
			it.OrderNotes,
			absoluteURL(it.ImageURL, baseURL),
			strings.Join(absoluteAll(it.ImprintFiles, baseURL), " | "),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// absoluteURL resolves any relative reference against baseURL, not only
// stored uploads.
func absoluteURL(u, baseURL string) string {
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	if strings.HasPrefix(u, "/") {
		return baseURL + u
	}
	return baseURL + "/" + u
}

func absoluteAll(urls []string, baseURL string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = absoluteURL(u, baseURL)
	}
	return out
}
