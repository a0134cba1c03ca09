package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"print-order-service/internal/dto"
	"print-order-service/internal/model"
	"print-order-service/internal/repository"
	"print-order-service/internal/service"
)

var errBadDate = errors.New("dates must be YYYY-MM-DD or RFC 3339")

// OrderController serves the administrative order endpoints.
type OrderController struct {
	Service *service.OrderService
	BaseURL string
}

func NewOrderController(s *service.OrderService, baseURL string) *OrderController {
	return &OrderController{Service: s, BaseURL: baseURL}
}

// GET /admin/orders
func (ctl *OrderController) List(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q.Page, _ = strconv.Atoi(c.Query("page"))
	q.Limit, _ = strconv.Atoi(c.Query("limit"))

	page, err := ctl.Service.ListOrders(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "error fetching orders")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /admin/orders/:orderId
func (ctl *OrderController) Get(c *gin.Context) {
	order, err := ctl.Service.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err, "error fetching order details")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// PUT /admin/orders/:orderId/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := ctl.Service.UpdateStatus(c.Request.Context(), c.Param("orderId"), model.OrderStatus(req.Status), req.Note)
	if err != nil {
		respondError(c, err, "error updating order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// PUT /admin/orders/:orderId/notes
func (ctl *OrderController) AddNote(c *gin.Context) {
	var req dto.AdminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note is required"})
		return
	}

	order, err := ctl.Service.AddAdminNote(c.Request.Context(), c.Param("orderId"), req.Note)
	if err != nil {
		respondError(c, err, "error adding admin note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin note added successfully", "order": order})
}

// PUT /admin/orders/:orderId/shipping
func (ctl *OrderController) UpdateShipping(c *gin.Context) {
	var req dto.ShippingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.UpdateShipping(c.Request.Context(), c.Param("orderId"), req.ToModel())
	if err != nil {
		respondError(c, err, "error updating shipping information")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shipping information updated successfully", "order": order})
}

// GET /admin/orders/stats?period=30
func (ctl *OrderController) Stats(c *gin.Context) {
	period, _ := strconv.Atoi(c.DefaultQuery("period", "30"))

	stats, err := ctl.Service.Stats(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "error fetching order statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// orderQuery reads the shared filter parameters. status=all means no
// filter; endDate is inclusive of the whole day when given as a date.
func orderQuery(c *gin.Context) (repository.OrderQuery, error) {
	q := repository.OrderQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		SortBy:   c.DefaultQuery("sortBy", "createdAt"),
		SortDesc: c.DefaultQuery("sortOrder", "desc") != "asc",
	}

	if s := c.Query("status"); s != "" && s != "all" {
		status := model.OrderStatus(s)
		if !status.Valid() {
			return q, service.ErrInvalidStatus
		}
		q.Status = status
	}

	var err error
	if q.From, err = parseDate(c.Query("startDate"), false); err != nil {
		return q, err
	}
	if q.To, err = parseDate(c.Query("endDate"), true); err != nil {
		return q, err
	}
	return q, nil
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, errBadDate
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
