package controller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"print-order-service/internal/dto"
	"print-order-service/internal/model"
	"print-order-service/internal/service"
	"print-order-service/internal/upload"
)

type CartController struct {
	Service *service.CartService
	Files   *upload.Store
	BaseURL string
}

func NewCartController(s *service.CartService, files *upload.Store, baseURL string) *CartController {
	return &CartController{Service: s, Files: files, BaseURL: baseURL}
}

// POST /cart/add. Accepts multipart/form-data with optional image and
// imprintFiles uploads, or a JSON CartItem.
func (ctl *CartController) Add(c *gin.Context) {
	var (
		item dto.CartItem
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		item, err = ctl.readMultipart(c)
	} else {
		err = c.ShouldBindJSON(&item)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := ctl.Service.Add(c.Request.Context(), currentUser(c), item.ToLine())
	if err != nil {
		respondError(c, err, "error adding to cart")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Added to cart",
		"cartItem": ctl.present(*line, requestBaseURL(c, ctl.BaseURL)),
		"type":     line.Kind,
	})
}

func (ctl *CartController) readMultipart(c *gin.Context) (dto.CartItem, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return dto.CartItem{}, err
	}
	item, err := dto.ParseCartForm(url.Values(form.Value))
	if err != nil {
		return item, err
	}

	if images := form.File["image"]; len(images) > 0 {
		if item.ImageURL, err = ctl.Files.Save(images[0]); err != nil {
			return item, err
		}
	}
	imprints, err := ctl.Files.SaveAll(form.File["imprintFiles"])
	if err != nil {
		return item, err
	}
	if len(imprints) > 0 {
		if item.ToLine().Kind == model.LineApparel {
			item.ImprintFiles = imprints
		} else {
			item.StickerImageURLs = imprints
		}
	}
	return item, nil
}

// GET /cart/mine
func (ctl *CartController) List(c *gin.Context) {
	lines, err := ctl.Service.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "error fetching cart")
		return
	}

	base := requestBaseURL(c, ctl.BaseURL)
	items := make([]dto.CartItem, len(lines))
	for i, l := range lines {
		items[i] = ctl.present(l, base)
	}
	c.JSON(http.StatusOK, items)
}

// DELETE /cart/delete/:userId/:cartItemId
func (ctl *CartController) Remove(c *gin.Context) {
	if c.Param("userId") != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot modify another user's cart"})
		return
	}

	line, err := ctl.Service.Remove(c.Request.Context(), currentUser(c), c.Param("cartItemId"))
	if err != nil {
		respondError(c, err, "error deleting cart item")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Cart item deleted successfully",
		"deletedItem": dto.FromLine(*line),
	})
}

// DELETE /cart/delete-multiple/:userId
func (ctl *CartController) RemoveMany(c *gin.Context) {
	if c.Param("userId") != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot modify another user's cart"})
		return
	}

	var req dto.RemoveManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cartItemIds must be a non-empty array"})
		return
	}

	removed, err := ctl.Service.RemoveMany(c.Request.Context(), currentUser(c), req.CartItemIDs)
	if err != nil {
		respondError(c, err, "error deleting cart items")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Cart items deleted successfully",
		"deletedCount": len(removed),
		"deletedItems": dto.FromLines(removed),
	})
}

func (ctl *CartController) present(l model.CartLine, base string) dto.CartItem {
	l.MapURLs(func(u string) string { return upload.Absolute(u, base) })
	return dto.FromLine(l)
}
