package controller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"print-order-service/internal/dto"
	"print-order-service/internal/model"
	"print-order-service/internal/service"
	"print-order-service/internal/upload"
)

// ProductController manages the apparel catalog.
type ProductController struct {
	Service *service.ProductService
	Files   *upload.Store
	BaseURL string
}

func NewProductController(s *service.ProductService, files *upload.Store, baseURL string) *ProductController {
	return &ProductController{Service: s, Files: files, BaseURL: baseURL}
}

// POST /apparel/products
func (ctl *ProductController) Create(c *gin.Context) {
	id := primitive.NewObjectID()
	p, err := ctl.readProduct(c, id.Hex())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id

	if err := ctl.Service.Create(c.Request.Context(), &p); err != nil {
		respondError(c, err, "error creating product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": p})
}

// GET /apparel/products
func (ctl *ProductController) List(c *gin.Context) {
	products, err := ctl.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "error fetching products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GET /apparel/products/:id
func (ctl *ProductController) Get(c *gin.Context) {
	p, err := ctl.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "error fetching product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// PUT|PATCH /apparel/products/:id
func (ctl *ProductController) Update(c *gin.Context) {
	id := c.Param("id")
	p, err := ctl.readProduct(c, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := ctl.Service.Update(c.Request.Context(), id, &p)
	if err != nil {
		respondError(c, err, "error updating product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": updated})
}

// DELETE /apparel/products/:id
func (ctl *ProductController) Delete(c *gin.Context) {
	if err := ctl.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "error deleting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// readProduct binds a JSON product or a multipart form. Uploaded files are
// stored under the product's directory: productImage replaces the image and
// colorSwatchImages fill the swatches by position.
func (ctl *ProductController) readProduct(c *gin.Context, id string) (model.ApparelProduct, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var p model.ApparelProduct
		err := c.ShouldBindJSON(&p)
		return p, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return model.ApparelProduct{}, err
	}
	p, err := dto.ParseProductForm(url.Values(form.Value))
	if err != nil {
		return p, err
	}

	base := requestBaseURL(c, ctl.BaseURL)
	dir := service.UploadDir(id)
	if images := form.File["productImage"]; len(images) > 0 {
		u, err := ctl.Files.Save(images[0], dir...)
		if err != nil {
			return p, err
		}
		p.ProductImage = upload.Absolute(u, base)
	}
	for i, fh := range form.File["colorSwatchImages"] {
		if i >= len(p.ColorSwatches) {
			break
		}
		u, err := ctl.Files.Save(fh, dir...)
		if err != nil {
			return p, err
		}
		p.ColorSwatches[i].Image = upload.Absolute(u, base)
	}
	return p, nil
}
