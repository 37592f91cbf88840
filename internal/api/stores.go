package api

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/aadhilm732/TGTPETSUAE/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// createStore handles a vendor application submitted as a multipart form
func (h *Handler) createStore(c *gin.Context) {
	logoData, logoName, err := formFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing store info"})
		return
	}

	req := &service.CreateStoreRequest{
		Name:        c.PostForm("name"),
		Username:    c.PostForm("username"),
		Description: c.PostForm("description"),
		Email:       c.PostForm("email"),
		Contact:     c.PostForm("contact"),
		Address:     c.PostForm("address"),
		LogoData:    logoData,
		LogoName:    logoName,
	}

	result, err := h.storeService.CreateStore(c.Request.Context(), userID(c), req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// storeStatus handles checking the requester's application status
func (h *Handler) storeStatus(c *gin.Context) {
	status, err := h.storeService.GetStoreStatus(c.Request.Context(), userID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// getStorefront handles the public storefront view
func (h *Handler) getStorefront(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username"})
		return
	}

	data, err := h.storeService.GetStorefront(c.Request.Context(), username)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// createProduct handles adding a product with its images
func (h *Handler) createProduct(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product details"})
		return
	}

	mrp, err := decimal.NewFromString(c.PostForm("mrp"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product details"})
		return
	}
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product details"})
		return
	}

	uploads := make([]service.ProductUpload, 0, len(form.File["images"]))
	for _, fh := range form.File["images"] {
		data, err := readFileHeader(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product details"})
			return
		}
		uploads = append(uploads, service.ProductUpload{Data: data, Name: fh.Filename})
	}

	req := &service.CreateProductRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		MRP:         mrp,
		Price:       price,
		Category:    c.PostForm("category"),
		Images:      uploads,
	}

	product, err := h.storeService.CreateProduct(c.Request.Context(), sellerStoreID(c), sellerStoreUsername(c), req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added successfully",
		"product": product,
	})
}

// listProducts handles listing the seller's products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.storeService.ListProducts(c.Request.Context(), sellerStoreID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// toggleStock handles flipping a product's in-stock flag
func (h *Handler) toggleStock(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing details: product_id"})
		return
	}

	if err := h.storeService.ToggleStock(c.Request.Context(), sellerStoreID(c), sellerStoreUsername(c), req.ProductID); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product stock updated successfully"})
}

// generateListing handles AI-assisted listing extraction from a product photo
func (h *Handler) generateListing(c *gin.Context) {
	var req struct {
		Base64Image string `json:"base64_image" binding:"required"`
		MimeType    string `json:"mime_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image data or mime type"})
		return
	}

	listing, err := h.listingService.GenerateListing(c.Request.Context(), req.Base64Image, req.MimeType)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func formFile(c *gin.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
