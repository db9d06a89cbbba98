package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/imagestore"
	"github.com/prn-tf/meridian-backoffice/internal/service"
)

// maxImageFormMemory bounds in-memory buffering of multipart uploads.
const maxImageFormMemory = 10 << 20

// ProductHandler serves the product catalog endpoints. Form routes
// validate with ProfileForm, JSON routes with ProfileAPI.
type ProductHandler struct {
	productService *service.ProductService
	images         imagestore.Store
	logger         zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *service.ProductService, images imagestore.Store, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		images:         images,
		logger:         logger.With().Str("handler", "product").Logger(),
	}
}

// productView augments a product with its stock classification.
type productView struct {
	*domain.Product
	StockStatus domain.StockStatus `json:"stock_status"`
}

func viewOf(p *domain.Product) productView {
	return productView{Product: p, StockStatus: p.StockStatus()}
}

func viewsOf(products []*domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, viewOf(p))
	}
	return views
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /products and GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	out, err := h.productService.List(r.Context(), service.ListProductsInput{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Page:     page,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products":    viewsOf(out.Products),
		"total":       out.Total,
		"page":        out.Page,
		"page_size":   out.PageSize,
		"total_pages": out.TotalPages,
	})
}

// Categories handles GET /products/categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productService.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"suggested":  domain.SuggestedCategories,
	})
}

// Get handles GET /products/{id}. Soft-deleted products resolve here
// so order history views can still show them.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"product": viewOf(product)})
}

// Image handles GET /products/{id}/image.
func (h *ProductHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if product.ImageRef == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "image not found"})
		return
	}

	reader, err := h.images.Open(r.Context(), product.ImageRef)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "image not found"})
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentTypeForRef(product.ImageRef))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func contentTypeForRef(ref string) string {
	switch {
	case strings.HasSuffix(ref, ".png"):
		return "image/png"
	case strings.HasSuffix(ref, ".gif"):
		return "image/gif"
	case strings.HasSuffix(ref, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// jsonProductRequest is the JSON write payload.
type jsonProductRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	MinimumStock *int    `json:"minimum_stock"`
	Description  string  `json:"description"`
}

func (req jsonProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:         req.Name,
		Category:     req.Category,
		Price:        req.Price,
		Stock:        req.Stock,
		MinimumStock: req.MinimumStock,
		Description:  req.Description,
	}
}

// formProductInput decodes a multipart or urlencoded product form,
// including its optional image file.
func formProductInput(r *http.Request) (service.ProductInput, error) {
	var input service.ProductInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageFormMemory); err != nil {
			return input, domain.NewValidationError([]string{"malformed form submission"})
		}
	} else if err := r.ParseForm(); err != nil {
		return input, domain.NewValidationError([]string{"malformed form submission"})
	}

	input.Name = r.PostFormValue("name")
	input.Category = r.PostFormValue("category")
	input.Description = r.PostFormValue("description")
	input.Price, _ = strconv.ParseFloat(r.PostFormValue("price"), 64)
	input.Stock, _ = strconv.Atoi(r.PostFormValue("stock"))

	if raw := r.PostFormValue("minimum_stock"); raw != "" {
		if minimum, err := strconv.Atoi(raw); err == nil {
			input.MinimumStock = &minimum
		}
	}

	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("image"); err == nil {
			input.Image = &service.ImageUpload{
				Reader:      file,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
			}
		}
	}

	return input, nil
}

// CreateForm handles POST /products (form profile: price >= 0).
func (h *ProductHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, service.ProfileForm)
}

// CreateAPI handles POST /api/products (API profile: price > 0).
func (h *ProductHandler) CreateAPI(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, service.ProfileAPI)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request, profile service.ValidationProfile) {
	sess := SessionFromContext(r.Context())

	input, err := h.decodeInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), input, profile, sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"product": viewOf(product)})
}

// UpdateForm handles POST /products/{id} (form profile).
func (h *ProductHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, service.ProfileForm)
}

// UpdateAPI handles PUT /api/products/{id} (API profile).
func (h *ProductHandler) UpdateAPI(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, service.ProfileAPI)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, profile service.ValidationProfile) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
		return
	}

	input, err := h.decodeInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, input, profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"product": viewOf(product)})
}

func (h *ProductHandler) decodeInput(r *http.Request) (service.ProductInput, error) {
	if r.Header.Get("Content-Type") == "application/json" {
		var req jsonProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return service.ProductInput{}, domain.NewValidationError([]string{"malformed request body"})
		}
		return req.toInput(), nil
	}
	return formProductInput(r)
}

// Delete handles POST /products/{id}/delete and DELETE /api/products/{id}.
// The response reports whether the record was hidden or removed.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
		return
	}

	out, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":    out.Mode,
		"message": out.Message,
	})
}
