package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

const maxImageUploadBytes = 5 << 20

type ProductHandler struct {
	svc service.CatalogServiceInterface
}

func NewProductHandler(svc service.CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	query := repository.ProductListQuery{
		PageRequest: pageReq,
		Name:        strings.TrimSpace(r.URL.Query().Get("name")),
		InStock:     r.URL.Query().Get("in_stock") == "true",
	}
	res, err := h.svc.ListPaged(r.Context(), query)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "failed to list products")
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.svc.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "product not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to load product")
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid payload")
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateProductInput{
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Stock:       body.Stock,
	})
	if err != nil {
		if isProductValidationError(err) {
			response.Error(w, r, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to create product")
		return
	}

	p, _ := principal(r)
	observability.Audit(r, observability.AuditInput{
		EventName:   "catalog.product.created",
		ActorUserID: actorIDString(p),
		TargetType:  "product",
		TargetID:    strconvUserID(created.ID),
		Action:      "create",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	var body struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid payload")
		return
	}

	updated, err := h.svc.Update(r.Context(), productID, service.UpdateProductInput{
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Stock:       body.Stock,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "product not found")
		case isProductValidationError(err), errors.Is(err, service.ErrProductNoUpdates):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	p, _ := principal(r)
	observability.Audit(r, observability.AuditInput{
		EventName:   "catalog.product.updated",
		ActorUserID: actorIDString(p),
		TargetType:  "product",
		TargetID:    strconvUserID(productID),
		Action:      "update",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.DeleteByID(r.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "product not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to delete product")
		return
	}

	p, _ := principal(r)
	observability.Audit(r, observability.AuditInput{
		EventName:   "catalog.product.deleted",
		ActorUserID: actorIDString(p),
		TargetType:  "product",
		TargetID:    strconvUserID(productID),
		Action:      "delete",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

// UploadImage accepts a multipart form with a single "image" part and
// attaches it to the product.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	product, err := h.svc.AttachImage(r.Context(), productID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrFileTooBig):
			response.Error(w, r, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrInvalidFileType):
			response.Error(w, r, http.StatusUnsupportedMediaType, err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "failed to upload image")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}

func isProductValidationError(err error) bool {
	return errors.Is(err, service.ErrProductInvalidName) ||
		errors.Is(err, service.ErrProductInvalidDescription) ||
		errors.Is(err, service.ErrProductInvalidPrice) ||
		errors.Is(err, service.ErrProductInvalidStock)
}
