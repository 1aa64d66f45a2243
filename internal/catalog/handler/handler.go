package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/arvera/comanda-service/internal/catalog"
	"github.com/arvera/comanda-service/internal/catalog/dto"
	"github.com/arvera/comanda-service/internal/httputil"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/pkg/logger"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: log}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /items", h.ListItems)
	mux.HandleFunc("GET /items/{id}", h.GetItem)
	mux.HandleFunc("PUT /items/{id}/availability", h.SetAvailability)
	mux.HandleFunc("GET /extras", h.ListExtras)
	mux.HandleFunc("GET /categories", h.ListCategories)
}

func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	filters := &dto.ItemFilters{
		CategoryID:    q.Get("category_id"),
		SubcategoryID: q.Get("subcategory_id"),
		Station:       model.Station(q.Get("station")),
		OnlyAvailable: q.Get("available") == "true",
		Search:        q.Get("search"),
		Page:          page,
		PageSize:      pageSize,
	}

	items, count, err := h.uc.ListItems(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list menu items", zap.Error(err))
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": count,
	})
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.uc.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var input dto.SetAvailabilityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	item, err := h.uc.SetAvailability(r.Context(), r.PathValue("id"), input.Available)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) ListExtras(w http.ResponseWriter, r *http.Request) {
	extras, err := h.uc.ListExtras(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, extras)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.uc.ListCategories(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, categories)
}
