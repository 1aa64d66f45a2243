package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/arvera/comanda-service/internal/httputil"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/stock"
	"github.com/arvera/comanda-service/internal/stock/dto"
	"github.com/arvera/comanda-service/pkg/logger"
)

type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{uc: uc, logger: log}
}

func (h *StockHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /stock/report", h.report(""))
	mux.HandleFunc("GET /stock/low", h.report(model.SeverityLow))
	mux.HandleFunc("GET /stock/critical", h.report(model.SeverityCritical))
	mux.HandleFunc("GET /stock/out", h.report(model.SeverityOut))
	mux.HandleFunc("PUT /stock/adjust", h.Adjust)
	mux.HandleFunc("POST /stock/restock", h.RestockMany)
	mux.HandleFunc("GET /stock/movements", h.ListMovements)
}

func (h *StockHandler) report(severity model.StockSeverity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.uc.Report(r.Context(), severity)
		if err != nil {
			h.logger.Error("failed to build stock report", zap.Error(err))
			httputil.RespondError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, entries)
	}
}

func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var input dto.AdjustInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	input.ActorID = httputil.ActorID(r)

	result, err := h.uc.Adjust(r.Context(), &input)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *StockHandler) RestockMany(w http.ResponseWriter, r *http.Request) {
	var inputs []dto.RestockInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if len(inputs) == 0 {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "empty restock list"})
		return
	}

	actor := httputil.ActorID(r)
	for i := range inputs {
		inputs[i].ActorID = actor
	}

	// Always 200: per-item outcomes live in the result slots.
	results := h.uc.RestockMany(r.Context(), inputs)
	httputil.RespondJSON(w, http.StatusOK, results)
}

func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	filters := &dto.MovementFilters{
		ItemID:       q.Get("item_id"),
		MovementType: q.Get("movement_type"),
		Page:         page,
		PageSize:     pageSize,
	}

	movements, count, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"movements": movements,
		"total":     count,
	})
}
