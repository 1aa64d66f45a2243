package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/arvera/comanda-service/internal/httputil"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/order"
	"github.com/arvera/comanda-service/internal/order/dto"
	"github.com/arvera/comanda-service/pkg/logger"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.Create)
	mux.HandleFunc("GET /orders", h.ListAll)
	mux.HandleFunc("GET /orders/{id}", h.Get)
	mux.HandleFunc("PUT /orders/{id}/kitchen-status", h.transition(model.StationKitchen))
	mux.HandleFunc("PUT /orders/{id}/bar-status", h.transition(model.StationBar))
	mux.HandleFunc("PUT /orders/{id}/cancel", h.Cancel)
	mux.HandleFunc("PUT /orders/{id}/delivered", h.MarkDelivered)
	mux.HandleFunc("GET /orders/kitchen", h.stationFeed(model.StationKitchen))
	mux.HandleFunc("GET /orders/bar", h.stationFeed(model.StationBar))
	mux.HandleFunc("GET /orders/waiter/{creatorID}", h.WaiterFeed)
	mux.HandleFunc("GET /orders/table/{tableID}", h.ListByTable)
	mux.HandleFunc("GET /orders/cancelled", h.ListCancelled)
	mux.HandleFunc("GET /orders/admin/summary", h.AdminFeed)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if input.CreatedBy == "" {
		input.CreatedBy = httputil.ActorID(r)
	}

	o, err := h.uc.CreateOrder(r.Context(), &input)
	if err != nil {
		h.logger.Warn("order creation rejected", zap.Error(err))
		httputil.RespondError(w, err)
		return
	}

	h.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("table_id", o.TableID),
		zap.Int("lines", len(o.Lines)))
	httputil.RespondJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) transition(station model.Station) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input dto.TransitionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		input.OrderID = r.PathValue("id")
		input.Station = station

		o, err := h.uc.TransitionStation(r.Context(), &input)
		if err != nil {
			httputil.RespondError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, o)
	}
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var input dto.CancelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	input.OrderID = r.PathValue("id")
	input.ActorID = httputil.ActorID(r)

	o, err := h.uc.CancelOrder(r.Context(), &input)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.logger.Info("order cancelled", zap.String("order_id", o.ID))
	httputil.RespondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	var input dto.DeliverInput
	// Body is optional: an empty read means "current version".
	_ = json.NewDecoder(r.Body).Decode(&input)
	input.OrderID = r.PathValue("id")

	o, err := h.uc.MarkDelivered(r.Context(), &input)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) stationFeed(station model.Station) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeReady := r.URL.Query().Get("include_ready") == "true"
		orders, err := h.uc.StationFeed(r.Context(), station, includeReady)
		if err != nil {
			httputil.RespondError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) WaiterFeed(w http.ResponseWriter, r *http.Request) {
	orders, err := h.uc.WaiterFeed(r.Context(), r.PathValue("creatorID"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListByTable(w http.ResponseWriter, r *http.Request) {
	orders, err := h.uc.ListByTable(r.Context(), r.PathValue("tableID"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListCancelled(w http.ResponseWriter, r *http.Request) {
	orders, err := h.uc.ListCancelled(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.AdminFeed(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, summary.Orders)
}

func (h *OrderHandler) AdminFeed(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.AdminFeed(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, summary)
}
