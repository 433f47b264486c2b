package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/api/middleware"
	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/command"
	"github.com/example/lunch-orders/internal/query"
	"github.com/example/lunch-orders/internal/validation"
)

// Handlers is the thin HTTP edge over the command and query handlers. It
// translates requests into commands, outcomes into status codes, and nothing
// more; every business rule lives behind the command handler.
type Handlers struct {
	commands *command.Handler
	queries  *query.Handler
	log      *zap.Logger
}

func NewHandlers(commands *command.Handler, queries *query.Handler, log *zap.Logger) *Handlers {
	return &Handlers{commands: commands, queries: queries, log: log}
}

// Menu handlers

func (h *Handlers) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuID uuid.UUID `json:"menu_id"`
		Name   string    `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.MenuID == uuid.Nil {
		req.MenuID = uuid.New()
	}
	h.dispatch(w, r, command.CreateMenu{MenuID: req.MenuID, Name: req.Name}, http.StatusCreated)
}

func (h *Handlers) GetMenus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queries.ListMenus(r.Context()))
}

func (h *Handlers) GetMenu(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/menus/")
	m, ok := h.queries.GetMenu(r.Context(), id)
	if !ok {
		respondJSONError(w, "menu not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handlers) RenameMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := parseUUIDParam(w, r.URL.Path, "/menus/")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, command.RenameMenu{MenuID: menuID, Name: req.Name}, http.StatusOK)
}

func (h *Handlers) AddFilling(w http.ResponseWriter, r *http.Request) {
	menuID, ok := parseUUIDParam(w, r.URL.Path, "/menus/")
	if !ok {
		return
	}
	var req struct {
		FillingID   uuid.UUID `json:"filling_id"`
		Name        string    `json:"name"`
		AllowsBread bool      `json:"allows_bread"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FillingID == uuid.Nil {
		req.FillingID = uuid.New()
	}
	h.dispatch(w, r, command.AddFilling{
		MenuID:      menuID,
		FillingID:   req.FillingID,
		Name:        req.Name,
		AllowsBread: req.AllowsBread,
	}, http.StatusCreated)
}

func (h *Handlers) UpdateFilling(w http.ResponseWriter, r *http.Request) {
	menuID, fillingID, ok := parseNestedUUIDs(w, r.URL.Path, "/menus/", "/fillings/")
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		AllowsBread bool   `json:"allows_bread"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, command.UpdateFilling{
		MenuID:      menuID,
		FillingID:   fillingID,
		Name:        req.Name,
		AllowsBread: req.AllowsBread,
	}, http.StatusOK)
}

// Calendar handlers

func (h *Handlers) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CalendarID       uuid.UUID `json:"calendar_id"`
		OrdersOpenBeyond string    `json:"orders_open_beyond"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CalendarID == uuid.Nil {
		req.CalendarID = uuid.New()
	}
	h.dispatch(w, r, command.CreateCalendar{
		CalendarID:       req.CalendarID,
		OrdersOpenBeyond: req.OrdersOpenBeyond,
	}, http.StatusCreated)
}

func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/calendars/")
	c, ok := h.queries.GetCalendar(r.Context(), id)
	if !ok {
		respondJSONError(w, "calendar not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) WithdrawDate(w http.ResponseWriter, r *http.Request) {
	calendarID, ok := parseUUIDParam(w, r.URL.Path, "/calendars/")
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, command.WithdrawDate{CalendarID: calendarID, Date: req.Date}, http.StatusOK)
}

func (h *Handlers) ReinstateDate(w http.ResponseWriter, r *http.Request) {
	calendarID, date, ok := parseUUIDAndTail(w, r.URL.Path, "/calendars/", "/withdrawals/")
	if !ok {
		return
	}
	h.dispatch(w, r, command.ReinstateDate{CalendarID: calendarID, Date: date}, http.StatusOK)
}

func (h *Handlers) MoveCutoff(w http.ResponseWriter, r *http.Request) {
	calendarID, ok := parseUUIDParam(w, r.URL.Path, "/calendars/")
	if !ok {
		return
	}
	var req struct {
		OrdersOpenBeyond string `json:"orders_open_beyond"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, command.MoveOrdersOpenCutoff{
		CalendarID:       calendarID,
		OrdersOpenBeyond: req.OrdersOpenBeyond,
	}, http.StatusOK)
}

// Order handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID    uuid.UUID `json:"order_id"`
		MenuID     uuid.UUID `json:"menu_id"`
		CalendarID uuid.UUID `json:"calendar_id"`
		Date       string    `json:"date"`
		FillingID  uuid.UUID `json:"filling_id"`
		Bread      bool      `json:"bread"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.OrderID == uuid.Nil {
		req.OrderID = uuid.New()
	}
	h.dispatch(w, r, command.PlaceOrder{
		OrderID:    req.OrderID,
		MenuID:     req.MenuID,
		CalendarID: req.CalendarID,
		Date:       req.Date,
		FillingID:  req.FillingID,
		Bread:      req.Bread,
	}, http.StatusCreated)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if date := r.URL.Query().Get("date"); date != "" && actor.Role == "admin" {
		respondJSON(w, http.StatusOK, h.queries.ListOrdersForDate(r.Context(), date))
		return
	}
	if actor.Role == "admin" {
		respondJSON(w, http.StatusOK, h.queries.ListOrders(r.Context()))
		return
	}
	respondJSON(w, http.StatusOK, h.queries.ListOrdersByEditor(r.Context(), actor.ID))
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")
	o, ok := h.queries.GetOrder(r.Context(), id)
	if !ok {
		respondJSONError(w, "order not found", http.StatusNotFound)
		return
	}
	if !h.mayTouchOrder(w, r, o.Editor) {
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ChangeOrderFilling(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.authorizedOrderID(w, r)
	if !ok {
		return
	}
	var req struct {
		FillingID uuid.UUID `json:"filling_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, command.ChangeOrderFilling{OrderID: orderID, FillingID: req.FillingID}, http.StatusOK)
}

func (h *Handlers) ChangeOrderDate(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.authorizedOrderID(w, r)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, command.ChangeOrderDate{OrderID: orderID, Date: req.Date}, http.StatusOK)
}

func (h *Handlers) AddBread(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.authorizedOrderID(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, command.AddBread{OrderID: orderID}, http.StatusOK)
}

func (h *Handlers) RemoveBread(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.authorizedOrderID(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, command.RemoveBread{OrderID: orderID}, http.StatusOK)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.authorizedOrderID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	h.dispatch(w, r, command.CancelOrder{OrderID: orderID, Reason: req.Reason}, http.StatusOK)
}

// dispatch resolves the acting editor, runs the command and maps the outcome
// onto a response.
func (h *Handlers) dispatch(w http.ResponseWriter, r *http.Request, cmd command.Command, successStatus int) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	outcome, err := h.commands.HandleForUser(r.Context(), actor, cmd)
	if err != nil {
		if err == auth.ErrMissingIdentity {
			respondJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.log.Error("command failed", zap.Error(err))
		respondJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if outcome.Accepted {
		respondJSON(w, successStatus, outcome)
		return
	}
	respondJSON(w, rejectionStatus(outcome), outcome)
}

// rejectionStatus picks the HTTP status for a rejected outcome.
func rejectionStatus(outcome command.Outcome) int {
	for _, reason := range outcome.Reasons {
		switch reason.Code {
		case validation.CodeConcurrencyConflict:
			return http.StatusConflict
		case validation.CodeAggregateMissing:
			return http.StatusNotFound
		}
	}
	return http.StatusUnprocessableEntity
}

// authorizedOrderID parses the order id from the path and enforces that the
// caller owns the order (or is an admin). A missing read-model document is
// let through: the command pipeline rejects against the event log.
func (h *Handlers) authorizedOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	trimmed := extractPathParam(r.URL.Path, "/orders/")
	for _, suffix := range []string{"/filling", "/date", "/bread", "/cancel"} {
		trimmed = strings.TrimSuffix(trimmed, suffix)
	}

	orderID, err := uuid.Parse(trimmed)
	if err != nil {
		respondJSONError(w, "invalid order id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	if o, ok := h.queries.GetOrder(r.Context(), orderID.String()); ok {
		if !h.mayTouchOrder(w, r, o.Editor) {
			return uuid.Nil, false
		}
	}
	return orderID, true
}

func (h *Handlers) mayTouchOrder(w http.ResponseWriter, r *http.Request, owner string) bool {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if owner != actor.ID && actor.Role != "admin" {
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func parseUUIDParam(w http.ResponseWriter, path, prefix string) (uuid.UUID, bool) {
	raw := extractPathParam(path, prefix)
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondJSONError(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parseNestedUUIDs(w http.ResponseWriter, path, prefix, sep string) (uuid.UUID, uuid.UUID, bool) {
	outer, ok := parseUUIDParam(w, path, prefix)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	rest := extractPathParam(path, prefix)
	i := strings.Index(rest, sep)
	if i < 0 {
		respondJSONError(w, "invalid path", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	inner, err := uuid.Parse(rest[i+len(sep):])
	if err != nil {
		respondJSONError(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return outer, inner, true
}

func parseUUIDAndTail(w http.ResponseWriter, path, prefix, sep string) (uuid.UUID, string, bool) {
	outer, ok := parseUUIDParam(w, path, prefix)
	if !ok {
		return uuid.Nil, "", false
	}
	rest := extractPathParam(path, prefix)
	i := strings.Index(rest, sep)
	if i < 0 {
		respondJSONError(w, "invalid path", http.StatusBadRequest)
		return uuid.Nil, "", false
	}
	return outer, rest[i+len(sep):], true
}
