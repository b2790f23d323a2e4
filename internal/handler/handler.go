package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/calc"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/repository"
	"github.com/Dan9191/autosmc/internal/service"
	"github.com/Dan9191/autosmc/internal/utils"
)

const defaultInstallments = 48

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts every route on r
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/sessions", h.OpenSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", h.CloseSession).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/brand", h.ChooseBrand).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{id}/model", h.ChooseModel).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{id}/year", h.ChooseYear).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{id}/report", h.Report).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/report.csv", h.ExportCSV).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/report/email", h.EmailReport).Methods(http.MethodPost)

	r.HandleFunc("/compare", h.Compare).Methods(http.MethodGet)
	r.HandleFunc("/financing", h.Financing).Methods(http.MethodGet)
	r.HandleFunc("/reference-rate", h.ReferenceRate).Methods(http.MethodGet)
}

type choiceRequest struct {
	Name string `json:"name"`
}

type optionsResponse struct {
	Session   *models.Session       `json:"session"`
	Step      string                `json:"step"`
	Options   []models.CatalogEntry `json:"options"`
	Available bool                  `json:"available"`
}

type valuationResponse struct {
	Session   *models.Session          `json:"session"`
	Valuation *models.VehicleValuation `json:"valuation"`
	Available bool                     `json:"available"`
}

func newOptionsResponse(s *models.Session, step service.Step, options []models.CatalogEntry) optionsResponse {
	if options == nil {
		options = []models.CatalogEntry{}
	}
	return optionsResponse{Session: s, Step: step.String(), Options: options, Available: len(options) > 0}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OpenSession creates a selector panel and returns the brand options
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	session, brands, err := h.svc.OpenSession(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newOptionsResponse(session, service.StepBrand, brands))
}

// GetSession returns the current selection
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

// CloseSession discards a selector panel
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChooseBrand handles the brand dropdown
func (h *Handler) ChooseBrand(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeChoice(w, r)
	if !ok {
		return
	}
	session, options, err := h.svc.ChooseBrand(r.Context(), mux.Vars(r)["id"], name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOptionsResponse(session, service.StepModel, options))
}

// ChooseModel handles the model dropdown
func (h *Handler) ChooseModel(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeChoice(w, r)
	if !ok {
		return
	}
	session, options, err := h.svc.ChooseModel(r.Context(), mux.Vars(r)["id"], name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOptionsResponse(session, service.StepYear, options))
}

// ChooseYear handles the year/version dropdown and returns the valuation
func (h *Handler) ChooseYear(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeChoice(w, r)
	if !ok {
		return
	}
	session, err := h.svc.ChooseYear(r.Context(), mux.Vars(r)["id"], name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, valuationResponse{
		Session:   session,
		Valuation: session.Valuation,
		Available: session.Valuation != nil,
	})
}

// Report returns the detailed market report, with financing when installments is given
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rate, err := h.monthlyRate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	installments, err := queryInt(r, "installments", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}

	report, err := h.svc.Report(r.Context(), mux.Vars(r)["id"], rate, installments)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// ExportCSV downloads the cost table
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportCSV(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", models.ReportFileName))
	if _, err := w.Write(data); err != nil {
		h.log.Errorf("Error writing CSV: %v", err)
	}
}

// EmailReport sends the report to {"to": "..."}
func (h *Handler) EmailReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	addr, err := mail.ParseAddress(req.To)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("invalid email address"))
		return
	}

	if err := h.svc.EmailReport(r.Context(), mux.Vars(r)["id"], addr.Address); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent", "to": addr.Address})
}

// Compare finances the vehicles of sessions a and b side by side
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	idA, idB := q.Get("a"), q.Get("b")
	if idA == "" || idB == "" {
		h.writeJSON(w, http.StatusBadRequest, errorBody("parameters a and b are required"))
		return
	}
	rate, err := h.monthlyRate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	installments, err := queryInt(r, "installments", defaultInstallments)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cmp, err := h.svc.Compare(r.Context(), idA, idB, rate, installments)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cmp)
}

// Financing quotes an arbitrary value
func (h *Handler) Financing(w http.ResponseWriter, r *http.Request) {
	value, ok, err := queryFloat(r, "value")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody("parameter value is required"))
		return
	}
	rate, err := h.monthlyRate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	installments, err := queryInt(r, "installments", defaultInstallments)
	if err != nil {
		h.writeError(w, err)
		return
	}

	quote, err := h.svc.Quote(value, rate, installments)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// ReferenceRate returns the suggested monthly financing rate
func (h *Handler) ReferenceRate(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.ReferenceRate(r.Context()))
}

func (h *Handler) decodeChoice(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return "", false
	}
	return req.Name, true
}

type badParamError struct {
	name string
	err  error
}

func (e *badParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.name, e.err)
}

// queryFloat reads a float parameter; ok is false when it is absent
func queryFloat(r *http.Request, name string) (v float64, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, &badParamError{name: name, err: err}
	}
	return v, true, nil
}

// monthlyRate reads ?rate=, using the configured default only when it is absent.
// An explicit rate=0 is passed through and rejected by the calculator.
func (h *Handler) monthlyRate(r *http.Request) (float64, error) {
	rate, ok, err := queryFloat(r, "rate")
	if err != nil {
		return 0, err
	}
	if !ok {
		return h.svc.DefaultMonthlyRate(), nil
	}
	return rate, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &badParamError{name: name, err: err}
	}
	return v, nil
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var perr *utils.ParseError
	var bad *badParamError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownOption), errors.Is(err, calc.ErrInvalidFinancingParameters):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStepOrder), errors.Is(err, service.ErrNoValuation):
		return http.StatusConflict
	case errors.As(err, &perr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrMailDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", err)
	}
	h.writeJSON(w, status, errorBody(err.Error()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Error encoding response: %v", err)
	}
}
