package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ZhiquAI/aigrading-license-service/internal/application"
)

func (h *Handler) createCode(w http.ResponseWriter, r *http.Request) {
	var req application.CreateCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_code", err)
		return
	}
	rec, err := h.service.CreateCode(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_code", err)
		return
	}
	writeSuccess(w, http.StatusCreated, rec)
}

func (h *Handler) codeDetail(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CodeDetail(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeMappedError(r.Context(), w, "code_detail", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

type grantBonusRequest struct {
	Units int `json:"units"`
}

func (h *Handler) grantBonus(w http.ResponseWriter, r *http.Request) {
	var req grantBonusRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "grant_bonus", err)
		return
	}
	if err := h.service.GrantBonus(r.Context(), chi.URLParam(r, "device_id"), req.Units); err != nil {
		writeMappedError(r.Context(), w, "grant_bonus", err)
		return
	}
	writeMessage(w, http.StatusOK, "bonus granted")
}

func (h *Handler) deviceUsage(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.service.DeviceUsage(r.Context(), chi.URLParam(r, "device_id"), limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "device_usage", err)
		return
	}
	writeSuccess(w, http.StatusOK, items)
}
