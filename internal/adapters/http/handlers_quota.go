package http

import (
	"net/http"

	"github.com/ZhiquAI/aigrading-license-service/internal/application"
)

func (h *Handler) quotaCheck(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		deviceID = r.Header.Get("X-Device-Id")
	}

	resp, err := h.service.CheckQuota(r.Context(), deviceID)
	if err != nil {
		writeMappedError(r.Context(), w, "quota_check", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) quotaConsume(w http.ResponseWriter, r *http.Request) {
	var req application.ConsumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "quota_consume", err)
		return
	}
	resp, err := h.service.Consume(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "quota_consume", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
