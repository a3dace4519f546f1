package http

import (
	"net/http"

	"github.com/ZhiquAI/aigrading-license-service/internal/application"
)

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req application.RedeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "redeem", err)
		return
	}
	resp, err := h.service.Redeem(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "redeem", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// licenseStatus reads its scope from headers so extension clients can probe
// without a JSON body: X-Activation-Code is required, X-Device-Id optional.
func (h *Handler) licenseStatus(w http.ResponseWriter, r *http.Request) {
	code := r.Header.Get("X-Activation-Code")
	if code == "" {
		code = r.URL.Query().Get("code")
	}
	deviceID := r.Header.Get("X-Device-Id")
	if deviceID == "" {
		deviceID = r.URL.Query().Get("device_id")
	}

	resp, err := h.service.LicenseStatus(r.Context(), code, deviceID)
	if err != nil {
		writeMappedError(r.Context(), w, "license_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
