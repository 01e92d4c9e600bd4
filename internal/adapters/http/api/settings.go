package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/twinkle/internal/app"
	"github.com/okian/twinkle/internal/domain/breathing"
	"github.com/okian/twinkle/internal/domain/twinkle"
)

// maxSettingsBody bounds POST /settings payloads.
const maxSettingsBody = 1 << 16

// SettingsDependencies reads and replaces the overlay settings.
type SettingsDependencies interface {
	Settings() service.Settings
	Reconfigure(ctx context.Context, settings service.Settings) error
}

// SettingsHandler handles settings requests.
type SettingsHandler struct {
	deps SettingsDependencies
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(deps SettingsDependencies) *SettingsHandler {
	return &SettingsHandler{deps: deps}
}

// HandleSettings handles GET and POST /settings. A POST body is merged over
// the current settings, so partial updates are allowed.
func (h *SettingsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Settings())
	case http.MethodPost:
		settings := h.deps.Settings()
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingsBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		if err := h.deps.Reconfigure(r.Context(), settings); err != nil {
			switch {
			case errors.Is(err, service.ErrNotStarted):
				writeError(w, http.StatusConflict, "not_started", err)
			case errors.Is(err, service.ErrInvalidSettings),
				errors.Is(err, twinkle.ErrInvalidConfig),
				errors.Is(err, twinkle.ErrCycleOverrun),
				errors.Is(err, breathing.ErrInvalidConfig):
				writeError(w, http.StatusBadRequest, "invalid_settings", err)
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err)
			}
			return
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		http.NotFound(w, r)
	}
}
