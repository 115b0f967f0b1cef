package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/echi/timecapsule/internal/common"
	"github.com/echi/timecapsule/internal/server/services"
)

const maxUploadBytes = 32 << 20

type createResponse struct {
	ID string `json:"id"`
}

type viewResponse struct {
	Status       string   `json:"status"`
	DeliveryDate string   `json:"delivery_date,omitempty"`
	Message      string   `json:"message,omitempty"`
	Images       []string `json:"images,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// handleCreateCapsule accepts a multipart form with message, recipient_email,
// delivery_date and zero or more images files (submission order preserved).
func (a *API) handleCreateCapsule(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := services.CreateRequest{
		Message:        r.FormValue("message"),
		RecipientEmail: r.FormValue("recipient_email"),
		DeliveryDate:   r.FormValue("delivery_date"),
	}

	var closers []interface{ Close() error }
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "error reading uploaded image")
				return
			}
			closers = append(closers, f)
			req.Images = append(req.Images, services.ImageUpload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        f,
			})
		}
	}

	id, err := a.capsules.Create(r.Context(), a.now().In(a.loc), req)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error(r.Context(), "capsule creation failed", "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, "failed to seal capsule")
		return
	}

	respondWithJSON(w, http.StatusCreated, createResponse{ID: id})
}

// handleViewCapsule returns not-found, locked (delivery date only) or the
// revealed capsule content.
func (a *API) handleViewCapsule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	res, err := a.capsules.View(r.Context(), id, a.now().In(a.loc))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "capsule not found")
			return
		}
		a.logger.Error(r.Context(), "capsule view failed", "id", id, "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, common.ErrInternal.Error())
		return
	}

	if res.Outcome == services.GateLocked {
		respondWithJSON(w, http.StatusOK, viewResponse{
			Status:       "locked",
			DeliveryDate: res.DeliveryDate.Format(time.DateOnly),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, viewResponse{
		Status:       "revealed",
		DeliveryDate: res.DeliveryDate.Format(time.DateOnly),
		Message:      res.Capsule.Message,
		Images:       res.Capsule.Images,
		CreatedAt:    res.Capsule.CreatedAt.Format(time.RFC3339),
	})
}

// handleSweep runs one delivery sweep and returns its report. Reached only
// through withCronAuth.
func (a *API) handleSweep(w http.ResponseWriter, r *http.Request) {
	report, err := a.sweep.Run(r.Context(), a.now().In(a.loc))
	if err != nil {
		a.logger.Error(r.Context(), "sweep run failed", "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
