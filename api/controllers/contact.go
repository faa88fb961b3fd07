package controllers

import (
	"net/http"

	"github.com/dvalenzuela-dev/shopbag-backend/api/responses"
	"github.com/dvalenzuela-dev/shopbag-backend/api/validators"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Contact accepts a support message from the app. Delivery is asynchronous;
// the handler only validates and records the request.
func Contact(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"contact_email": payload.Email,
				"contact_name":  payload.Name,
			})
			logg.Info(ctx, "contact.received")
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "received"})
	}
}
