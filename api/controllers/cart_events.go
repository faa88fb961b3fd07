package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dvalenzuela-dev/shopbag-backend/api/responses"
	cartsvc "github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/types"
)

type cartEvent struct {
	State string        `json:"state"`
	Cart  *cartResponse `json:"cart,omitempty"`
	Error *string       `json:"error,omitempty"`
}

// CartEvents streams cart updates as server-sent events. Each mutation emits
// the full snapshot; the stream ends when the client disconnects.
func CartEvents(local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		updates := local.Subscribe(r.Context())
		for update := range updates {
			event := toCartEvent(update)
			payload, err := json.Marshal(event)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "failed to encode cart event", err)
				}
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func toCartEvent(update types.Result[cartsvc.Snapshot]) cartEvent {
	var event cartEvent
	update.Match(
		func(snapshot cartsvc.Snapshot) {
			resp := newCartResponse(&snapshot, nil)
			event = cartEvent{State: "success", Cart: &resp}
		},
		func(err error) {
			msg := err.Error()
			event = cartEvent{State: "failure", Error: &msg}
		},
		func() {
			event = cartEvent{State: "loading"}
		},
	)
	return event
}
