package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/table"
	"github.com/mcoot/blackjack-go/internal/sse"
)

// EventsHandler streams table updates over server-sent events
type EventsHandler struct {
	tables     table.ControllerInterface
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(tables table.ControllerInterface, hubManager *sse.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		tables:     tables,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "events-handler")),
	}
}

// Stream handles GET /api/v1/tables/{id}/events. The first message is the
// caller's current view; later messages say what changed so the client can
// refetch its own view.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.TableID(mux.Vars(r)["id"])

	v, err := h.tables.Get(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	snapshot, err := json.Marshal(v)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Debug("event stream opened",
		slog.String("table_id", string(id)),
		slog.String("player_id", string(player.ID)),
	)
	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(id), player.ID, string(snapshot))
}
