package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/api/request"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/bot"
	"github.com/mcoot/blackjack-go/internal/services/table"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

// BotRunner plays the bot seats at a table
type BotRunner interface {
	ProcessBotActions(ctx context.Context, tableID model.TableID) ([]bot.BotAction, error)
}

// TableHandler handles table endpoints
type TableHandler struct {
	tables table.ControllerInterface
	bots   BotRunner
	logger *slog.Logger
}

// NewTableHandler creates a new table handler. bots may be nil.
func NewTableHandler(tables table.ControllerInterface, bots BotRunner, logger *slog.Logger) *TableHandler {
	return &TableHandler{
		tables: tables,
		bots:   bots,
		logger: logger.With(slog.String("component", "table-handler")),
	}
}

// Create handles POST /api/v1/tables
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	mode := model.TableMode(strings.ToLower(req.Mode))
	switch mode {
	case "", model.TableModeSolo, model.TableModePvP:
	default:
		WriteError(w, NewInvalidRequestError("mode must be solo or pvp"))
		return
	}

	v, err := h.tables.Create(r.Context(), *player, table.CreateOptions{
		Mode:        mode,
		Decks:       req.Decks,
		HitSoft17:   req.S17,
		MinBet:      req.MinBet,
		Code:        model.TableCode(strings.ToUpper(req.Code)),
		Bots:        req.Bots,
		BotStrategy: req.BotStrategy,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, h.afterBots(r.Context(), v, player.ID))
}

// Join handles POST /api/v1/tables/join
func (h *TableHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.JoinTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	v, err := h.tables.Join(r.Context(), model.TableCode(req.Code), *player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, v)
}

// Get handles GET /api/v1/tables/{id}
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.TableID(mux.Vars(r)["id"])

	v, err := h.tables.Get(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, v)
}

// Act handles POST /api/v1/tables/{id}/actions
func (h *TableHandler) Act(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.TableID(mux.Vars(r)["id"])

	var req request.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	action, err := model.ParseAction(strings.ToLower(req.Action))
	if err != nil {
		WriteError(w, err)
		return
	}

	v, err := h.tables.Act(r.Context(), id, player.ID, model.Intent{
		Action: action,
		HandID: model.HandID(req.HandID),
		Amount: req.Amount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.afterBots(r.Context(), v, player.ID))
}

// afterBots lets any bot seats act and returns the table as it then stands.
// Bot failures never fail the human's request.
func (h *TableHandler) afterBots(ctx context.Context, v *view.TableView, viewer model.PlayerID) *view.TableView {
	if h.bots == nil || !hasBots(v) {
		return v
	}

	actions, err := h.bots.ProcessBotActions(ctx, v.TableID)
	if err != nil {
		h.logger.Warn("bot actions failed",
			slog.String("table_id", string(v.TableID)),
			slog.String("error", err.Error()),
		)
	}
	if len(actions) == 0 {
		return v
	}

	latest, err := h.tables.Get(ctx, v.TableID, viewer)
	if err != nil {
		return v
	}
	return latest
}

func hasBots(v *view.TableView) bool {
	for _, p := range v.Players {
		if p.IsBot {
			return true
		}
	}
	return false
}
