package match

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"checkers_exe/internal/bootstrap"
	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/httpresponse"
	"checkers_exe/internal/statuses"
	matchuc "checkers_exe/internal/usecase/match"
	"checkers_exe/internal/utils"
)

type MatchHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	matchUC *matchuc.MatchUseCase
}

func NewMatchHandler(cfg bootstrap.Config, log *zap.SugaredLogger, matchUC *matchuc.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		cfg:     cfg,
		log:     log,
		matchUC: matchUC,
	}
}

// Routes mounts the match API. The join route and /codes/{code} address a
// match by its short code, every other {id} route by the match id.
func (h *MatchHandler) Routes(r chi.Router) {
	r.Route("/matches", func(r chi.Router) {
		r.Post("/", h.HandleCreateMatch)
		r.Get("/", h.HandleListMatches)
		r.Post("/{id}/join", h.HandleJoinMatch)
		r.Get("/{id}", h.HandleGetMatch)
		r.Post("/{id}/move", h.HandleSubmitMove)
		r.Post("/{id}/resign", h.HandleResign)
		r.Get("/{id}/moves", h.HandleLegalMoves)
		r.Get("/{id}/pdn", h.HandleExportPDN)
		r.Get("/{id}/ws", h.HandleWatch)
	})
	r.Get("/codes/{code}", h.HandleGetMatchByCode)
}

func (h *MatchHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if errors.Retryable(err) {
		w.Header().Set("Retry-After", "1")
	}
	if status == http.StatusInternalServerError {
		h.log.Errorw("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.log.Debugw("request rejected", "path", r.URL.Path, "kind", kind, "error", err)
	}
	httpresponse.WriteError(w, status, kind, err.Error())
}

func (h *MatchHandler) badRequest(w http.ResponseWriter, description string) {
	httpresponse.WriteError(w, http.StatusBadRequest, KindBadRequest, description)
}

func (h *MatchHandler) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req match.CreateMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Warnw("create match: bad body", "error", err)
		h.badRequest(w, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	m, err := h.matchUC.CreateMatch(r.Context(), req.Creator)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, match.CreateMatchResponse{
		MatchID: m.ID,
		Code:    m.Code,
		Board:   m.Board,
		Turn:    m.Turn,
		Status:  m.Status,
	})
}

func (h *MatchHandler) HandleJoinMatch(w http.ResponseWriter, r *http.Request) {
	var req match.JoinMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Warnw("join match: bad body", "error", err)
		h.badRequest(w, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	m, err := h.matchUC.JoinMatch(r.Context(), chi.URLParam(r, "id"), req.Joiner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, match.JoinMatchResponse{
		MatchID: m.ID,
		Players: m.Players,
	})
}

func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.matchUC.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, m)
}

func (h *MatchHandler) HandleGetMatchByCode(w http.ResponseWriter, r *http.Request) {
	m, err := h.matchUC.GetMatchByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, m)
}

func (h *MatchHandler) HandleSubmitMove(w http.ResponseWriter, r *http.Request) {
	var req match.SubmitMoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Warnw("submit move: bad body", "error", err)
		h.badRequest(w, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	m, err := h.matchUC.SubmitMove(r.Context(), chi.URLParam(r, "id"), req.From, req.To, req.By)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, m)
}

func (h *MatchHandler) HandleResign(w http.ResponseWriter, r *http.Request) {
	var req match.ResignRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Warnw("resign: bad body", "error", err)
		h.badRequest(w, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	m, err := h.matchUC.Resign(r.Context(), chi.URLParam(r, "id"), req.By)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, m)
}

// HandleLegalMoves answers for one square, given as row and col or as a
// 1-32 notation number in square, or for the whole side to move when
// neither is present.
func (h *MatchHandler) HandleLegalMoves(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := r.URL.Query()

	var (
		moves []checkers.Move
		err   error
	)
	switch {
	case query.Has("square"):
		n, convErr := strconv.Atoi(query.Get("square"))
		if convErr != nil {
			h.badRequest(w, "square must be an integer")
			return
		}
		sq, numErr := checkers.SquareFromNumber(n)
		if numErr != nil {
			h.writeError(w, r, fmt.Errorf("%w: square %d", errors.ErrInvalidCoordinate, n))
			return
		}
		moves, err = h.matchUC.LegalMoves(r.Context(), id, sq)
	case query.Has("row") || query.Has("col"):
		row, errRow := strconv.Atoi(query.Get("row"))
		col, errCol := strconv.Atoi(query.Get("col"))
		if errRow != nil || errCol != nil {
			h.badRequest(w, "row and col query parameters must be integers")
			return
		}
		moves, err = h.matchUC.LegalMoves(r.Context(), id, checkers.Square{Row: row, Col: col})
	default:
		moves, err = h.matchUC.TurnMoves(r.Context(), id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, match.LegalMovesResponse{Moves: moves})
}

func (h *MatchHandler) HandleExportPDN(w http.ResponseWriter, r *http.Request) {
	text, err := h.matchUC.ExportPDN(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteText(w, http.StatusOK, text)
}

// HandleListMatches lists the lobby. Only status=waiting is served; limit
// is capped at PAGE_LIMIT_MATCHES.
func (h *MatchHandler) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if raw := query.Get("status"); raw != "" {
		status, ok := statuses.Parse(raw)
		if !ok || status != statuses.WaitingForOpponent {
			h.badRequest(w, "only status=waiting can be listed")
			return
		}
	}
	limit := h.cfg.PageLimitMatches
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	matches, err := h.matchUC.ListOpenMatches(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, match.ListResponse{Matches: matches})
}
