package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/middleware"
	"github.com/pairbond/pairbond-server/internal/service"
)

type PairHandler struct {
	pairService    *service.PairService
	sessionService *service.SessionService
}

func NewPairHandler(pairService *service.PairService, sessionService *service.SessionService) *PairHandler {
	return &PairHandler{
		pairService:    pairService,
		sessionService: sessionService,
	}
}

func (h *PairHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreatePair)
	r.Post("/join", h.JoinPair)
	r.Post("/login", h.Login)

	return r
}

type createPairRequest struct {
	PairName   string `json:"pairName"`
	Passphrase string `json:"passphrase"`
	UserName   string `json:"userName"`
}

type sessionResponse struct {
	SessionToken string           `json:"sessionToken"`
	Pair         service.PairInfo `json:"pair"`
	UserName     string           `json:"userName"`
	Message      string           `json:"message,omitempty"`
}

// POST /v1/pairs
func (h *PairHandler) CreatePair(w http.ResponseWriter, r *http.Request) {
	var req createPairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.PairName == "" {
		writeError(w, apperrors.MissingRequired("pairName"))
		return
	}
	if req.Passphrase == "" {
		writeError(w, apperrors.MissingRequired("passphrase"))
		return
	}
	if req.UserName == "" {
		writeError(w, apperrors.MissingRequired("userName"))
		return
	}

	ctx := r.Context()

	pair, err := h.pairService.Create(ctx, req.PairName, req.Passphrase, req.UserName)
	if err != nil {
		log.Error().Err(err).Msg("failed to create pair")
		writeError(w, err)
		return
	}

	token, _, err := h.sessionService.Issue(ctx, pair, req.UserName)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session after create")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionToken: token,
		Pair:         service.Info(pair),
		UserName:     req.UserName,
		Message:      "Pair created! Share the code and passphrase with your partner.",
	})
}

type joinPairRequest struct {
	PairCode   string `json:"pairCode"`
	Passphrase string `json:"passphrase"`
	UserName   string `json:"userName"`
}

// POST /v1/pairs/join
func (h *PairHandler) JoinPair(w http.ResponseWriter, r *http.Request) {
	var req joinPairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.PairCode == "" {
		writeError(w, apperrors.MissingRequired("pairCode"))
		return
	}
	if req.Passphrase == "" {
		writeError(w, apperrors.MissingRequired("passphrase"))
		return
	}
	if req.UserName == "" {
		writeError(w, apperrors.MissingRequired("userName"))
		return
	}

	ctx := r.Context()

	pair, err := h.pairService.Join(ctx, req.PairCode, req.Passphrase, req.UserName)
	if err != nil {
		writeError(w, err)
		return
	}

	token, _, err := h.sessionService.Issue(ctx, pair, req.UserName)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session after join")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionToken: token,
		Pair:         service.Info(pair),
		UserName:     req.UserName,
		Message:      "Successfully joined " + pair.PairName + "!",
	})
}

type loginRequest struct {
	PairCode   string `json:"pairCode"`
	Passphrase string `json:"passphrase"`
	UserName   string `json:"userName"`
}

// POST /v1/pairs/login
func (h *PairHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.PairCode == "" {
		writeError(w, apperrors.MissingRequired("pairCode"))
		return
	}
	if req.Passphrase == "" {
		writeError(w, apperrors.MissingRequired("passphrase"))
		return
	}
	if req.UserName == "" {
		writeError(w, apperrors.MissingRequired("userName"))
		return
	}

	ctx := r.Context()

	pair, err := h.pairService.Authenticate(ctx, req.PairCode, req.Passphrase)
	if err != nil {
		writeError(w, err)
		return
	}

	// identity must be one of the stored participants
	token, _, err := h.sessionService.Issue(ctx, pair, req.UserName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionToken: token,
		Pair:         service.Info(pair),
		UserName:     req.UserName,
		Message:      "Authentication successful",
	})
}

// GET /v1/pair
func (h *PairHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	pair, err := h.pairService.Get(r.Context(), session.PairCode)
	if err != nil {
		log.Error().Err(err).Msg("failed to load pair")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pair":     service.Info(pair),
		"userName": session.UserName,
		"userSlot": session.UserSlot,
	})
}

// POST /v1/logout
func (h *PairHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token != "" {
		if err := h.sessionService.Revoke(r.Context(), token); err != nil {
			log.Error().Err(err).Msg("failed to revoke session")
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
