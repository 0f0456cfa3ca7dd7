package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/gamesvc/imagegen"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
	"github.com/promptfighter/game-services/internal/gamesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	roomService    *service.RoomService
	sessionService *service.SessionService
	ledgerService  *service.LedgerService
	scoreService   *service.ScoreService
	cleanupService *service.CleanupService
	profileService *service.ProfileService
	images         imagegen.Provider
}

func NewHandler(roomService *service.RoomService, sessionService *service.SessionService,
	ledgerService *service.LedgerService, scoreService *service.ScoreService,
	cleanupService *service.CleanupService, profileService *service.ProfileService,
	images imagegen.Provider) *Handler {
	return &Handler{
		roomService:    roomService,
		sessionService: sessionService,
		ledgerService:  ledgerService,
		scoreService:   scoreService,
		cleanupService: cleanupService,
		profileService: profileService,
		images:         images,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) ok(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
		h.CreateResponse(w, Response{Code: code, Error: "internal error"})
		return
	}
	h.CreateResponse(w, Response{Code: code, Error: err.Error()})
}

// statusForError maps the service error taxonomy onto HTTP statuses. All of
// these are recoverable for the caller.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrWrongPhase),
		errors.Is(err, service.ErrStaleState),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrRoomNotJoinable),
		errors.Is(err, service.ErrInvalidVote):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// userID extracts the authenticated user id from the verified JWT claims.
func (h *Handler) userID(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return "", errors.New("token has no user_id claim")
	}
	return id, nil
}

func roomIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		return uuid.Nil, service.ErrNotFound
	}
	return id, nil
}

func (h *Handler) unauthorized(w http.ResponseWriter, err error) {
	h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "game service is running",
		Code:    http.StatusOK,
	})
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	var req struct {
		Name       string `json:"name"`
		GameMode   string `json:"game_mode"`
		Difficulty string `json:"difficulty"`
		MaxPlayers int    `json:"max_players"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "malformed request body")
		return
	}
	if req.MaxPlayers == 0 {
		req.MaxPlayers = 8
	}

	room, roster, err := h.roomService.CreateRoom(r.Context(), req.Name, req.GameMode, req.Difficulty, userID, req.MaxPlayers)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]interface{}{"room": room, "members": roster})
}

func (h *Handler) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.ListJoinable(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, rooms)
}

func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	var req struct {
		JoinCode string `json:"join_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JoinCode == "" {
		h.badRequest(w, "join_code is required")
		return
	}

	room, roster, err := h.roomService.JoinRoom(r.Context(), req.JoinCode, userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]interface{}{"room": room, "members": roster})
}

func (h *Handler) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	left, err := h.roomService.LeaveRoom(r.Context(), roomID, userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]bool{"left": left})
}

func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	state, err := h.roomService.GetRoomState(r.Context(), roomID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, state)
}

func (h *Handler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	sess, err := h.sessionService.GetSession(r.Context(), roomID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]interface{}{"session": sess, "deadline": sess.Deadline()})
}

func (h *Handler) RequestPhaseHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		Phase    string `json:"phase"`
		Duration int    `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phase == "" {
		h.badRequest(w, "phase is required")
		return
	}

	sess, err := h.sessionService.RequestPhase(r.Context(), roomID, userID, req.Phase, req.Duration)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, sess)
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		Prompt        string  `json:"prompt"`
		ImageURL      string  `json:"image_url"`
		AccuracyScore float64 `json:"accuracy_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "malformed request body")
		return
	}

	sub, err := h.ledgerService.Submit(r.Context(), roomID, userID, req.Prompt, req.ImageURL, req.AccuracyScore)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, sub)
}

func (h *Handler) ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	subs, err := h.ledgerService.RoundSubmissions(r.Context(), roomID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, subs)
}

func (h *Handler) VoteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		SubmissionID string `json:"submission_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "malformed request body")
		return
	}
	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		h.badRequest(w, "submission_id must be a uuid")
		return
	}

	vote, err := h.ledgerService.CastVote(r.Context(), roomID, userID, submissionID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, vote)
}

func (h *Handler) VotingProgressHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	progress, err := h.ledgerService.VotingProgress(r.Context(), roomID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, progress)
}

func (h *Handler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	results, err := h.scoreService.RoundResults(r.Context(), roomID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, results)
}

func (h *Handler) GenerateImageHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		h.badRequest(w, "prompt is required")
		return
	}

	url, err := h.images.Generate(r.Context(), req.Prompt)
	if err != nil {
		// a failed generation should read as "try again", not break the round
		log.Errorf("image generation failed: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusBadGateway, Error: "image generation failed, try again"})
		return
	}
	h.ok(w, map[string]string{"url": url})
}

func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	var req struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "malformed request body")
		return
	}

	profile, err := h.profileService.GetOrCreateProfile(r.Context(), models.Profile{
		UserID:    userID,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, profile)
}

func (h *Handler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.cleanupService.Sweep(r.Context(), service.TriggerManual)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, result)
}
