package handlers

import (
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/service"
	"studyquest/internal/validation"
)

// RewardHandler serves the reward catalog and the claim workflow
type RewardHandler struct {
	rewardService *service.RewardService
	authService   *service.AuthService
	log           *logger.Logger
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(rewardService *service.RewardService, authService *service.AuthService, log *logger.Logger) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
		authService:   authService,
		log:           log,
	}
}

// ListRewards returns the catalog
func (h *RewardHandler) ListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewardService.ListRewards(r.Context())
	if err != nil {
		respondServiceError(w, h.log, "list rewards", err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

// CreateReward adds a catalog entry
func (h *RewardHandler) CreateReward(w http.ResponseWriter, r *http.Request) {
	var req validation.RewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd, err := validation.ParseReward(req)
	if err != nil {
		respondServiceError(w, h.log, "create reward", err)
		return
	}

	reward, err := h.rewardService.CreateReward(r.Context(), cmd)
	if err != nil {
		respondServiceError(w, h.log, "create reward", err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

// UpdateReward edits a catalog entry. Existing claims keep their snapshot.
func (h *RewardHandler) UpdateReward(w http.ResponseWriter, r *http.Request) {
	var req validation.RewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd, err := validation.ParseReward(req)
	if err != nil {
		respondServiceError(w, h.log, "update reward", err)
		return
	}

	reward, err := h.rewardService.UpdateReward(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		respondServiceError(w, h.log, "update reward", err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}

// RequestClaim reserves points for a reward on behalf of the student
func (h *RewardHandler) RequestClaim(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	claim, err := h.rewardService.RequestClaim(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.log, "request claim", err)
		return
	}

	h.log.Info("claim requested", "claim_id", claim.ID, "user_id", user.ID, "cost", claim.Cost)
	writeJSON(w, http.StatusCreated, claim)
}

// ListClaims returns a student's own claims, or for guardians the pending
// claims of their students. Guardians may pass ?student_id for the full
// history of one student.
func (h *RewardHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var (
		claims []models.Claim
		err    error
	)
	switch {
	case user.IsStudent():
		claims, err = h.rewardService.ListClaims(r.Context(), user.ID)
	case r.URL.Query().Get("student_id") != "":
		student, lookupErr := h.authService.GetUser(r.Context(), r.URL.Query().Get("student_id"))
		if lookupErr != nil {
			respondServiceError(w, h.log, "list claims", lookupErr)
			return
		}
		if !h.authService.CanManage(user, student) {
			respondServiceError(w, h.log, "list claims", service.ErrUserNotFound)
			return
		}
		claims, err = h.rewardService.ListClaims(r.Context(), student.ID)
	default:
		claims, err = h.rewardService.ListPendingClaimsForGuardian(r.Context(), user.ID)
	}
	if err != nil {
		respondServiceError(w, h.log, "list claims", err)
		return
	}
	if claims == nil {
		claims = []models.Claim{}
	}
	writeJSON(w, http.StatusOK, claims)
}

type processClaimRequest struct {
	Decision string `json:"decision"`
}

// ProcessClaim approves or rejects a pending claim
func (h *RewardHandler) ProcessClaim(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	var req processClaimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	decision, err := validation.ParseDecision(req.Decision)
	if err != nil {
		respondServiceError(w, h.log, "process claim", err)
		return
	}

	claim, err := h.rewardService.GetClaim(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.log, "process claim", err)
		return
	}
	student, err := h.authService.GetUser(r.Context(), claim.UserID)
	if err != nil {
		respondServiceError(w, h.log, "process claim", err)
		return
	}
	if !h.authService.CanManage(actor, student) {
		respondServiceError(w, h.log, "process claim", service.ErrClaimNotFound)
		return
	}

	processed, err := h.rewardService.ProcessClaim(r.Context(), claim.ID, claim.UserID, decision)
	if err != nil {
		respondServiceError(w, h.log, "process claim", err)
		return
	}

	h.log.Info("claim processed", "claim_id", processed.ID, "status", processed.Status, "by", actor.ID)
	writeJSON(w, http.StatusOK, processed)
}
