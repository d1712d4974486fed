package repository

import (
	"context"

	"studyquest/internal/models"
	"studyquest/internal/store"
)

// ClaimRepository handles reward claims
type ClaimRepository struct {
	claims *collection[models.Claim]
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(s store.RecordStore) *ClaimRepository {
	return &ClaimRepository{
		claims: newCollection(s, store.Claims, func(c *models.Claim) string { return c.ID }),
	}
}

// GetClaimByID retrieves a claim, returning nil when absent
func (r *ClaimRepository) GetClaimByID(ctx context.Context, id string) (*models.Claim, error) {
	return r.claims.find(ctx, id)
}

// ListClaimsByUser returns every claim a user has made
func (r *ClaimRepository) ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	return r.claims.filter(ctx, func(c *models.Claim) bool { return c.UserID == userID })
}

// ListPendingClaims returns claims awaiting a decision for any of userIDs
func (r *ClaimRepository) ListPendingClaims(ctx context.Context, userIDs []string) ([]models.Claim, error) {
	owners := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		owners[id] = true
	}
	return r.claims.filter(ctx, func(c *models.Claim) bool {
		return c.Status == models.ClaimPending && owners[c.UserID]
	})
}

// ListClaims returns every claim
func (r *ClaimRepository) ListClaims(ctx context.Context) ([]models.Claim, error) {
	return r.claims.all(ctx)
}

// SaveClaim inserts or replaces a claim
func (r *ClaimRepository) SaveClaim(ctx context.Context, claim *models.Claim) error {
	return r.claims.put(ctx, claim)
}

// DeleteClaim removes a claim; used to undo a request whose user write failed
func (r *ClaimRepository) DeleteClaim(ctx context.Context, id string) error {
	return r.claims.remove(ctx, id)
}

// ReplaceAll overwrites every stored claim
func (r *ClaimRepository) ReplaceAll(ctx context.Context, claims []models.Claim) error {
	return r.claims.replaceAll(ctx, claims)
}

// Merge inserts or replaces each of claims in one collection write
func (r *ClaimRepository) Merge(ctx context.Context, claims []models.Claim) error {
	items := make([]*models.Claim, len(claims))
	for i := range claims {
		items[i] = &claims[i]
	}
	return r.claims.put(ctx, items...)
}
