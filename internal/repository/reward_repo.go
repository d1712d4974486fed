package repository

import (
	"context"

	"studyquest/internal/models"
	"studyquest/internal/store"
)

// RewardRepository handles the reward catalog
type RewardRepository struct {
	rewards *collection[models.Reward]
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(s store.RecordStore) *RewardRepository {
	return &RewardRepository{
		rewards: newCollection(s, store.Rewards, func(r *models.Reward) string { return r.ID }),
	}
}

// GetRewardByID retrieves a reward, returning nil when absent
func (r *RewardRepository) GetRewardByID(ctx context.Context, id string) (*models.Reward, error) {
	return r.rewards.find(ctx, id)
}

// ListRewards returns the full catalog
func (r *RewardRepository) ListRewards(ctx context.Context) ([]models.Reward, error) {
	return r.rewards.all(ctx)
}

// SaveReward inserts or replaces a catalog entry
func (r *RewardRepository) SaveReward(ctx context.Context, reward *models.Reward) error {
	return r.rewards.put(ctx, reward)
}

// ReplaceAll overwrites the catalog
func (r *RewardRepository) ReplaceAll(ctx context.Context, rewards []models.Reward) error {
	return r.rewards.replaceAll(ctx, rewards)
}

// Merge inserts or replaces each of rewards in one collection write
func (r *RewardRepository) Merge(ctx context.Context, rewards []models.Reward) error {
	items := make([]*models.Reward, len(rewards))
	for i := range rewards {
		items[i] = &rewards[i]
	}
	return r.rewards.put(ctx, items...)
}
