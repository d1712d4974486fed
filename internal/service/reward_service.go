package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studyquest/internal/keylock"
	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/validation"
)

// Notifier is told about new claims so the guardian can act on them
type Notifier interface {
	NotifyClaimRequested(ctx context.Context, guardian, student *models.User, claim *models.Claim) error
}

// RewardService owns the reward catalog and the claim state machine
type RewardService struct {
	userRepo   *repository.UserRepository
	rewardRepo *repository.RewardRepository
	claimRepo  *repository.ClaimRepository
	locks      *keylock.Map
	notifier   Notifier
	log        *logger.Logger
	now        func() time.Time
}

// NewRewardService creates a new reward service. notifier may be nil.
func NewRewardService(
	userRepo *repository.UserRepository,
	rewardRepo *repository.RewardRepository,
	claimRepo *repository.ClaimRepository,
	locks *keylock.Map,
	notifier Notifier,
	log *logger.Logger,
) *RewardService {
	return &RewardService{
		userRepo:   userRepo,
		rewardRepo: rewardRepo,
		claimRepo:  claimRepo,
		locks:      locks,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// RequestClaim opens a pending claim for a reward the user can afford.
// Points are not debited until the claim is approved.
func (s *RewardService) RequestClaim(ctx context.Context, userID, rewardID string) (*models.Claim, error) {
	claim, user, err := s.requestClaim(ctx, userID, rewardID)
	if err != nil {
		return nil, err
	}
	s.notifyGuardian(ctx, user, claim)
	return claim, nil
}

func (s *RewardService) requestClaim(ctx context.Context, userID, rewardID string) (*models.Claim, *models.User, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	reward, err := s.rewardRepo.GetRewardByID(ctx, rewardID)
	if err != nil {
		return nil, nil, persistenceError("load reward", err)
	}
	if reward == nil {
		return nil, nil, ErrRewardNotFound
	}

	if user.Points < reward.Cost {
		return nil, nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, user.Points, reward.Cost)
	}

	now := s.now()
	claim := &models.Claim{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		RewardID:    reward.ID,
		RewardName:  reward.Name,
		Cost:        reward.Cost,
		Status:      models.ClaimPending,
		RequestedAt: now,
	}
	if err := s.claimRepo.SaveClaim(ctx, claim); err != nil {
		return nil, nil, persistenceError("save claim", err)
	}

	user.AddPendingReward(claim.ID)
	user.UpdatedAt = now
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if derr := s.claimRepo.DeleteClaim(ctx, claim.ID); derr != nil {
			s.log.Error("failed to remove orphaned claim", "claim_id", claim.ID, "error", derr)
		}
		return nil, nil, persistenceError("save user", err)
	}

	return claim, user, nil
}

// ProcessClaim moves a pending claim to approved or rejected. Approval
// debits the cost snapshotted on the claim, with no floor on the balance.
func (s *RewardService) ProcessClaim(ctx context.Context, claimID, userID string, decision models.ClaimStatus) (*models.Claim, error) {
	if decision != models.ClaimApproved && decision != models.ClaimRejected {
		return nil, validation.ValidationError{Field: "decision", Message: "decision must be approved or rejected"}
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	claim, err := s.claimRepo.GetClaimByID(ctx, claimID)
	if err != nil {
		return nil, persistenceError("load claim", err)
	}
	if claim == nil || claim.UserID != userID {
		return nil, ErrClaimNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if claim.Status != models.ClaimPending {
		return nil, fmt.Errorf("%w: claim is %s", ErrInvalidTransition, claim.Status)
	}

	original := *claim
	now := s.now()
	claim.Status = decision
	claim.ProcessedAt = &now
	if err := s.claimRepo.SaveClaim(ctx, claim); err != nil {
		return nil, persistenceError("save claim", err)
	}

	if decision == models.ClaimApproved {
		user.Points -= claim.Cost
		user.Level = models.LevelForPoints(user.Points)
	}
	user.RemovePendingReward(claim.ID)
	user.UpdatedAt = now
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if rerr := s.claimRepo.SaveClaim(ctx, &original); rerr != nil {
			s.log.Error("failed to restore claim after user save failure", "claim_id", claim.ID, "error", rerr)
		}
		return nil, persistenceError("save user", err)
	}

	s.log.Info("claim processed", "claim_id", claim.ID, "user_id", userID, "decision", decision, "cost", claim.Cost)
	return claim, nil
}

// GetClaim retrieves a claim by id
func (s *RewardService) GetClaim(ctx context.Context, claimID string) (*models.Claim, error) {
	claim, err := s.claimRepo.GetClaimByID(ctx, claimID)
	if err != nil {
		return nil, persistenceError("load claim", err)
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	return claim, nil
}

// ListClaims returns every claim a user has made
func (s *RewardService) ListClaims(ctx context.Context, userID string) ([]models.Claim, error) {
	claims, err := s.claimRepo.ListClaimsByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("list claims", err)
	}
	return claims, nil
}

// ListPendingClaimsForGuardian returns pending claims of the guardian's students
func (s *RewardService) ListPendingClaimsForGuardian(ctx context.Context, guardianID string) ([]models.Claim, error) {
	students, err := s.userRepo.ListStudentsByGuardian(ctx, guardianID)
	if err != nil {
		return nil, persistenceError("list students", err)
	}
	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	claims, err := s.claimRepo.ListPendingClaims(ctx, ids)
	if err != nil {
		return nil, persistenceError("list claims", err)
	}
	return claims, nil
}

// PendingDigests groups a guardian's pending claims per student
func (s *RewardService) PendingDigests(ctx context.Context, guardianID string) ([]PendingDigest, error) {
	students, err := s.userRepo.ListStudentsByGuardian(ctx, guardianID)
	if err != nil {
		return nil, persistenceError("list students", err)
	}

	var digests []PendingDigest
	for _, st := range students {
		claims, err := s.claimRepo.ListPendingClaims(ctx, []string{st.ID})
		if err != nil {
			return nil, persistenceError("list claims", err)
		}
		if len(claims) > 0 {
			digests = append(digests, PendingDigest{Student: st, Claims: claims})
		}
	}
	return digests, nil
}

// CreateReward adds a catalog entry
func (s *RewardService) CreateReward(ctx context.Context, cmd validation.RewardCommand) (*models.Reward, error) {
	reward := &models.Reward{
		ID:          uuid.NewString(),
		Name:        cmd.Name,
		Cost:        cmd.Cost,
		Description: cmd.Description,
		Icon:        cmd.Icon,
		CreatedAt:   s.now(),
	}
	if err := s.rewardRepo.SaveReward(ctx, reward); err != nil {
		return nil, persistenceError("save reward", err)
	}
	return reward, nil
}

// UpdateReward edits a catalog entry. Outstanding claims keep their
// snapshotted name and cost.
func (s *RewardService) UpdateReward(ctx context.Context, rewardID string, cmd validation.RewardCommand) (*models.Reward, error) {
	reward, err := s.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	reward.Name = cmd.Name
	reward.Cost = cmd.Cost
	reward.Description = cmd.Description
	reward.Icon = cmd.Icon
	if err := s.rewardRepo.SaveReward(ctx, reward); err != nil {
		return nil, persistenceError("save reward", err)
	}
	return reward, nil
}

// GetReward retrieves a catalog entry
func (s *RewardService) GetReward(ctx context.Context, rewardID string) (*models.Reward, error) {
	reward, err := s.rewardRepo.GetRewardByID(ctx, rewardID)
	if err != nil {
		return nil, persistenceError("load reward", err)
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	return reward, nil
}

// ListRewards returns the catalog
func (s *RewardService) ListRewards(ctx context.Context) ([]models.Reward, error) {
	rewards, err := s.rewardRepo.ListRewards(ctx)
	if err != nil {
		return nil, persistenceError("list rewards", err)
	}
	return rewards, nil
}

func (s *RewardService) notifyGuardian(ctx context.Context, student *models.User, claim *models.Claim) {
	if s.notifier == nil || student.GuardianID == "" {
		return
	}
	guardian, err := s.userRepo.GetUserByID(ctx, student.GuardianID)
	if err != nil || guardian == nil {
		s.log.Warn("guardian lookup failed for claim notification", "claim_id", claim.ID, "guardian_id", student.GuardianID, "error", err)
		return
	}
	if err := s.notifier.NotifyClaimRequested(ctx, guardian, student, claim); err != nil {
		s.log.Warn("failed to notify guardian", "claim_id", claim.ID, "error", err)
	}
}
