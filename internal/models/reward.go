package models

import "time"

// Reward is a catalog entry a student can redeem points for
type Reward struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Cost        int       `json:"cost"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClaimStatus is the state of a reward claim
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimApproved || s == ClaimRejected
}

// Claim is a request to redeem a reward. RewardName and Cost are snapshots
// taken at request time and never follow later catalog edits.
type Claim struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	RewardID    string      `json:"reward_id"`
	RewardName  string      `json:"reward_name"`
	Cost        int         `json:"cost"`
	Status      ClaimStatus `json:"status"`
	RequestedAt time.Time   `json:"requested_at"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
}
