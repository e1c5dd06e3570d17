package user

import "time"

// Membership tiers, lowest to highest.
const (
	TierSeeker  = "seeker"
	TierBuilder = "builder"
	TierMaster  = "master"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierSeeker, TierBuilder, TierMaster:
		return true
	}
	return false
}

type User struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"` // never expose hash in JSON
	FullName          string     `json:"fullName"`
	Tier              string     `json:"tier"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
	IsActive          bool       `json:"isActive"`
	BillingCustomerID *string    `json:"-"`
}
