package domain

import "time"

// BlacklistedToken is a revoked session token, keyed by its jti. Rows are
// never updated; they are deleted once ExpiresAt has passed or when the
// owning user is removed.
type BlacklistedToken struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TokenID       string    `gorm:"size:64;uniqueIndex;not null" json:"token_id"`
	Token         string    `gorm:"type:text;not null" json:"-"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BlacklistedAt time.Time `gorm:"not null" json:"blacklisted_at"`
	ExpiresAt     time.Time `gorm:"index;not null" json:"expires_at"`
	Reason        string    `gorm:"size:255;not null" json:"reason"`
}
