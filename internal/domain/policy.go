package domain

import "time"

// Policy binds a user to a product for a coverage period. Policy numbers are
// unique.
type Policy struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PolicyNumber string     `gorm:"size:50;uniqueIndex;not null" json:"policy_number"`
	HolderName   string     `gorm:"size:100;not null" json:"holder_name"`
	StartDate    time.Time  `gorm:"index;not null" json:"start_date"`
	EndDate      time.Time  `gorm:"index;not null" json:"end_date"`
	Premium      Amount     `gorm:"not null" json:"premium"`
	ProductID    uint       `gorm:"index;not null" json:"product_id"`
	Product      *Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// ActiveAt reports whether at falls inside the coverage period, both ends
// inclusive.
func (p Policy) ActiveAt(at time.Time) bool {
	return !at.Before(p.StartDate) && !at.After(p.EndDate)
}
