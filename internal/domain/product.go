package domain

import "time"

// Product is an insurance product offered to customers. Deleting a product
// removes its features; products referenced by policies cannot be deleted.
type Product struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:200;index;not null" json:"name"`
	Price           Amount     `gorm:"not null" json:"price"`
	IsActive        bool       `gorm:"not null" json:"is_active"`
	CreatedByUserID uint       `gorm:"index;not null" json:"created_by_user_id"`
	CreatedBy       *User      `gorm:"foreignKey:CreatedByUserID;constraint:OnDelete:RESTRICT" json:"-"`
	Features        []Feature  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"features"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

type Feature struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Detail    string    `gorm:"size:500;not null" json:"detail"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
