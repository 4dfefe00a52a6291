package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog item owned by a user.
//
// IsDeleted is an explicit soft-delete column rather than gorm.DeletedAt:
// the user activation cascade has to read and flip rows that are already
// soft-deleted, which GORM's automatic deleted_at filtering would hide.
type Product struct {
	ID            uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string          `json:"name" gorm:"size:200;not null;index"`
	Description   string          `json:"description,omitempty" gorm:"size:1000"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
	IsAvailable   bool            `json:"is_available" gorm:"default:true"`
	CreatorUserID uuid.UUID       `json:"creator_user_id" gorm:"type:char(36);not null;index"`
	IsDeleted     bool            `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relations
	Creator User `json:"-" gorm:"foreignKey:CreatorUserID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
