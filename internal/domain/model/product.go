package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 表示言語（en / id）
const (
	LocaleEN = "en"
	LocaleID = "id"
)

type Product struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	NameEn        string           `gorm:"type:varchar(255);not null" json:"name_en"`
	NameID        string           `gorm:"column:name_id;type:varchar(255);not null" json:"name_id"`
	DescriptionEn string           `gorm:"type:text" json:"description_en"`
	DescriptionID string           `gorm:"column:description_id;type:text" json:"description_id"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	ComparePrice  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"compare_price,omitempty"`
	Stock         int64            `gorm:"not null;default:0" json:"stock"`
	CategoryID    *int64           `gorm:"index" json:"category_id,omitempty"`
	ImageURL      string           `gorm:"type:varchar(500)" json:"image_url"`
	IsActive      bool             `gorm:"not null;default:true;index" json:"is_active"`
	IsFeatured    bool             `gorm:"not null;default:false;index" json:"is_featured"`
	CreatedAt     time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// localeに応じた商品名（idが空ならenにフォールバック）
func (p Product) LocalizedName(locale string) string {
	if locale == LocaleID && p.NameID != "" {
		return p.NameID
	}
	return p.NameEn
}

func (p Product) LocalizedDescription(locale string) string {
	if locale == LocaleID && p.DescriptionID != "" {
		return p.DescriptionID
	}
	return p.DescriptionEn
}
