package model

import "time"

type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	NameEn    string    `gorm:"type:varchar(100);not null" json:"name_en"`
	NameID    string    `gorm:"column:name_id;type:varchar(100);not null" json:"name_id"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Image     string    `gorm:"type:varchar(500)" json:"image"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Category) LocalizedName(locale string) string {
	if locale == LocaleID && c.NameID != "" {
		return c.NameID
	}
	return c.NameEn
}
