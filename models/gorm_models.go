// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormRoundRecord 对局记录: one row per started round.
type GormRoundRecord struct {
	gorm.Model
	RoomCode  string    `gorm:"index;not null"`
	Mode      string    `gorm:"not null"`
	Category  string    `gorm:"default:''"`
	Players   int       `gorm:"not null"`
	Impostors int       `gorm:"not null"`
	StartedAt time.Time `gorm:"index;not null"`
}

func (GormRoundRecord) TableName() string {
	return "round_records"
}
