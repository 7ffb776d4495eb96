package model

import "time"

// Log is an append-only record of a handled command.
type Log struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index;not null"`
	Command   string
	Timestamp time.Time `gorm:"autoCreateTime;index"`
}
