package model

import "time"

// SubscriptionState tells whether a user receives the scheduled digest.
type SubscriptionState string

const (
	Unsubscribed SubscriptionState = "unsubscribed"
	Subscribed   SubscriptionState = "subscribed"
)

// User stores Telegram user metadata.
type User struct {
	ID                   uint  `gorm:"primaryKey"`
	TelegramID           int64 `gorm:"uniqueIndex;not null"`
	Name                 string
	RegisteredAt         time.Time         `gorm:"autoCreateTime"`
	SubscriptionSettings SubscriptionState `gorm:"default:unsubscribed"`
	Logs                 []Log             `gorm:"foreignKey:UserID"`
}

func (u User) IsSubscribed() bool {
	return u.SubscriptionSettings == Subscribed
}
