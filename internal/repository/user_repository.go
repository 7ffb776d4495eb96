package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"weather-news-bot/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate finds a user by Telegram ID and creates one on first contact.
// The name is only used for a new row; existing users keep theirs.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, name string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{
			TelegramID:           telegramID,
			Name:                 name,
			SubscriptionSettings: model.Unsubscribed,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetSubscription updates the subscription state of the user with the given
// Telegram ID. It returns nil without error when no such user exists.
func (r *UserRepository) SetSubscription(ctx context.Context, telegramID int64, state model.SubscriptionState) (*model.User, error) {
	user, err := r.FindByTelegramID(ctx, telegramID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(user).Update("subscription_settings", state).Error; err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	user.SubscriptionSettings = state
	return user, nil
}

func (r *UserRepository) ListSubscribed(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("subscription_settings = ?", model.Subscribed).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListRecent returns the most recently registered users first.
func (r *UserRepository) ListRecent(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("registered_at DESC, id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *UserRepository) CountSubscribed(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("subscription_settings = ?", model.Subscribed).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
