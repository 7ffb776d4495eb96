package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"weather-news-bot/internal/model"
)

// LogRepository appends and reads command logs.
type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Create(ctx context.Context, userID uint, command string) (*model.Log, error) {
	entry := model.Log{UserID: userID, Command: command}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	return &entry, nil
}

// ListByUser returns up to limit entries for the user, newest first.
func (r *LogRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Log, error) {
	var logs []model.Log
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ListRecent returns up to limit entries across all users, newest first.
func (r *LogRepository) ListRecent(ctx context.Context, limit int) ([]model.Log, error) {
	var logs []model.Log
	if err := r.db.WithContext(ctx).Order("timestamp DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *LogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Log{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
