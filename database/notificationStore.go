package database

import (
	"context"
	"fmt"
	"time"

	"learnhub/config"
	"learnhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string, userID uint) error
	Close(ctx context.Context) error
}

// Notifications is the global notification store.
var Notifications NotificationStore

// NewNotificationStore picks the store named by cfg.NotificationStore.
func NewNotificationStore(cfg *config.Config, db *gorm.DB) (NotificationStore, error) {
	switch cfg.NotificationStore {
	case "", "sql":
		return NewGormNotificationStore(db), nil
	case "mongo":
		return NewMongoNotificationStore(cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unknown NOTIFICATION_STORE %q", cfg.NotificationStore)
	}
}

// prepareNotification fills the id and timestamp when missing.
func prepareNotification(n *models.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Type == "" {
		n.Type = models.NotificationOther
	}
}

type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	prepareNotification(n)
	return WrapError(s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormNotificationStore) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	list := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, WrapError(err)
	}
	return list, nil
}

func (s *GormNotificationStore) MarkNotificationRead(ctx context.Context, id string, userID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return WrapError(res.Error)
	}
	if res.RowsAffected == 0 {
		// already read rows also report zero on mysql, so look again
		var count int64
		s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormNotificationStore) Close(context.Context) error {
	return nil
}
