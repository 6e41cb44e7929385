package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"OrderNotifier/internal/domain"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

const (
	redisKeyPrefix = "notification:"
)

type NotificationService struct {
	repo            domain.NotificationRepository
	redis           domain.RedisRepository
	redisExpiration time.Duration
	now             func() time.Time
}

func NewNotificationService(
	repo domain.NotificationRepository,
	redis domain.RedisRepository,
	redisExpiration time.Duration) *NotificationService {
	return &NotificationService{repo: repo, redis: redis, redisExpiration: redisExpiration, now: time.Now}
}

func (s *NotificationService) CreateNotification(ctx context.Context,
	params domain.CreateNotificationParams) (*domain.Notification, error) {
	op := "CreateNotification:"
	if !params.Type.IsValid() {
		zlog.Logger.Warn().Msgf("%s notification (type = %s) is invalid", op, params.Type.String())
		return nil, domain.ErrInvalidType
	}
	if params.AccountID == "" {
		zlog.Logger.Warn().Msgf("%s account is empty", op)
		return nil, domain.ErrEmptyAccount
	}
	if params.URL == "" {
		zlog.Logger.Warn().Msgf("%s url is empty", op)
		return nil, domain.ErrEmptyURL
	}
	if params.Message == "" {
		zlog.Logger.Warn().Msgf("%s message is empty", op)
		return nil, domain.ErrEmptyMessage
	}

	n := &domain.Notification{
		ID:         uuid.New(),
		To:         params.AccountID,
		Type:       params.Type,
		URL:        params.URL,
		HasDetails: params.Details != "",
		Details:    params.Details,
		Message:    params.Message,
		Status:     domain.StatusUnread,
		TimeSent:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		zlog.Logger.Error().Msgf("%s failed to create notification: %v", op, err)
		return nil, err
	}

	// запись уже сохранена, ошибка кэша не должна ее терять
	if err := s.marshalAndSet(ctx, n); err != nil {
		zlog.Logger.Warn().Msgf("%s notification %s not cached: %v", op, n.ID, err)
	}

	return n, nil
}

func (s *NotificationService) GetNotificationByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var n *domain.Notification
	redisData, err := s.redis.Get(ctx, redisKeyPrefix+id.String())
	if err != nil && !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Msgf("failed to fetch notification: %v", err)
	}

	if err != nil {
		zlog.Logger.Debug().Msgf("%s: notification not in cache, fetch from database", id)
		n, err = s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				zlog.Logger.Warn().Msgf("notification (id = %s) not found", id)
				return nil, domain.ErrNotFound
			}
			return nil, err
		}

		if err := s.marshalAndSet(ctx, n); err != nil {
			zlog.Logger.Warn().Msgf("%s failed to update notification cache: %v", id, err)
		}

		return n, nil
	}

	if err = json.Unmarshal([]byte(redisData), &n); err != nil {
		zlog.Logger.Error().Err(err).Msgf("%s: failed to unmarshal notification: %v", id, err)
		return s.repo.GetByID(ctx, id)
	}
	return n, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, accountID string,
	limit, offset int) ([]domain.Notification, error) {
	if accountID == "" {
		return nil, domain.ErrEmptyAccount
	}
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

func (s *NotificationService) marshalAndSet(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		zlog.Logger.Error().Msgf("%s failed to marshal notification: %v", n.ID, err)
		return err
	}
	err = s.redis.SetWithExpiration(ctx, redisKeyPrefix+n.ID.String(), data, s.redisExpiration)
	if err != nil {
		zlog.Logger.Error().Msgf("%s failed to set notification expiry: %v", n.ID, err)
		return err
	}
	return nil
}
