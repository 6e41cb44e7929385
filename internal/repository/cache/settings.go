package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"OrderNotifier/internal/domain"
	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/zlog"
)

const (
	shopKeyPrefix     = "shop:"
	settingsKeyPrefix = "settings:"
)

// SettingsStore кэширует магазины и правила уведомлений в Redis.
// Ошибки Redis не мешают чтению: запрос уходит в базовое хранилище.
type SettingsStore struct {
	shops      domain.ShopRepository
	settings   domain.SettingsRepository
	redis      domain.RedisRepository
	expiration time.Duration
}

// NewSettingsStore создает новый экземпляр SettingsStore.
func NewSettingsStore(shops domain.ShopRepository, settings domain.SettingsRepository,
	redis domain.RedisRepository, expiration time.Duration) *SettingsStore {
	return &SettingsStore{shops: shops, settings: settings, redis: redis, expiration: expiration}
}

// GetShop получает магазин из кэша или базового хранилища.
func (s *SettingsStore) GetShop(ctx context.Context, shopID string) (*domain.Shop, error) {
	var shop domain.Shop
	if s.lookup(ctx, shopKeyPrefix+shopID, &shop) {
		return &shop, nil
	}

	result, err := s.shops.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, shopKeyPrefix+shopID, result)
	return result, nil
}

// GetNotificationRules получает правила из кэша или базового хранилища.
func (s *SettingsStore) GetNotificationRules(ctx context.Context, shopID string) ([]domain.Rule, error) {
	var rules []domain.Rule
	if s.lookup(ctx, settingsKeyPrefix+shopID, &rules) {
		return rules, nil
	}

	rules, err := s.settings.GetNotificationRules(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	s.store(ctx, settingsKeyPrefix+shopID, rules)
	return rules, nil
}

// UpdateNotificationRules сохраняет правила и перезаписывает кэш.
func (s *SettingsStore) UpdateNotificationRules(ctx context.Context, shopID string, rules []domain.Rule) error {
	if err := s.settings.UpdateNotificationRules(ctx, shopID, rules); err != nil {
		return err
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	s.store(ctx, settingsKeyPrefix+shopID, rules)
	return nil
}

func (s *SettingsStore) lookup(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.redis.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zlog.Logger.Warn().Err(err).Str("key", key).Msg("failed to read cache")
		}
		return false
	}
	if err = json.Unmarshal([]byte(data), dst); err != nil {
		zlog.Logger.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false
	}
	return true
}

func (s *SettingsStore) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to marshal cache value")
		return
	}
	if err = s.redis.SetWithExpiration(ctx, key, data, s.expiration); err != nil {
		zlog.Logger.Warn().Err(err).Str("key", key).Msg("failed to write cache")
	}
}
