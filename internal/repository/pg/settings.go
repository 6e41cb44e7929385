package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"OrderNotifier/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

var validate = validator.New()

// SettingsRepo хранит магазины и их настройки уведомлений.
type SettingsRepo struct {
	DB *dbpg.DB
}

// NewSettingsRepo создает новый экземпляр SettingsRepo.
func NewSettingsRepo(db *dbpg.DB) *SettingsRepo {
	return &SettingsRepo{DB: db}
}

// GetShop получает магазин по ID.
func (p *SettingsRepo) GetShop(ctx context.Context, shopID string) (*domain.Shop, error) {
	sqlQuery := `SELECT id, slug FROM shops WHERE id = $1 LIMIT 1`

	var shop domain.Shop
	var slug sql.NullString
	if err := p.DB.QueryRowContext(ctx, sqlQuery, shopID).Scan(&shop.ID, &slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		zlog.Logger.Error().Err(err).Msg("Error scan shop fields")
		return nil, err
	}
	shop.Slug = slug.String

	return &shop, nil
}

// GetNotificationRules возвращает правила уведомлений магазина.
// Отсутствие настроек не ошибка: возвращается пустой список.
// Невалидные правила пропускаются.
func (p *SettingsRepo) GetNotificationRules(ctx context.Context, shopID string) ([]domain.Rule, error) {
	sqlQuery := `SELECT notification_options FROM shop_settings WHERE shop_id = $1 LIMIT 1`

	var raw []byte
	if err := p.DB.QueryRowContext(ctx, sqlQuery, shopID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		zlog.Logger.Error().Err(err).Msg("Error scan shop settings")
		return nil, err
	}

	return DecodeRules(shopID, raw)
}

// UpdateNotificationRules заменяет правила уведомлений магазина.
func (p *SettingsRepo) UpdateNotificationRules(ctx context.Context, shopID string, rules []domain.Rule) error {
	for i, r := range rules {
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("%w: rule %d: %v", domain.ErrInvalidRule, i, err)
		}
	}
	if rules == nil {
		rules = []domain.Rule{}
	}

	jsonData, err := json.Marshal(rules)
	if err != nil {
		return err
	}

	sqlQuery := `INSERT INTO shop_settings (shop_id, notification_options) VALUES ($1, $2)
 ON CONFLICT (shop_id) DO UPDATE SET notification_options = EXCLUDED.notification_options`
	if _, err = p.DB.ExecContext(ctx, sqlQuery, shopID, jsonData); err != nil {
		zlog.Logger.Error().Err(err).Msg("Error exec update shop settings")
		return err
	}

	return nil
}

// DecodeRules разбирает сохраненный список правил, пропуская невалидные.
func DecodeRules(shopID string, raw []byte) ([]domain.Rule, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		zlog.Logger.Error().Err(err).Str("shop_id", shopID).Msg("Error unmarshalling notification options")
		return nil, err
	}

	rules := make([]domain.Rule, 0, len(items))
	for i, item := range items {
		var r domain.Rule
		if err := json.Unmarshal(item, &r); err != nil {
			zlog.Logger.Warn().Err(err).Str("shop_id", shopID).Msgf("skip notification option %d", i)
			continue
		}
		if err := validate.Struct(r); err != nil {
			zlog.Logger.Warn().Err(err).Str("shop_id", shopID).Msgf("skip invalid notification option %d", i)
			continue
		}
		rules = append(rules, r)
	}

	return rules, nil
}
