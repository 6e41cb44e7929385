package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"OrderNotifier/internal/domain"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// PostgresRepo структура для работы с уведомлениями в PostgreSQL.
type PostgresRepo struct {
	DB *dbpg.DB
}

// NewPostgresRepo создает новый экземпляр PostgresRepo.
func NewPostgresRepo(db *dbpg.DB) *PostgresRepo {
	return &PostgresRepo{
		DB: db,
	}
}

// Create сохраняет уведомление в базе данных.
func (p *PostgresRepo) Create(ctx context.Context, n *domain.Notification) error {
	sqlQuery := `INSERT INTO notifications (id, account_id, type, url, has_details, details, message, status, time_sent)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := p.DB.ExecContext(ctx, sqlQuery, n.ID, n.To, n.Type, n.URL, n.HasDetails,
		n.Details, n.Message, n.Status, n.TimeSent)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Error insert notification")
		return err
	}

	zlog.Logger.Debug().Msgf("Created notification id: %s to:%s, type:%s, url:%s",
		n.ID, n.To, n.Type, n.URL)
	return nil
}

// GetByID получает уведомление по ID из базы данных.
func (p *PostgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	sqlQuery := `SELECT id, account_id, type, url, has_details, details, message, status, time_sent
	FROM notifications WHERE id = $1 LIMIT 1`

	var result domain.Notification
	if err := p.DB.QueryRowContext(ctx, sqlQuery, id).Scan(&result.ID, &result.To, &result.Type,
		&result.URL, &result.HasDetails, &result.Details, &result.Message,
		&result.Status, &result.TimeSent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		zlog.Logger.Error().Err(err).Msg("Error scan notification fields")
		return nil, err
	}

	return &result, nil
}

// ListByAccount получает уведомления аккаунта, новые первыми.
func (p *PostgresRepo) ListByAccount(ctx context.Context, accountID string,
	limit, offset int) ([]domain.Notification, error) {
	sqlQuery := `SELECT id, account_id, type, url, has_details, details, message, status, time_sent
    FROM notifications
    WHERE account_id = $1
    ORDER BY time_sent DESC`

	if limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := p.DB.QueryContext(ctx, sqlQuery, accountID)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Error exec list notifications sql")
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	n := make([]domain.Notification, 0)
	for rows.Next() {
		var val domain.Notification
		if err = rows.Scan(&val.ID, &val.To, &val.Type, &val.URL, &val.HasDetails,
			&val.Details, &val.Message, &val.Status, &val.TimeSent); err != nil {
			zlog.Logger.Error().Err(err).Msg("Error scan list notifications sql")
			return nil, err
		}
		n = append(n, val)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return n, nil
}
