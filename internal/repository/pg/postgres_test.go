package pg_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"OrderNotifier/internal/domain"
	"OrderNotifier/internal/repository/pg"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

var notificationColumns = []string{"id", "account_id", "type", "url", "has_details", "details", "message", "status", "time_sent"}

func TestPostgresRepo_Create_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewPostgresRepo(&dbpg.DB{Master: db})

	n := &domain.Notification{
		ID:         uuid.New(),
		To:         "acc-1",
		Type:       domain.TypeNewOrder,
		URL:        "/shop/notifications",
		HasDetails: true,
		Details:    "R100",
		Message:    "There is no notifications options",
		Status:     domain.StatusUnread,
		TimeSent:   time.Now(),
	}

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(n.ID, "acc-1", domain.TypeNewOrder, "/shop/notifications", true, "R100",
			"There is no notifications options", domain.StatusUnread, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), n)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewPostgresRepo(&dbpg.DB{Master: db})

	mock.ExpectExec(`INSERT INTO notifications`).WillReturnError(assert.AnError)

	err = repo.Create(context.Background(), &domain.Notification{ID: uuid.New()})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostgresRepo_GetByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewPostgresRepo(&dbpg.DB{Master: db})

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, account_id, type, url, has_details, details, message, status, time_sent`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(id.String(), "acc-1", "newOrder", "/notifications", true, "R1", "msg", "unread", now))

	result, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, result.ID)
	assert.Equal(t, "acc-1", result.To)
	assert.Equal(t, domain.TypeNewOrder, result.Type)
	assert.Equal(t, domain.StatusUnread, result.Status)
	assert.True(t, result.HasDetails)
}

func TestPostgresRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewPostgresRepo(&dbpg.DB{Master: db})

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, account_id`).WithArgs(id).WillReturnError(sql.ErrNoRows)

	result, err := repo.GetByID(context.Background(), id)

	assert.Nil(t, result)
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestPostgresRepo_ListByAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewPostgresRepo(&dbpg.DB{Master: db})

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM notifications\s+WHERE account_id = \$1\s+ORDER BY time_sent DESC LIMIT 10 OFFSET 5`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(uuid.New().String(), "acc-1", "newOrder", "/notifications", false, "", "b", "unread", now).
			AddRow(uuid.New().String(), "acc-1", "newOrder", "/notifications", false, "", "a", "unread", now.Add(-time.Minute)))

	result, err := repo.ListByAccount(context.Background(), "acc-1", 10, 5)

	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "b", result[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ListByAccount_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewPostgresRepo(&dbpg.DB{Master: db})

	mock.ExpectQuery(`SELECT (.+) FROM notifications`).
		WithArgs("acc-2").
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	result, err := repo.ListByAccount(context.Background(), "acc-2", 0, 0)

	require.NoError(t, err)
	assert.Empty(t, result)
}
