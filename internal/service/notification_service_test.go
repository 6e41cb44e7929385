package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"OrderNotifier/internal/domain"
	"OrderNotifier/internal/service"
	rd "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestCreateNotification_Success проверяет успешное создание уведомления
func TestCreateNotification_Success(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	redis := new(MockRedis)

	repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.To == "acc-1" && n.Type == domain.TypeNewOrder && n.Status == domain.StatusUnread
	})).Return(nil)
	redis.On("SetWithExpiration", ctx, mock.AnythingOfType("string"), mock.Anything, time.Hour).Return(nil)

	svc := service.NewNotificationService(repo, redis, time.Hour)

	result, err := svc.CreateNotification(ctx, domain.CreateNotificationParams{
		AccountID: "acc-1",
		Type:      domain.TypeNewOrder,
		URL:       "/acme/notifications",
		Details:   "R100",
		Message:   "hello",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, domain.StatusUnread, result.Status)
	assert.True(t, result.HasDetails)
	assert.Equal(t, "R100", result.Details)
	assert.WithinDuration(t, time.Now(), result.TimeSent, 5*time.Second)

	redis.AssertCalled(t, "SetWithExpiration", ctx, "notification:"+result.ID.String(), mock.Anything, time.Hour)
	repo.AssertExpectations(t)
}

// TestCreateNotification_NoDetails проверяет флаг hasDetails без деталей
func TestCreateNotification_NoDetails(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	redis := new(MockRedis)

	repo.On("Create", ctx, mock.Anything).Return(nil)
	redis.On("SetWithExpiration", ctx, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	svc := service.NewNotificationService(repo, redis, time.Hour)

	result, err := svc.CreateNotification(ctx, domain.CreateNotificationParams{
		AccountID: "acc-1",
		Type:      domain.TypeForAdmin,
		URL:       "/operator/orders",
		Message:   "You have a new order.",
	})

	require.NoError(t, err)
	assert.False(t, result.HasDetails)
}

// TestCreateNotification_Validation проверяет валидацию параметров
func TestCreateNotification_Validation(t *testing.T) {
	valid := domain.CreateNotificationParams{
		AccountID: "acc-1",
		Type:      domain.TypeNewOrder,
		URL:       "/notifications",
		Message:   "msg",
	}

	tests := []struct {
		name   string
		modify func(p *domain.CreateNotificationParams)
		err    error
	}{
		{"invalid type", func(p *domain.CreateNotificationParams) { p.Type = "unknown" }, domain.ErrInvalidType},
		{"empty account", func(p *domain.CreateNotificationParams) { p.AccountID = "" }, domain.ErrEmptyAccount},
		{"empty url", func(p *domain.CreateNotificationParams) { p.URL = "" }, domain.ErrEmptyURL},
		{"empty message", func(p *domain.CreateNotificationParams) { p.Message = "" }, domain.ErrEmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := service.NewNotificationService(repo, new(MockRedis), time.Hour)

			params := valid
			tt.modify(&params)
			result, err := svc.CreateNotification(context.Background(), params)

			assert.Nil(t, result)
			assert.Equal(t, tt.err, err)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// TestCreateNotification_RepositoryError проверяет обработку ошибок репозитория
func TestCreateNotification_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	redis := new(MockRedis)

	repo.On("Create", ctx, mock.Anything).Return(assert.AnError)

	svc := service.NewNotificationService(repo, redis, time.Hour)

	result, err := svc.CreateNotification(ctx, domain.CreateNotificationParams{
		AccountID: "acc-1", Type: domain.TypeNewOrder, URL: "/notifications", Message: "msg",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, assert.AnError)
	redis.AssertNotCalled(t, "SetWithExpiration", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestGetNotificationByID_FromCache проверяет чтение из кэша
func TestGetNotificationByID_FromCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	redis := new(MockRedis)

	n := domain.Notification{ID: uuid.New(), To: "acc-1", Type: domain.TypeNewOrder, Status: domain.StatusUnread}
	data, _ := json.Marshal(n)
	redis.On("Get", ctx, "notification:"+n.ID.String()).Return(string(data), nil)

	svc := service.NewNotificationService(repo, redis, time.Hour)
	result, err := svc.GetNotificationByID(ctx, n.ID)

	require.NoError(t, err)
	assert.Equal(t, n.ID, result.ID)
	assert.Equal(t, "acc-1", result.To)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// TestGetNotificationByID_FromDatabase проверяет чтение из базы при промахе кэша
func TestGetNotificationByID_FromDatabase(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	redis := new(MockRedis)

	n := &domain.Notification{ID: uuid.New(), To: "acc-1", Type: domain.TypeNewOrder}
	redis.On("Get", ctx, "notification:"+n.ID.String()).Return("", rd.Nil)
	repo.On("GetByID", ctx, n.ID).Return(n, nil)
	redis.On("SetWithExpiration", ctx, "notification:"+n.ID.String(), mock.Anything, time.Hour).Return(nil)

	svc := service.NewNotificationService(repo, redis, time.Hour)
	result, err := svc.GetNotificationByID(ctx, n.ID)

	require.NoError(t, err)
	assert.Equal(t, n, result)
	redis.AssertExpectations(t)
}

// TestGetNotificationByID_NotFound проверяет обработку отсутствующего уведомления
func TestGetNotificationByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	redis := new(MockRedis)

	id := uuid.New()
	redis.On("Get", ctx, "notification:"+id.String()).Return("", rd.Nil)
	repo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

	svc := service.NewNotificationService(repo, redis, time.Hour)
	result, err := svc.GetNotificationByID(ctx, id)

	assert.Nil(t, result)
	assert.Equal(t, domain.ErrNotFound, err)
}

// TestListNotifications проверяет список уведомлений аккаунта
func TestListNotifications(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	list := []domain.Notification{{ID: uuid.New(), To: "acc-1"}}
	repo.On("ListByAccount", ctx, "acc-1", 20, 0).Return(list, nil)

	svc := service.NewNotificationService(repo, new(MockRedis), time.Hour)
	result, err := svc.ListNotifications(ctx, "acc-1", 20, 0)

	require.NoError(t, err)
	assert.Equal(t, list, result)

	_, err = svc.ListNotifications(ctx, "", 20, 0)
	assert.Equal(t, domain.ErrEmptyAccount, err)
}
