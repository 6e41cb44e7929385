package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"OrderNotifier/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	service    domain.NotificationService
	settings   domain.SettingsRepository
	dispatcher domain.OrderDispatcher
	publisher  domain.OrderEventPublisher
}

// NewHandlersSet создает обработчики. publisher может быть nil: тогда заказы
// передаются диспетчеру прямо из запроса.
func NewHandlersSet(service domain.NotificationService, settings domain.SettingsRepository,
	dispatcher domain.OrderDispatcher, publisher domain.OrderEventPublisher) *Handler {
	return &Handler{
		service:    service,
		settings:   settings,
		dispatcher: dispatcher,
		publisher:  publisher,
	}
}

var validate = validator.New()

func notificationTypeValidator(fl validator.FieldLevel) bool {
	return domain.NotificationType(fl.Field().String()).IsValid()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "обязательное поле"
	case "notificationtype":
		return "неизвестный тип уведомления"
	case "oneof":
		return "допустимые значения: " + e.Param()
	default:
		return "некорректное значение"
	}
}

func init() {
	_ = validate.RegisterValidation("notificationtype", notificationTypeValidator)
}

func validationError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		errorsMap := make(map[string]string)
		for _, e := range verrs {
			errorsMap[e.Namespace()] = validationMessage(e)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Ошибка валидации",
			"errors":  errorsMap,
		})
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return true
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrEmptyAccount),
		errors.Is(err, domain.ErrEmptyURL),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrInvalidRule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// OrderCreatedHandler принимает событие нового заказа.
func (h *Handler) OrderCreatedHandler(c *gin.Context) {
	var order domain.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный JSON: " + err.Error()})
		return
	}

	if h.publisher == nil {
		h.dispatcher.OnNewOrder(c.Request.Context(), order)
		c.JSON(http.StatusAccepted, gin.H{"result": "dispatched"})
		return
	}

	if err := h.publisher.PublishOrderCreated(c.Request.Context(), order); err != nil {
		zlog.Logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to enqueue order event")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Не удалось поставить заказ в очередь"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"result": "queued"})
}

func (h *Handler) CreateNotificationHandler(c *gin.Context) {
	var req CreateNotificationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный JSON: " + err.Error()})
		return
	}
	if validationError(c, validate.Struct(req)) {
		return
	}

	n, err := h.service.CreateNotification(c.Request.Context(), domain.CreateNotificationParams{
		AccountID: req.To,
		Type:      domain.NotificationType(req.Type),
		URL:       req.URL,
		Details:   req.Details,
		Message:   req.Message,
	})
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": toNotificationResponse(n)})
}

func (h *Handler) GetNotificationHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is invalid"})
		return
	}

	n, err := h.service.GetNotificationByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": toNotificationResponse(n)})
}

func (h *Handler) ListNotificationsHandler(c *gin.Context) {
	accountID := c.Param("accountId")

	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit is invalid"})
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset is invalid"})
		return
	}

	list, err := h.service.ListNotifications(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	result := make([]NotificationResponse, 0, len(list))
	for i := range list {
		result = append(result, toNotificationResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetRulesHandler(c *gin.Context) {
	rules, err := h.settings.GetNotificationRules(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	c.JSON(http.StatusOK, gin.H{"result": rules})
}

func (h *Handler) UpdateRulesHandler(c *gin.Context) {
	var req UpdateRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный JSON: " + err.Error()})
		return
	}
	if validationError(c, validate.Struct(req)) {
		return
	}

	if err := h.settings.UpdateNotificationRules(c.Request.Context(), c.Param("shopId"), req.Rules); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": req.Rules})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
