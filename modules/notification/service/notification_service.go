package service

import (
	"context"
	"encoding/json"
	"time"

	"go-departure-scheduler/core/constants"
	coreEntity "go-departure-scheduler/core/entity"
	"go-departure-scheduler/core/logger"
	"go-departure-scheduler/core/params"
	"go-departure-scheduler/core/utils"
	"go-departure-scheduler/modules/notification/dto"
	"go-departure-scheduler/modules/notification/entity"
	"go-departure-scheduler/modules/notification/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Notifier is the local-notification sink consumed by the scheduler core.
// Delivery is fire-and-forget; no confirmation is modeled.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error
}

type NotificationService struct {
	repo  repository.NotificationRepository
	tasks *asynq.Client // nil when the delivery queue is not configured
}

func NewNotificationService(repo repository.NotificationRepository, tasks *asynq.Client) *NotificationService {
	return &NotificationService{repo: repo, tasks: tasks}
}

// Notify records the notification and hands it to the delivery queue. The
// row is persisted even when enqueueing fails; delivery failures are logged,
// never propagated into the scheduling cycle.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error {
	deliveryID := utils.GenerateID()

	notif := &entity.Notification{
		UserID:  userID,
		Title:   title,
		Message: body,
		Type:    notifType,
		Data:    entity.JSONB{"delivery_id": deliveryID},
		IsRead:  false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return err
	}

	logger.Info("Notification", "user_id", userID, "type", notifType, "title", title, "body", body)

	if s.tasks == nil {
		return nil
	}

	payload, err := json.Marshal(dto.DeliverTaskPayload{
		NotificationID: notif.ID,
		UserID:         userID,
		Title:          title,
		Body:           body,
		DeliveryID:     deliveryID,
	})
	if err != nil {
		logger.Error("NotificationService:Notify:Marshal:Error:", err)
		return nil
	}

	task := asynq.NewTask(constants.TaskNotificationDeliver, payload)
	if _, err := s.tasks.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		logger.Error("NotificationService:Notify:Enqueue:Error:", err, "delivery_id", deliveryID)
	}
	return nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByUserID(ctx, userID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	return s.repo.MarkAsRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
