package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go-departure-scheduler/core/logger"
	"go-departure-scheduler/modules/notification/dto"

	"github.com/hibiken/asynq"
)

// HandleDeliverTask is the hand-off point to the push gateway. Gateway
// integration is out of scope here; delivery is acknowledged in the log.
func HandleDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload dto.DeliverTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal delivery payload: %w", err)
	}

	logger.Info("Delivering notification",
		"delivery_id", payload.DeliveryID,
		"notification_id", payload.NotificationID,
		"user_id", payload.UserID,
		"title", payload.Title,
	)
	return nil
}
