package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartObservers registers notification and broadcast event handlers.
func StartObservers(notifications *service.NotificationService, broadcast *service.BroadcastService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if broadcast != nil {
		broadcast.RegisterHandlers()
	}
}
