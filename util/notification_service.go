// api/util/notification_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
)

type NotificationService struct {
	// A message-queue or paging client would live here.
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifySecurityEvent alerts operators about denials worth a human look:
// VPN usage from a non-allow-listed user, high-risk locations, and the like.
func (n *NotificationService) NotifySecurityEvent(ctx context.Context, userID, accessType, ipAddress string) error {
	logger.Warn("SECURITY NOTIFICATION",
		zap.String("userID", userID),
		zap.String("accessType", accessType),
		zap.String("ip", ipAddress))
	return nil
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}
