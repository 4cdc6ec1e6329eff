// file: internals/features/school/others/notifications/service/notification_service.go
package service

import (
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/others/notifications/model"
)

// Enqueue menulis satu baris outbox. Best-effort: kegagalan hanya dicatat,
// TIDAK PERNAH menggagalkan transisi status yang memanggilnya.
func Enqueue(db *gorm.DB, schoolID, recipientID uuid.UUID, notifType, title string, payload any, channels ...string) {
	if recipientID == uuid.Nil {
		return
	}

	raw, err := sonic.Marshal(payload)
	if err != nil {
		log.Printf("[NOTIFY] gagal marshal payload type=%s: %v", notifType, err)
		raw = []byte("{}")
	}
	if len(channels) == 0 {
		channels = []string{"in_app"}
	}

	n := model.NotificationModel{
		NotificationSchoolID:    schoolID,
		NotificationRecipientID: recipientID,
		NotificationType:        notifType,
		NotificationTitle:       title,
		NotificationPayload:     datatypes.JSON(raw),
		NotificationChannels:    channels,
		NotificationStatus:      model.NotificationStatusQueued,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("[NOTIFY] gagal enqueue type=%s recipient=%s: %v", notifType, recipientID, err)
	}
}
