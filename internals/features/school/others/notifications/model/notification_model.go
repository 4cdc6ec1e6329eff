// file: internals/features/school/others/notifications/model/notification_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	NotificationStatusQueued = "queued"
	NotificationStatusSent   = "sent"
)

// Tipe notifikasi yang dipancarkan transisi status engine.
const (
	NotificationTypeTimetablePublished   = "timetable_published"
	NotificationTypeExamPublished        = "exam_published"
	NotificationTypeMarksRejected        = "marks_rejected"
	NotificationTypeMarksPublished       = "marks_published"
	NotificationTypeSubstitutionAssigned = "substitution_assigned"
)

// NotificationModel adalah outbox: baris di-enqueue oleh engine, delivery & retry
// sepenuhnya urusan collaborator eksternal yang membaca tabel ini.
type NotificationModel struct {
	NotificationID       uuid.UUID `json:"notification_id" gorm:"type:uuid;primaryKey;column:notification_id;default:gen_random_uuid()"`
	NotificationSchoolID uuid.UUID `json:"notification_school_id" gorm:"type:uuid;not null;column:notification_school_id;index"`

	NotificationRecipientID uuid.UUID `json:"notification_recipient_id" gorm:"type:uuid;not null;column:notification_recipient_id;index"`
	NotificationType        string    `json:"notification_type" gorm:"type:varchar(50);not null;column:notification_type"`
	NotificationTitle       string    `json:"notification_title" gorm:"type:text;not null;column:notification_title"`

	NotificationPayload  datatypes.JSON `json:"notification_payload" gorm:"type:jsonb;not null;default:'{}';column:notification_payload"`
	NotificationChannels pq.StringArray `json:"notification_channels" gorm:"type:text[];column:notification_channels"`

	NotificationStatus string `json:"notification_status" gorm:"type:varchar(20);not null;default:'queued';column:notification_status"`

	NotificationCreatedAt time.Time  `json:"notification_created_at" gorm:"column:notification_created_at;autoCreateTime"`
	NotificationSentAt    *time.Time `json:"notification_sent_at,omitempty" gorm:"column:notification_sent_at"`
}

func (NotificationModel) TableName() string { return "notifications" }
