// file: internals/features/school/marks/model/moderation_request_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ModerationStatusPending  = "pending"
	ModerationStatusInReview = "in_review"
	ModerationStatusApproved = "approved"
	ModerationStatusRejected = "rejected"
)

// ModerationRequestModel: gerbang review antara submit dan publikasi nilai.
// Satu request aktif (pending/in_review) per exam paper.
type ModerationRequestModel struct {
	ModerationRequestID       uuid.UUID `json:"moderation_request_id" gorm:"type:uuid;primaryKey;column:moderation_request_id;default:gen_random_uuid()"`
	ModerationRequestSchoolID uuid.UUID `json:"moderation_request_school_id" gorm:"type:uuid;not null;column:moderation_request_school_id;index"`

	ModerationRequestExamPaperID uuid.UUID  `json:"moderation_request_exam_paper_id" gorm:"type:uuid;not null;column:moderation_request_exam_paper_id;index"`
	ModerationRequestSubmittedBy uuid.UUID  `json:"moderation_request_submitted_by" gorm:"type:uuid;not null;column:moderation_request_submitted_by"`
	ModerationRequestModeratorID *uuid.UUID `json:"moderation_request_moderator_id,omitempty" gorm:"type:uuid;column:moderation_request_moderator_id"`

	ModerationRequestStatus string `json:"moderation_request_status" gorm:"type:varchar(20);not null;default:'pending';column:moderation_request_status;index"`

	// snapshot jumlah nilai yang di-submit saat request dibuat
	ModerationRequestMarksCount int `json:"moderation_request_marks_count" gorm:"not null;default:0;column:moderation_request_marks_count"`

	ModerationRequestComments *string `json:"moderation_request_comments,omitempty" gorm:"type:text;column:moderation_request_comments"`

	ModerationRequestSubmittedAt time.Time  `json:"moderation_request_submitted_at" gorm:"column:moderation_request_submitted_at;autoCreateTime"`
	ModerationRequestReviewedAt  *time.Time `json:"moderation_request_reviewed_at,omitempty" gorm:"column:moderation_request_reviewed_at"`
}

func (ModerationRequestModel) TableName() string { return "moderation_requests" }

// IsTerminal: approved/rejected tidak bisa ditransisikan lagi.
func (m ModerationRequestModel) IsTerminal() bool {
	return m.ModerationRequestStatus == ModerationStatusApproved ||
		m.ModerationRequestStatus == ModerationStatusRejected
}
