// file: internals/features/school/scheduling/timetables/model/timetable_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TimetableStatusDraft     = "draft"
	TimetableStatusPublished = "published"
	TimetableStatusArchived  = "archived"
)

// TimetableModel: jadwal mingguan berulang milik satu sekolah.
// Invariant tenant: maksimal SATU timetable dengan
// (timetable_status = published, timetable_is_current = TRUE) per sekolah.
// Hanya draft yang boleh diedit; publish bersifat final, perubahan berikutnya
// lewat draft baru (versi baru), bukan mundur ke draft.
type TimetableModel struct {
	TimetableID       uuid.UUID `json:"timetable_id" gorm:"type:uuid;primaryKey;column:timetable_id;default:gen_random_uuid()"`
	TimetableSchoolID uuid.UUID `json:"timetable_school_id" gorm:"type:uuid;not null;column:timetable_school_id;index"`

	TimetableName   string `json:"timetable_name" gorm:"type:text;not null;column:timetable_name"`
	TimetableStatus string `json:"timetable_status" gorm:"type:varchar(20);not null;default:'draft';column:timetable_status;index"`

	TimetableIsCurrent bool `json:"timetable_is_current" gorm:"not null;default:false;column:timetable_is_current"`

	TimetableStartDate time.Time `json:"timetable_start_date" gorm:"type:date;not null;column:timetable_start_date"`
	TimetableEndDate   time.Time `json:"timetable_end_date" gorm:"type:date;not null;column:timetable_end_date"`

	TimetableVersion     int        `json:"timetable_version" gorm:"not null;default:1;column:timetable_version"`
	TimetablePublishedAt *time.Time `json:"timetable_published_at,omitempty" gorm:"column:timetable_published_at"`
	TimetablePublishedBy *uuid.UUID `json:"timetable_published_by,omitempty" gorm:"type:uuid;column:timetable_published_by"`

	TimetableCreatedAt time.Time      `json:"timetable_created_at" gorm:"column:timetable_created_at;autoCreateTime"`
	TimetableUpdatedAt time.Time      `json:"timetable_updated_at" gorm:"column:timetable_updated_at;autoUpdateTime"`
	TimetableDeletedAt gorm.DeletedAt `json:"timetable_deleted_at,omitempty" gorm:"column:timetable_deleted_at;index"`
}

func (TimetableModel) TableName() string { return "timetables" }
