// file: internals/features/school/scheduling/timetables/model/timetable_entry_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// TimetableEntryModel: satu slot mingguan.
// Kunci identitas collision: (timetable_id, day_of_week, period_id)
// digabung terpisah dengan teacher_id, room_id, dan (class_id, section_id).
// Entry hidup/mati mengikuti draft-nya, jadi hard delete (tanpa soft delete).
type TimetableEntryModel struct {
	TimetableEntryID          uuid.UUID `json:"timetable_entry_id" gorm:"type:uuid;primaryKey;column:timetable_entry_id;default:gen_random_uuid()"`
	TimetableEntryTimetableID uuid.UUID `json:"timetable_entry_timetable_id" gorm:"type:uuid;not null;column:timetable_entry_timetable_id;index"`
	TimetableEntrySchoolID    uuid.UUID `json:"timetable_entry_school_id" gorm:"type:uuid;not null;column:timetable_entry_school_id;index"`

	TimetableEntryDayOfWeek int       `json:"timetable_entry_day_of_week" gorm:"not null;column:timetable_entry_day_of_week"` // 0=Minggu .. 6=Sabtu
	TimetableEntryPeriodID  uuid.UUID `json:"timetable_entry_period_id" gorm:"type:uuid;not null;column:timetable_entry_period_id"`

	TimetableEntryClassID   uuid.UUID  `json:"timetable_entry_class_id" gorm:"type:uuid;not null;column:timetable_entry_class_id"`
	TimetableEntrySectionID *uuid.UUID `json:"timetable_entry_section_id,omitempty" gorm:"type:uuid;column:timetable_entry_section_id"`
	TimetableEntrySubjectID uuid.UUID  `json:"timetable_entry_subject_id" gorm:"type:uuid;not null;column:timetable_entry_subject_id"`
	TimetableEntryTeacherID uuid.UUID  `json:"timetable_entry_teacher_id" gorm:"type:uuid;not null;column:timetable_entry_teacher_id;index"`
	TimetableEntryRoomID    *uuid.UUID `json:"timetable_entry_room_id,omitempty" gorm:"type:uuid;column:timetable_entry_room_id"`

	TimetableEntryCreatedAt time.Time `json:"timetable_entry_created_at" gorm:"column:timetable_entry_created_at;autoCreateTime"`
	TimetableEntryUpdatedAt time.Time `json:"timetable_entry_updated_at" gorm:"column:timetable_entry_updated_at;autoUpdateTime"`
}

func (TimetableEntryModel) TableName() string { return "timetable_entries" }
