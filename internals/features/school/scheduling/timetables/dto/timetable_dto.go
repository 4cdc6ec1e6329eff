// file: internals/features/school/scheduling/timetables/dto/timetable_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/scheduling/timetables/model"
)

/* =========================
   Requests
========================= */

type CreateTimetableRequest struct {
	TimetableName      string    `json:"timetable_name" validate:"required,min=2,max=150"`
	TimetableStartDate time.Time `json:"timetable_start_date" validate:"required"`
	TimetableEndDate   time.Time `json:"timetable_end_date" validate:"required,gtefield=TimetableStartDate"`
}

func (r *CreateTimetableRequest) ToModel(schoolID uuid.UUID, version int) model.TimetableModel {
	return model.TimetableModel{
		TimetableSchoolID:  schoolID,
		TimetableName:      r.TimetableName,
		TimetableStatus:    model.TimetableStatusDraft,
		TimetableStartDate: r.TimetableStartDate,
		TimetableEndDate:   r.TimetableEndDate,
		TimetableVersion:   version,
	}
}

type CreateTimetableEntryRequest struct {
	TimetableEntryDayOfWeek int        `json:"timetable_entry_day_of_week" validate:"min=0,max=6"`
	TimetableEntryPeriodID  uuid.UUID  `json:"timetable_entry_period_id" validate:"required"`
	TimetableEntryClassID   uuid.UUID  `json:"timetable_entry_class_id" validate:"required"`
	TimetableEntrySectionID *uuid.UUID `json:"timetable_entry_section_id"`
	TimetableEntrySubjectID uuid.UUID  `json:"timetable_entry_subject_id" validate:"required"`
	TimetableEntryTeacherID uuid.UUID  `json:"timetable_entry_teacher_id" validate:"required"`
	TimetableEntryRoomID    *uuid.UUID `json:"timetable_entry_room_id"`
}

func (r *CreateTimetableEntryRequest) ToModel(schoolID, timetableID uuid.UUID) model.TimetableEntryModel {
	return model.TimetableEntryModel{
		TimetableEntryTimetableID: timetableID,
		TimetableEntrySchoolID:    schoolID,
		TimetableEntryDayOfWeek:   r.TimetableEntryDayOfWeek,
		TimetableEntryPeriodID:    r.TimetableEntryPeriodID,
		TimetableEntryClassID:     r.TimetableEntryClassID,
		TimetableEntrySectionID:   r.TimetableEntrySectionID,
		TimetableEntrySubjectID:   r.TimetableEntrySubjectID,
		TimetableEntryTeacherID:   r.TimetableEntryTeacherID,
		TimetableEntryRoomID:      r.TimetableEntryRoomID,
	}
}

// UpdateTimetableEntryRequest: PATCH, semua field pointer.
type UpdateTimetableEntryRequest struct {
	TimetableEntryDayOfWeek *int       `json:"timetable_entry_day_of_week" validate:"omitempty,min=0,max=6"`
	TimetableEntryPeriodID  *uuid.UUID `json:"timetable_entry_period_id"`
	TimetableEntryClassID   *uuid.UUID `json:"timetable_entry_class_id"`
	TimetableEntrySectionID *uuid.UUID `json:"timetable_entry_section_id"`
	TimetableEntrySubjectID *uuid.UUID `json:"timetable_entry_subject_id"`
	TimetableEntryTeacherID *uuid.UUID `json:"timetable_entry_teacher_id"`
	TimetableEntryRoomID    *uuid.UUID `json:"timetable_entry_room_id"`
}

func (r *UpdateTimetableEntryRequest) Apply(m *model.TimetableEntryModel) {
	if r.TimetableEntryDayOfWeek != nil {
		m.TimetableEntryDayOfWeek = *r.TimetableEntryDayOfWeek
	}
	if r.TimetableEntryPeriodID != nil {
		m.TimetableEntryPeriodID = *r.TimetableEntryPeriodID
	}
	if r.TimetableEntryClassID != nil {
		m.TimetableEntryClassID = *r.TimetableEntryClassID
	}
	if r.TimetableEntrySectionID != nil {
		m.TimetableEntrySectionID = r.TimetableEntrySectionID
	}
	if r.TimetableEntrySubjectID != nil {
		m.TimetableEntrySubjectID = *r.TimetableEntrySubjectID
	}
	if r.TimetableEntryTeacherID != nil {
		m.TimetableEntryTeacherID = *r.TimetableEntryTeacherID
	}
	if r.TimetableEntryRoomID != nil {
		m.TimetableEntryRoomID = r.TimetableEntryRoomID
	}
}

/* =========================
   Responses (projection tetap)
========================= */

type TimetableResponse struct {
	TimetableID          uuid.UUID  `json:"timetable_id"`
	TimetableSchoolID    uuid.UUID  `json:"timetable_school_id"`
	TimetableName        string     `json:"timetable_name"`
	TimetableStatus      string     `json:"timetable_status"`
	TimetableIsCurrent   bool       `json:"timetable_is_current"`
	TimetableStartDate   time.Time  `json:"timetable_start_date"`
	TimetableEndDate     time.Time  `json:"timetable_end_date"`
	TimetableVersion     int        `json:"timetable_version"`
	TimetablePublishedAt *time.Time `json:"timetable_published_at,omitempty"`
	TimetablePublishedBy *uuid.UUID `json:"timetable_published_by,omitempty"`
	TimetableCreatedAt   time.Time  `json:"timetable_created_at"`
	TimetableUpdatedAt   time.Time  `json:"timetable_updated_at"`
}

func FromTimetableModel(m model.TimetableModel) TimetableResponse {
	return TimetableResponse{
		TimetableID:          m.TimetableID,
		TimetableSchoolID:    m.TimetableSchoolID,
		TimetableName:        m.TimetableName,
		TimetableStatus:      m.TimetableStatus,
		TimetableIsCurrent:   m.TimetableIsCurrent,
		TimetableStartDate:   m.TimetableStartDate,
		TimetableEndDate:     m.TimetableEndDate,
		TimetableVersion:     m.TimetableVersion,
		TimetablePublishedAt: m.TimetablePublishedAt,
		TimetablePublishedBy: m.TimetablePublishedBy,
		TimetableCreatedAt:   m.TimetableCreatedAt,
		TimetableUpdatedAt:   m.TimetableUpdatedAt,
	}
}

func FromTimetableModels(ms []model.TimetableModel) []TimetableResponse {
	out := make([]TimetableResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromTimetableModel(m))
	}
	return out
}

type TimetableEntryResponse struct {
	TimetableEntryID          uuid.UUID  `json:"timetable_entry_id"`
	TimetableEntryTimetableID uuid.UUID  `json:"timetable_entry_timetable_id"`
	TimetableEntryDayOfWeek   int        `json:"timetable_entry_day_of_week"`
	TimetableEntryPeriodID    uuid.UUID  `json:"timetable_entry_period_id"`
	TimetableEntryClassID     uuid.UUID  `json:"timetable_entry_class_id"`
	TimetableEntrySectionID   *uuid.UUID `json:"timetable_entry_section_id,omitempty"`
	TimetableEntrySubjectID   uuid.UUID  `json:"timetable_entry_subject_id"`
	TimetableEntryTeacherID   uuid.UUID  `json:"timetable_entry_teacher_id"`
	TimetableEntryRoomID      *uuid.UUID `json:"timetable_entry_room_id,omitempty"`
}

func FromEntryModel(m model.TimetableEntryModel) TimetableEntryResponse {
	return TimetableEntryResponse{
		TimetableEntryID:          m.TimetableEntryID,
		TimetableEntryTimetableID: m.TimetableEntryTimetableID,
		TimetableEntryDayOfWeek:   m.TimetableEntryDayOfWeek,
		TimetableEntryPeriodID:    m.TimetableEntryPeriodID,
		TimetableEntryClassID:     m.TimetableEntryClassID,
		TimetableEntrySectionID:   m.TimetableEntrySectionID,
		TimetableEntrySubjectID:   m.TimetableEntrySubjectID,
		TimetableEntryTeacherID:   m.TimetableEntryTeacherID,
		TimetableEntryRoomID:      m.TimetableEntryRoomID,
	}
}

func FromEntryModels(ms []model.TimetableEntryModel) []TimetableEntryResponse {
	out := make([]TimetableEntryResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromEntryModel(m))
	}
	return out
}

// TimetableWithEntries: bentuk kontrak publik get-detail (bukan nested bebas).
type TimetableWithEntries struct {
	Timetable TimetableResponse        `json:"timetable"`
	Entries   []TimetableEntryResponse `json:"entries"`
}

// RoomUsage: utilisasi satu room terhadap slot aktif timetable.
type RoomUsage struct {
	RoomID         uuid.UUID `json:"room_id"`
	UsedSlots      int       `json:"used_slots"`
	TotalSlots     int       `json:"total_slots"`
	UtilizationPct float64   `json:"utilization_pct"`
}
