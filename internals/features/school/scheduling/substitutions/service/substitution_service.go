// file: internals/features/school/scheduling/substitutions/service/substitution_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/errs"
	notifModel "schoolku_backend/internals/features/school/others/notifications/model"
	notifSvc "schoolku_backend/internals/features/school/others/notifications/service"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
	"schoolku_backend/internals/features/school/scheduling/substitutions/dto"
	"schoolku_backend/internals/features/school/scheduling/substitutions/model"
	timetableModel "schoolku_backend/internals/features/school/scheduling/timetables/model"
	timetableSvc "schoolku_backend/internals/features/school/scheduling/timetables/service"
)

type SubstitutionService struct {
	DB         *gorm.DB
	Timetables *timetableSvc.TimetableService
}

func New(db *gorm.DB) *SubstitutionService {
	return &SubstitutionService{
		DB:         db,
		Timetables: timetableSvc.New(db),
	}
}

/* =======================================================
   Pure helpers — dites tanpa DB
======================================================= */

// OccupiedTeachers: guru yang sudah terpakai di slot (day, period) —
// yang mengajar menurut timetable aktif plus yang sudah di-assign
// sebagai pengganti di slot yang sama pada tanggal itu.
func OccupiedTeachers(entries []timetableModel.TimetableEntryModel, dayOfWeek int, periodID uuid.UUID, assignedSubs []uuid.UUID) map[uuid.UUID]struct{} {
	occupied := make(map[uuid.UUID]struct{})
	for _, e := range entries {
		if e.TimetableEntryDayOfWeek == dayOfWeek && e.TimetableEntryPeriodID == periodID {
			occupied[e.TimetableEntryTeacherID] = struct{}{}
		}
	}
	for _, id := range assignedSubs {
		occupied[id] = struct{}{}
	}
	return occupied
}

// EligibleCandidates: eligible = semua guru aktif − guru asli − occupied.
// Kecocokan subject MENGURUTKAN (match duluan), bukan menyaring — admin
// tetap bisa memilih guru lintas mapel kalau terpaksa.
func EligibleCandidates(teachers []model.SchoolTeacherModel, occupied map[uuid.UUID]struct{}, originalTeacherID, subjectID uuid.UUID) []dto.TeacherCandidate {
	out := make([]dto.TeacherCandidate, 0, len(teachers))
	for _, t := range teachers {
		if !t.SchoolTeacherIsActive {
			continue
		}
		if t.SchoolTeacherID == originalTeacherID {
			continue
		}
		if _, busy := occupied[t.SchoolTeacherID]; busy {
			continue
		}
		out = append(out, dto.TeacherCandidate{
			TeacherID:    t.SchoolTeacherID,
			UserID:       t.SchoolTeacherUserID,
			Name:         t.SchoolTeacherName,
			SubjectMatch: t.TeachesSubject(subjectID),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubjectMatch != out[j].SubjectMatch {
			return out[i].SubjectMatch
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].TeacherID.String() < out[j].TeacherID.String()
	})
	return out
}

/* =======================================================
   Loaders
======================================================= */

func (s *SubstitutionService) loadSubstitution(ctx context.Context, schoolID, subID uuid.UUID) (model.SubstitutionModel, error) {
	var sub model.SubstitutionModel
	err := s.DB.WithContext(ctx).
		Where("substitution_id = ? AND substitution_school_id = ?", subID, schoolID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sub, errs.ErrNotFound
	}
	return sub, err
}

func (s *SubstitutionService) loadEntry(ctx context.Context, schoolID, timetableID, entryID uuid.UUID) (timetableModel.TimetableEntryModel, error) {
	var entry timetableModel.TimetableEntryModel
	err := s.DB.WithContext(ctx).
		Where("timetable_entry_id = ? AND timetable_entry_timetable_id = ? AND timetable_entry_school_id = ?",
			entryID, timetableID, schoolID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entry, errs.ErrNotFound
	}
	return entry, err
}

// slotContext: entry target + semua entry timetable aktif + guru pengganti
// yang sudah assigned di slot yang sama pada tanggal substitusi.
func (s *SubstitutionService) slotContext(ctx context.Context, sub model.SubstitutionModel) (timetableModel.TimetableEntryModel, []timetableModel.TimetableEntryModel, []uuid.UUID, error) {
	current, err := s.Timetables.CurrentPublished(ctx, sub.SubstitutionSchoolID)
	if err != nil {
		return timetableModel.TimetableEntryModel{}, nil, nil, err
	}

	entry, err := s.loadEntry(ctx, sub.SubstitutionSchoolID, current.TimetableID, sub.SubstitutionTimetableEntryID)
	if err != nil {
		return timetableModel.TimetableEntryModel{}, nil, nil, err
	}

	var entries []timetableModel.TimetableEntryModel
	if err := s.DB.WithContext(ctx).
		Where("timetable_entry_timetable_id = ?", current.TimetableID).
		Find(&entries).Error; err != nil {
		return timetableModel.TimetableEntryModel{}, nil, nil, err
	}

	var siblings []model.SubstitutionModel
	if err := s.DB.WithContext(ctx).
		Where("substitution_school_id = ? AND substitution_date = ? AND substitution_status = ? AND substitution_id <> ?",
			sub.SubstitutionSchoolID, sub.SubstitutionDate, model.SubstitutionStatusAssigned, sub.SubstitutionID).
		Find(&siblings).Error; err != nil {
		return timetableModel.TimetableEntryModel{}, nil, nil, err
	}

	entryByID := make(map[uuid.UUID]timetableModel.TimetableEntryModel, len(entries))
	for _, e := range entries {
		entryByID[e.TimetableEntryID] = e
	}
	var assignedSubs []uuid.UUID
	for _, sib := range siblings {
		if sib.SubstitutionSubstituteTeacherID == nil {
			continue
		}
		se, ok := entryByID[sib.SubstitutionTimetableEntryID]
		if !ok {
			continue
		}
		if se.TimetableEntryDayOfWeek == entry.TimetableEntryDayOfWeek &&
			se.TimetableEntryPeriodID == entry.TimetableEntryPeriodID {
			assignedSubs = append(assignedSubs, *sib.SubstitutionSubstituteTeacherID)
		}
	}
	return entry, entries, assignedSubs, nil
}

/* =======================================================
   Lifecycle
======================================================= */

// CreateRequest membuka permintaan substitusi untuk satu slot pada satu
// tanggal. Entry harus milik timetable yang sedang aktif dan weekday
// tanggal harus cocok dengan day_of_week slotnya.
func (s *SubstitutionService) CreateRequest(ctx context.Context, schoolID, createdBy uuid.UUID, req dto.CreateSubstitutionRequest) (model.SubstitutionModel, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return model.SubstitutionModel{}, errs.NewValidation("format tanggal harus YYYY-MM-DD").Add("date", err.Error())
	}

	current, err := s.Timetables.CurrentPublished(ctx, schoolID)
	if err != nil {
		return model.SubstitutionModel{}, err
	}
	entry, err := s.loadEntry(ctx, schoolID, current.TimetableID, req.TimetableEntryID)
	if err != nil {
		return model.SubstitutionModel{}, err
	}
	if int(date.Weekday()) != entry.TimetableEntryDayOfWeek {
		return model.SubstitutionModel{}, errs.NewValidation(
			fmt.Sprintf("tanggal %s jatuh di hari yang berbeda dari slot entry", req.Date),
		).Add("date", "weekday tidak cocok dengan day_of_week entry")
	}

	sub := model.SubstitutionModel{
		SubstitutionSchoolID:          schoolID,
		SubstitutionTimetableEntryID:  entry.TimetableEntryID,
		SubstitutionDate:              date,
		SubstitutionOriginalTeacherID: entry.TimetableEntryTeacherID,
		SubstitutionStatus:            model.SubstitutionStatusPending,
		SubstitutionReason:            req.Reason,
		SubstitutionCreatedBy:         createdBy,
	}
	if err := s.DB.WithContext(ctx).Create(&sub).Error; err != nil {
		return model.SubstitutionModel{}, err
	}
	return sub, nil
}

// FindAvailableTeachers: kandidat untuk satu substitusi pending, sudah
// di-rank (subject match duluan, lalu nama).
func (s *SubstitutionService) FindAvailableTeachers(ctx context.Context, schoolID, subID uuid.UUID) ([]dto.TeacherCandidate, error) {
	sub, err := s.loadSubstitution(ctx, schoolID, subID)
	if err != nil {
		return nil, err
	}
	if sub.SubstitutionStatus != model.SubstitutionStatusPending {
		return nil, errs.ErrImmutableState
	}

	entry, entries, assignedSubs, err := s.slotContext(ctx, sub)
	if err != nil {
		return nil, err
	}

	var teachers []model.SchoolTeacherModel
	if err := s.DB.WithContext(ctx).
		Where("school_teacher_school_id = ? AND school_teacher_is_active = TRUE", schoolID).
		Order("school_teacher_name ASC").
		Find(&teachers).Error; err != nil {
		return nil, err
	}

	occupied := OccupiedTeachers(entries, entry.TimetableEntryDayOfWeek, entry.TimetableEntryPeriodID, assignedSubs)
	return EligibleCandidates(teachers, occupied, sub.SubstitutionOriginalTeacherID, entry.TimetableEntrySubjectID), nil
}

// AssignSubstitute: cek ulang bentrok di saat assign (jadwal bisa berubah
// sejak kandidat ditampilkan), lalu guarded update pada status pending.
// Dua assign bersamaan: persis satu yang menang, yang kalah dapat stale.
func (s *SubstitutionService) AssignSubstitute(ctx context.Context, schoolID, subID, teacherID uuid.UUID) (model.SubstitutionModel, error) {
	sub, err := s.loadSubstitution(ctx, schoolID, subID)
	if err != nil {
		return model.SubstitutionModel{}, err
	}
	switch sub.SubstitutionStatus {
	case model.SubstitutionStatusPending:
		// lanjut
	case model.SubstitutionStatusAssigned:
		return model.SubstitutionModel{}, errs.ErrStaleState
	default:
		return model.SubstitutionModel{}, errs.ErrImmutableState
	}

	var teacher model.SchoolTeacherModel
	err = s.DB.WithContext(ctx).
		Where("school_teacher_id = ? AND school_teacher_school_id = ? AND school_teacher_is_active = TRUE",
			teacherID, schoolID).
		First(&teacher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SubstitutionModel{}, errs.ErrNotFound
	}
	if err != nil {
		return model.SubstitutionModel{}, err
	}
	if teacherID == sub.SubstitutionOriginalTeacherID {
		return model.SubstitutionModel{}, errs.NewValidation(
			"guru asli tidak bisa menjadi penggantinya sendiri",
		).Add("teacher_id", "sama dengan guru asli")
	}

	entry, entries, assignedSubs, err := s.slotContext(ctx, sub)
	if err != nil {
		return model.SubstitutionModel{}, err
	}
	if cerr := s.recheckTeacherClash(entry, entries, assignedSubs, sub, teacher); cerr != nil {
		return model.SubstitutionModel{}, cerr
	}

	now := time.Now()
	res := s.DB.WithContext(ctx).
		Model(&model.SubstitutionModel{}).
		Where("substitution_id = ? AND substitution_status = ?", subID, model.SubstitutionStatusPending).
		Updates(map[string]any{
			"substitution_status":                model.SubstitutionStatusAssigned,
			"substitution_substitute_teacher_id": teacherID,
			"substitution_assigned_at":           now,
		})
	if res.Error != nil {
		return model.SubstitutionModel{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.SubstitutionModel{}, errs.ErrStaleState
	}

	notifSvc.Enqueue(s.DB.WithContext(ctx), schoolID, teacher.SchoolTeacherUserID,
		notifModel.NotificationTypeSubstitutionAssigned,
		"Anda ditugaskan sebagai guru pengganti",
		map[string]any{
			"substitution_id":    subID,
			"timetable_entry_id": entry.TimetableEntryID,
			"date":               sub.SubstitutionDate.Format("2006-01-02"),
		})

	return s.loadSubstitution(ctx, schoolID, subID)
}

// recheckTeacherClash membandingkan slot yang akan diisi kandidat dengan
// komitmen kandidat di slot yang sama lewat detector.
func (s *SubstitutionService) recheckTeacherClash(entry timetableModel.TimetableEntryModel, entries []timetableModel.TimetableEntryModel, assignedSubs []uuid.UUID, sub model.SubstitutionModel, teacher model.SchoolTeacherModel) error {
	acts := []conflicts.Activity{{
		ActivityID:  sub.SubstitutionID,
		Label:       "Substitusi " + sub.SubstitutionDate.Format("2006-01-02"),
		DayOfWeek:   entry.TimetableEntryDayOfWeek,
		PeriodID:    entry.TimetableEntryPeriodID,
		TeacherID:   teacher.SchoolTeacherID,
		TeacherName: teacher.SchoolTeacherName,
	}}
	for _, e := range entries {
		if e.TimetableEntryTeacherID != teacher.SchoolTeacherID {
			continue
		}
		acts = append(acts, conflicts.Activity{
			ActivityID:  e.TimetableEntryID,
			Label:       "Jadwal tetap",
			DayOfWeek:   e.TimetableEntryDayOfWeek,
			PeriodID:    e.TimetableEntryPeriodID,
			TeacherID:   e.TimetableEntryTeacherID,
			TeacherName: teacher.SchoolTeacherName,
		})
	}
	for _, id := range assignedSubs {
		if id != teacher.SchoolTeacherID {
			continue
		}
		acts = append(acts, conflicts.Activity{
			ActivityID:  uuid.New(),
			Label:       "Substitusi lain di slot sama",
			DayOfWeek:   entry.TimetableEntryDayOfWeek,
			PeriodID:    entry.TimetableEntryPeriodID,
			TeacherID:   id,
			TeacherName: teacher.SchoolTeacherName,
		})
	}

	if cs := conflicts.Detect(acts); len(cs) > 0 {
		return &conflicts.ConflictError{Conflicts: cs}
	}
	return nil
}

// Complete: assigned → completed.
func (s *SubstitutionService) Complete(ctx context.Context, schoolID, subID uuid.UUID) (model.SubstitutionModel, error) {
	return s.transition(ctx, schoolID, subID,
		[]string{model.SubstitutionStatusAssigned}, model.SubstitutionStatusCompleted)
}

// Cancel: pending/assigned → cancelled.
func (s *SubstitutionService) Cancel(ctx context.Context, schoolID, subID uuid.UUID) (model.SubstitutionModel, error) {
	return s.transition(ctx, schoolID, subID,
		[]string{model.SubstitutionStatusPending, model.SubstitutionStatusAssigned},
		model.SubstitutionStatusCancelled)
}

func (s *SubstitutionService) transition(ctx context.Context, schoolID, subID uuid.UUID, from []string, to string) (model.SubstitutionModel, error) {
	sub, err := s.loadSubstitution(ctx, schoolID, subID)
	if err != nil {
		return model.SubstitutionModel{}, err
	}
	allowed := false
	for _, f := range from {
		if sub.SubstitutionStatus == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return model.SubstitutionModel{}, errs.ErrImmutableState
	}

	res := s.DB.WithContext(ctx).
		Model(&model.SubstitutionModel{}).
		Where("substitution_id = ? AND substitution_status IN ?", subID, from).
		Update("substitution_status", to)
	if res.Error != nil {
		return model.SubstitutionModel{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.SubstitutionModel{}, errs.ErrStaleState
	}
	return s.loadSubstitution(ctx, schoolID, subID)
}

/* =======================================================
   Reads + direktori guru
======================================================= */

func (s *SubstitutionService) GetByID(ctx context.Context, schoolID, subID uuid.UUID) (model.SubstitutionModel, error) {
	return s.loadSubstitution(ctx, schoolID, subID)
}

func (s *SubstitutionService) List(ctx context.Context, schoolID uuid.UUID, status string, limit, offset int) ([]model.SubstitutionModel, int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.SubstitutionModel{}).
		Where("substitution_school_id = ?", schoolID)
	if status != "" {
		q = q.Where("substitution_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.SubstitutionModel
	err := q.Order("substitution_date DESC, substitution_created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

func (s *SubstitutionService) ListTeachers(ctx context.Context, schoolID uuid.UUID) ([]model.SchoolTeacherModel, error) {
	var rows []model.SchoolTeacherModel
	err := s.DB.WithContext(ctx).
		Where("school_teacher_school_id = ?", schoolID).
		Order("school_teacher_name ASC").
		Find(&rows).Error
	return rows, err
}
