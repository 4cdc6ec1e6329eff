// file: internals/features/school/scheduling/timetables/service/timetable_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/errs"
	notifService "schoolku_backend/internals/features/school/others/notifications/service"
	notifModel "schoolku_backend/internals/features/school/others/notifications/model"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
	roomModel "schoolku_backend/internals/features/school/scheduling/rooms/model"
	"schoolku_backend/internals/features/school/scheduling/timetables/dto"
	"schoolku_backend/internals/features/school/scheduling/timetables/model"
)

type TimetableService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *TimetableService {
	return &TimetableService{DB: db}
}

/* =========================
   Pure decision helpers
========================= */

// EnsureMutable: hanya draft yang boleh diedit.
func EnsureMutable(status string) error {
	if status != model.TimetableStatusDraft {
		return errs.ErrImmutableState
	}
	return nil
}

// EntriesToActivities memetakan entry ke input detector.
func EntriesToActivities(entries []model.TimetableEntryModel) []conflicts.Activity {
	out := make([]conflicts.Activity, 0, len(entries))
	for _, e := range entries {
		a := conflicts.Activity{
			ActivityID: e.TimetableEntryID,
			DayOfWeek:  e.TimetableEntryDayOfWeek,
			PeriodID:   e.TimetableEntryPeriodID,
			TeacherID:  e.TimetableEntryTeacherID,
			ClassID:    e.TimetableEntryClassID,
		}
		if e.TimetableEntrySectionID != nil {
			a.SectionID = *e.TimetableEntrySectionID
		}
		if e.TimetableEntryRoomID != nil {
			a.RoomID = *e.TimetableEntryRoomID
		}
		out = append(out, a)
	}
	return out
}

// GateOnConflicts: publish gate — satu bentrok pun memblokir.
func GateOnConflicts(cs []conflicts.Conflict) error {
	if len(cs) > 0 {
		return &conflicts.ConflictError{Conflicts: cs}
	}
	return nil
}

// ComputeRoomUtilization menghitung utilisasi room dengan denominator
// jumlah slot (day_of_week, period_id) DISTINCT yang benar-benar dipakai
// timetable ini — bukan angka tetap per minggu.
func ComputeRoomUtilization(entries []model.TimetableEntryModel) []dto.RoomUsage {
	type slot struct {
		day    int
		period uuid.UUID
	}
	slots := map[slot]struct{}{}
	used := map[uuid.UUID]map[slot]struct{}{}

	for _, e := range entries {
		s := slot{day: e.TimetableEntryDayOfWeek, period: e.TimetableEntryPeriodID}
		slots[s] = struct{}{}
		if e.TimetableEntryRoomID == nil {
			continue
		}
		rid := *e.TimetableEntryRoomID
		if used[rid] == nil {
			used[rid] = map[slot]struct{}{}
		}
		used[rid][s] = struct{}{}
	}

	total := len(slots)
	out := make([]dto.RoomUsage, 0, len(used))
	for rid, ss := range used {
		u := dto.RoomUsage{RoomID: rid, UsedSlots: len(ss), TotalSlots: total}
		if total > 0 {
			u.UtilizationPct = float64(len(ss)) / float64(total) * 100
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID.String() < out[j].RoomID.String() })
	return out
}

/* =========================
   Loads
========================= */

func (s *TimetableService) loadOwned(ctx context.Context, schoolID, timetableID uuid.UUID) (model.TimetableModel, error) {
	var tt model.TimetableModel
	err := s.DB.WithContext(ctx).
		Where("timetable_id = ? AND timetable_school_id = ?", timetableID, schoolID).
		First(&tt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tt, errs.ErrNotFound
	}
	return tt, err
}

func (s *TimetableService) loadEntries(ctx context.Context, timetableID uuid.UUID) ([]model.TimetableEntryModel, error) {
	var entries []model.TimetableEntryModel
	err := s.DB.WithContext(ctx).
		Where("timetable_entry_timetable_id = ?", timetableID).
		Order("timetable_entry_day_of_week ASC, timetable_entry_created_at ASC").
		Find(&entries).Error
	return entries, err
}

/* =========================
   Draft lifecycle
========================= */

func (s *TimetableService) CreateDraft(ctx context.Context, schoolID uuid.UUID, req dto.CreateTimetableRequest) (model.TimetableModel, error) {
	// versi berikutnya = max versi existing + 1 (riwayat publish tersimpan sebagai baris lama)
	var maxVersion int
	if err := s.DB.WithContext(ctx).
		Model(&model.TimetableModel{}).
		Where("timetable_school_id = ?", schoolID).
		Select("COALESCE(MAX(timetable_version), 0)").
		Scan(&maxVersion).Error; err != nil {
		return model.TimetableModel{}, err
	}

	tt := req.ToModel(schoolID, maxVersion+1)
	if err := s.DB.WithContext(ctx).Create(&tt).Error; err != nil {
		return model.TimetableModel{}, err
	}
	return tt, nil
}

// AddEntry menulis entry baru pada draft. Bentrok TIDAK memblokir draft
// (gate-nya ada di publish), tapi dikembalikan sebagai warning supaya
// penyusun jadwal langsung melihatnya. Room yang dinonaktifkan menolak
// assignment baru.
func (s *TimetableService) AddEntry(ctx context.Context, schoolID, timetableID uuid.UUID, req dto.CreateTimetableEntryRequest) (model.TimetableEntryModel, []conflicts.Conflict, error) {
	tt, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return model.TimetableEntryModel{}, nil, err
	}
	if err := EnsureMutable(tt.TimetableStatus); err != nil {
		return model.TimetableEntryModel{}, nil, err
	}

	if req.TimetableEntryRoomID != nil {
		if err := s.ensureRoomAssignable(ctx, schoolID, *req.TimetableEntryRoomID); err != nil {
			return model.TimetableEntryModel{}, nil, err
		}
	}

	entry := req.ToModel(schoolID, timetableID)
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return model.TimetableEntryModel{}, nil, err
	}

	warnings, err := s.DetectConflicts(ctx, schoolID, timetableID)
	if err != nil {
		return entry, nil, nil // entry sudah tersimpan; warning gagal dihitung bukan alasan gagal
	}
	return entry, onlyInvolving(warnings, entry.TimetableEntryID), nil
}

func (s *TimetableService) UpdateEntry(ctx context.Context, schoolID, timetableID, entryID uuid.UUID, req dto.UpdateTimetableEntryRequest) (model.TimetableEntryModel, []conflicts.Conflict, error) {
	tt, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return model.TimetableEntryModel{}, nil, err
	}
	if err := EnsureMutable(tt.TimetableStatus); err != nil {
		return model.TimetableEntryModel{}, nil, err
	}

	var entry model.TimetableEntryModel
	if err := s.DB.WithContext(ctx).
		Where("timetable_entry_id = ? AND timetable_entry_timetable_id = ?", entryID, timetableID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entry, nil, errs.ErrNotFound
		}
		return entry, nil, err
	}

	req.Apply(&entry)
	if req.TimetableEntryRoomID != nil {
		if err := s.ensureRoomAssignable(ctx, schoolID, *req.TimetableEntryRoomID); err != nil {
			return entry, nil, err
		}
	}

	if err := s.DB.WithContext(ctx).Save(&entry).Error; err != nil {
		return entry, nil, err
	}

	warnings, err := s.DetectConflicts(ctx, schoolID, timetableID)
	if err != nil {
		return entry, nil, nil
	}
	return entry, onlyInvolving(warnings, entry.TimetableEntryID), nil
}

func (s *TimetableService) DeleteEntry(ctx context.Context, schoolID, timetableID, entryID uuid.UUID) error {
	tt, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return err
	}
	if err := EnsureMutable(tt.TimetableStatus); err != nil {
		return err
	}

	res := s.DB.WithContext(ctx).
		Where("timetable_entry_id = ? AND timetable_entry_timetable_id = ?", entryID, timetableID).
		Delete(&model.TimetableEntryModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *TimetableService) ensureRoomAssignable(ctx context.Context, schoolID, roomID uuid.UUID) error {
	var rm roomModel.RoomModel
	err := s.DB.WithContext(ctx).
		Where("room_id = ? AND room_school_id = ?", roomID, schoolID).
		First(&rm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewValidation("room tidak ditemukan").Add("room_id", "room tidak ditemukan di sekolah ini")
	}
	if err != nil {
		return err
	}
	if !rm.RoomIsAvailable {
		return errs.NewValidation(fmt.Sprintf("room %s sedang dinonaktifkan dan tidak menerima jadwal baru", rm.RoomName)).
			Add("room_id", "room tidak tersedia")
	}
	return nil
}

func onlyInvolving(cs []conflicts.Conflict, id uuid.UUID) []conflicts.Conflict {
	out := make([]conflicts.Conflict, 0, len(cs))
	for _, c := range cs {
		if c.FirstID == id || c.SecondID == id {
			out = append(out, c)
		}
	}
	return out
}

/* =========================
   Conflict detection & publish
========================= */

func (s *TimetableService) DetectConflicts(ctx context.Context, schoolID, timetableID uuid.UUID) ([]conflicts.Conflict, error) {
	if _, err := s.loadOwned(ctx, schoolID, timetableID); err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	return conflicts.Detect(EntriesToActivities(entries)), nil
}

// Publish: gate bentrok + conditional update ber-guard status (optimistic),
// lalu demote timetable current lain milik sekolah yang sama.
// Publish+demote adalah pasangan compensating-action: kalau demote gagal,
// publish di-undo; kalau undo juga gagal, dicatat untuk repair scan.
func (s *TimetableService) Publish(ctx context.Context, schoolID, timetableID, by uuid.UUID) (model.TimetableModel, error) {
	tt, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return tt, err
	}
	switch tt.TimetableStatus {
	case model.TimetableStatusDraft:
		// lanjut
	case model.TimetableStatusPublished:
		return tt, errs.ErrStaleState
	default:
		return tt, errs.ErrImmutableState
	}

	entries, err := s.loadEntries(ctx, timetableID)
	if err != nil {
		return tt, err
	}
	if err := GateOnConflicts(conflicts.Detect(EntriesToActivities(entries))); err != nil {
		return tt, err
	}

	now := time.Now()

	// Step 1: publish — hanya jika masih draft (re-validasi tepat sebelum write).
	res := s.DB.WithContext(ctx).
		Model(&model.TimetableModel{}).
		Where("timetable_id = ? AND timetable_status = ?", timetableID, model.TimetableStatusDraft).
		Updates(map[string]any{
			"timetable_status":       model.TimetableStatusPublished,
			"timetable_is_current":   true,
			"timetable_published_at": now,
			"timetable_published_by": by,
		})
	if res.Error != nil {
		return tt, res.Error
	}
	if res.RowsAffected == 0 {
		// publish lain menang di antara read dan write
		return tt, errs.ErrStaleState
	}

	// Step 2: demote semua timetable current lain di sekolah yang sama.
	demote := s.DB.WithContext(ctx).
		Model(&model.TimetableModel{}).
		Where("timetable_school_id = ? AND timetable_id <> ? AND timetable_is_current = TRUE", schoolID, timetableID).
		Update("timetable_is_current", false)
	if demote.Error != nil {
		// compensating action: undo publish
		undo := s.DB.WithContext(ctx).
			Model(&model.TimetableModel{}).
			Where("timetable_id = ?", timetableID).
			Updates(map[string]any{
				"timetable_status":       model.TimetableStatusDraft,
				"timetable_is_current":   false,
				"timetable_published_at": nil,
				"timetable_published_by": nil,
			})
		if undo.Error != nil {
			// dua flag current bisa hidup berbarengan sampai repair scan jalan
			log.Printf("[RECONCILE] publish timetable %s: demote gagal (%v) dan undo gagal (%v)", timetableID, demote.Error, undo.Error)
		}
		return tt, demote.Error
	}

	out, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return tt, err
	}

	notifService.Enqueue(s.DB.WithContext(ctx), schoolID, by,
		notifModel.NotificationTypeTimetablePublished,
		fmt.Sprintf("Timetable %q v%d dipublikasikan", out.TimetableName, out.TimetableVersion),
		map[string]any{"timetable_id": out.TimetableID, "version": out.TimetableVersion})

	return out, nil
}

func (s *TimetableService) Archive(ctx context.Context, schoolID, timetableID uuid.UUID) (model.TimetableModel, error) {
	tt, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return tt, err
	}
	if tt.TimetableStatus != model.TimetableStatusPublished {
		return tt, errs.ErrImmutableState
	}

	res := s.DB.WithContext(ctx).
		Model(&model.TimetableModel{}).
		Where("timetable_id = ? AND timetable_status = ?", timetableID, model.TimetableStatusPublished).
		Updates(map[string]any{
			"timetable_status":     model.TimetableStatusArchived,
			"timetable_is_current": false,
		})
	if res.Error != nil {
		return tt, res.Error
	}
	if res.RowsAffected == 0 {
		return tt, errs.ErrStaleState
	}
	return s.loadOwned(ctx, schoolID, timetableID)
}

/* =========================
   Reads
========================= */

func (s *TimetableService) GetWithEntries(ctx context.Context, schoolID, timetableID uuid.UUID) (dto.TimetableWithEntries, error) {
	tt, err := s.loadOwned(ctx, schoolID, timetableID)
	if err != nil {
		return dto.TimetableWithEntries{}, err
	}
	entries, err := s.loadEntries(ctx, timetableID)
	if err != nil {
		return dto.TimetableWithEntries{}, err
	}
	return dto.TimetableWithEntries{
		Timetable: dto.FromTimetableModel(tt),
		Entries:   dto.FromEntryModels(entries),
	}, nil
}

func (s *TimetableService) List(ctx context.Context, schoolID uuid.UUID, status string, limit, offset int) ([]model.TimetableModel, int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.TimetableModel{}).
		Where("timetable_school_id = ?", schoolID)
	if status != "" {
		q = q.Where("timetable_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.TimetableModel
	if err := q.Order("timetable_version DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CurrentPublished: timetable aktif sekolah (dipakai substitution assigner).
func (s *TimetableService) CurrentPublished(ctx context.Context, schoolID uuid.UUID) (model.TimetableModel, error) {
	var tt model.TimetableModel
	err := s.DB.WithContext(ctx).
		Where("timetable_school_id = ? AND timetable_status = ? AND timetable_is_current = TRUE",
			schoolID, model.TimetableStatusPublished).
		First(&tt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tt, errs.ErrNotFound
	}
	return tt, err
}

func (s *TimetableService) RoomUtilization(ctx context.Context, schoolID, timetableID uuid.UUID) ([]dto.RoomUsage, error) {
	if _, err := s.loadOwned(ctx, schoolID, timetableID); err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	return ComputeRoomUtilization(entries), nil
}

/* =========================
   Reconciliation scan
========================= */

// ReconcileCurrentFlags memperbaiki pelanggaran invariant "satu current per sekolah":
//  1. is_current=TRUE tapi status bukan published → clear.
//  2. lebih dari satu current published per sekolah → sisakan yang terbaru.
//
// Dipanggil scheduler background; hasil repair hanya dicatat, tidak user-facing.
func (s *TimetableService) ReconcileCurrentFlags(ctx context.Context) (int64, error) {
	var repaired int64

	res := s.DB.WithContext(ctx).
		Model(&model.TimetableModel{}).
		Where("timetable_is_current = TRUE AND timetable_status <> ?", model.TimetableStatusPublished).
		Update("timetable_is_current", false)
	if res.Error != nil {
		return repaired, res.Error
	}
	repaired += res.RowsAffected

	var current []model.TimetableModel
	if err := s.DB.WithContext(ctx).
		Where("timetable_is_current = TRUE AND timetable_status = ?", model.TimetableStatusPublished).
		Order("timetable_school_id ASC, timetable_published_at DESC").
		Find(&current).Error; err != nil {
		return repaired, err
	}

	seen := map[uuid.UUID]bool{}
	for _, tt := range current {
		if !seen[tt.TimetableSchoolID] {
			seen[tt.TimetableSchoolID] = true // pemenang: published_at terbaru
			continue
		}
		res := s.DB.WithContext(ctx).
			Model(&model.TimetableModel{}).
			Where("timetable_id = ?", tt.TimetableID).
			Update("timetable_is_current", false)
		if res.Error != nil {
			return repaired, res.Error
		}
		repaired += res.RowsAffected
		log.Printf("[RECONCILE] demote duplikat current timetable %s (school %s)", tt.TimetableID, tt.TimetableSchoolID)
	}

	return repaired, nil
}
