// file: internals/features/school/exams/service/exam_service.go
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
	"schoolku_backend/internals/features/school/exams/dto"
	"schoolku_backend/internals/features/school/exams/model"
	notifModel "schoolku_backend/internals/features/school/others/notifications/model"
	notifService "schoolku_backend/internals/features/school/others/notifications/service"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
)

type ExamService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *ExamService {
	return &ExamService{DB: db}
}

/* =========================
   Pure decision helpers
========================= */

// MinuteOf mengubah "HH:MM" ke menit-sejak-tengah-malam.
func MinuteOf(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// EnsurePaperMutable: paper hanya boleh diubah selama exam belum published.
func EnsurePaperMutable(exam model.ExamModel) error {
	if exam.ExamIsPublished {
		return errs.ErrImmutableState
	}
	return nil
}

// ValidatePaperTimes: interval harus maju (start < end).
func ValidatePaperTimes(startHHMM, endHHMM string) error {
	start, err := MinuteOf(startHHMM)
	if err != nil {
		return errs.NewValidation("format jam mulai tidak valid").Add("exam_paper_start_time", err.Error())
	}
	end, err := MinuteOf(endHHMM)
	if err != nil {
		return errs.NewValidation("format jam selesai tidak valid").Add("exam_paper_end_time", err.Error())
	}
	if start >= end {
		return errs.NewValidation("jam selesai harus setelah jam mulai").
			Add("exam_paper_end_time", "harus lebih besar dari jam mulai")
	}
	return nil
}

// PapersToActivities memetakan paper ke input detector (interval bertanggal).
// Paper dengan jam tak valid dilewati; validasi jam dilakukan saat tulis.
func PapersToActivities(papers []model.ExamPaperModel) []conflicts.Activity {
	out := make([]conflicts.Activity, 0, len(papers))
	for _, p := range papers {
		start, err1 := MinuteOf(p.ExamPaperStartTime)
		end, err2 := MinuteOf(p.ExamPaperEndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		a := conflicts.Activity{
			ActivityID:  p.ExamPaperID,
			Date:        p.ExamPaperExamDate.Format("2006-01-02"),
			StartMinute: start,
			EndMinute:   end,
			TeacherID:   p.ExamPaperInvigilatorID,
			ClassID:     p.ExamPaperClassID,
		}
		if p.ExamPaperSectionID != nil {
			a.SectionID = *p.ExamPaperSectionID
		}
		if p.ExamPaperRoomID != nil {
			a.RoomID = *p.ExamPaperRoomID
		}
		out = append(out, a)
	}
	return out
}

// GatePublish: gerbang publish exam — butuh ≥1 paper lalu nol bentrok.
func GatePublish(exam model.ExamModel, papers []model.ExamPaperModel) error {
	if len(papers) == 0 {
		return &errs.EmptyExamError{ExamID: exam.ExamID}
	}
	if cs := conflicts.Detect(PapersToActivities(papers)); len(cs) > 0 {
		return &conflicts.ConflictError{Conflicts: cs}
	}
	return nil
}

// GroupPapersByDate: proyeksi kalender murni, tanggal terurut naik.
func GroupPapersByDate(papers []model.ExamPaperModel) []dto.ExamDayGroup {
	byDate := map[string][]model.ExamPaperModel{}
	for _, p := range papers {
		d := p.ExamPaperExamDate.Format("2006-01-02")
		byDate[d] = append(byDate[d], p)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]dto.ExamDayGroup, 0, len(dates))
	for _, d := range dates {
		ps := byDate[d]
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].ExamPaperStartTime != ps[j].ExamPaperStartTime {
				return ps[i].ExamPaperStartTime < ps[j].ExamPaperStartTime
			}
			return ps[i].ExamPaperID.String() < ps[j].ExamPaperID.String()
		})
		out = append(out, dto.ExamDayGroup{ExamDate: d, Papers: dto.FromPaperModels(ps)})
	}
	return out
}

/* =========================
   Loads
========================= */

func (s *ExamService) loadOwned(ctx context.Context, schoolID, examID uuid.UUID) (model.ExamModel, error) {
	var ex model.ExamModel
	err := s.DB.WithContext(ctx).
		Where("exam_id = ? AND exam_school_id = ?", examID, schoolID).
		First(&ex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ex, errs.ErrNotFound
	}
	return ex, err
}

func (s *ExamService) loadPapers(ctx context.Context, examID uuid.UUID) ([]model.ExamPaperModel, error) {
	var papers []model.ExamPaperModel
	err := s.DB.WithContext(ctx).
		Where("exam_paper_exam_id = ?", examID).
		Order("exam_paper_exam_date ASC, exam_paper_start_time ASC").
		Find(&papers).Error
	return papers, err
}

/* =========================
   CRUD exam & papers
========================= */

func (s *ExamService) CreateExam(ctx context.Context, schoolID uuid.UUID, req dto.CreateExamRequest) (model.ExamModel, error) {
	ex := req.ToModel(schoolID)
	if err := s.DB.WithContext(ctx).Create(&ex).Error; err != nil {
		return model.ExamModel{}, err
	}
	return ex, nil
}

func (s *ExamService) AddPaper(ctx context.Context, schoolID, examID uuid.UUID, req dto.CreateExamPaperRequest) (model.ExamPaperModel, []conflicts.Conflict, error) {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return model.ExamPaperModel{}, nil, err
	}
	if err := EnsurePaperMutable(ex); err != nil {
		return model.ExamPaperModel{}, nil, err
	}
	if err := ValidatePaperTimes(req.ExamPaperStartTime, req.ExamPaperEndTime); err != nil {
		return model.ExamPaperModel{}, nil, err
	}

	paper := req.ToModel(schoolID, examID)
	if err := s.DB.WithContext(ctx).Create(&paper).Error; err != nil {
		return model.ExamPaperModel{}, nil, err
	}

	// bentrok di draft = warning, gate keras ada di publish
	papers, err := s.loadPapers(ctx, examID)
	if err != nil {
		return paper, nil, nil
	}
	return paper, involvingPaper(conflicts.Detect(PapersToActivities(papers)), paper.ExamPaperID), nil
}

func (s *ExamService) UpdatePaper(ctx context.Context, schoolID, examID, paperID uuid.UUID, req dto.UpdateExamPaperRequest) (model.ExamPaperModel, []conflicts.Conflict, error) {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return model.ExamPaperModel{}, nil, err
	}
	if err := EnsurePaperMutable(ex); err != nil {
		return model.ExamPaperModel{}, nil, err
	}

	var paper model.ExamPaperModel
	if err := s.DB.WithContext(ctx).
		Where("exam_paper_id = ? AND exam_paper_exam_id = ?", paperID, examID).
		First(&paper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return paper, nil, errs.ErrNotFound
		}
		return paper, nil, err
	}

	req.Apply(&paper)
	if err := ValidatePaperTimes(paper.ExamPaperStartTime, paper.ExamPaperEndTime); err != nil {
		return paper, nil, err
	}
	if err := s.DB.WithContext(ctx).Save(&paper).Error; err != nil {
		return paper, nil, err
	}

	papers, err := s.loadPapers(ctx, examID)
	if err != nil {
		return paper, nil, nil
	}
	return paper, involvingPaper(conflicts.Detect(PapersToActivities(papers)), paper.ExamPaperID), nil
}

func (s *ExamService) DeletePaper(ctx context.Context, schoolID, examID, paperID uuid.UUID) error {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return err
	}
	if err := EnsurePaperMutable(ex); err != nil {
		return err
	}

	res := s.DB.WithContext(ctx).
		Where("exam_paper_id = ? AND exam_paper_exam_id = ?", paperID, examID).
		Delete(&model.ExamPaperModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func involvingPaper(cs []conflicts.Conflict, id uuid.UUID) []conflicts.Conflict {
	out := make([]conflicts.Conflict, 0, len(cs))
	for _, c := range cs {
		if c.FirstID == id || c.SecondID == id {
			out = append(out, c)
		}
	}
	return out
}

/* =========================
   Conflicts & lifecycle
========================= */

func (s *ExamService) CheckSchedulingConflicts(ctx context.Context, schoolID, examID uuid.UUID) ([]conflicts.Conflict, error) {
	if _, err := s.loadOwned(ctx, schoolID, examID); err != nil {
		return nil, err
	}
	papers, err := s.loadPapers(ctx, examID)
	if err != nil {
		return nil, err
	}
	return conflicts.Detect(PapersToActivities(papers)), nil
}

// Publish: EmptyExam gate + conflict gate + conditional update ber-guard status.
func (s *ExamService) Publish(ctx context.Context, schoolID, examID, by uuid.UUID) (model.ExamModel, error) {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return ex, err
	}
	if ex.ExamIsPublished {
		return ex, errs.ErrStaleState
	}
	if ex.ExamStatus != model.ExamStatusDraft {
		return ex, errs.ErrImmutableState
	}

	papers, err := s.loadPapers(ctx, examID)
	if err != nil {
		return ex, err
	}
	if err := GatePublish(ex, papers); err != nil {
		return ex, err
	}

	res := s.DB.WithContext(ctx).
		Model(&model.ExamModel{}).
		Where("exam_id = ? AND exam_status = ? AND exam_is_published = FALSE", examID, model.ExamStatusDraft).
		Updates(map[string]any{
			"exam_status":       model.ExamStatusScheduled,
			"exam_is_published": true,
			"exam_published_at": time.Now(),
			"exam_published_by": by,
		})
	if res.Error != nil {
		return ex, res.Error
	}
	if res.RowsAffected == 0 {
		return ex, errs.ErrStaleState
	}

	out, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return ex, err
	}

	notifService.Enqueue(s.DB.WithContext(ctx), schoolID, by,
		notifModel.NotificationTypeExamPublished,
		fmt.Sprintf("Jadwal ujian %q dipublikasikan", out.ExamName),
		map[string]any{"exam_id": out.ExamID, "paper_count": len(papers)})

	return out, nil
}

// Unpublish: jalur eksplisit untuk membuka kembali exam yang terlanjur publish.
// Hanya sah selama belum berjalan (scheduled), dan alasan wajib diisi.
func (s *ExamService) Unpublish(ctx context.Context, schoolID, examID uuid.UUID, reason string) (model.ExamModel, error) {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return ex, err
	}
	if !ex.ExamIsPublished || ex.ExamStatus != model.ExamStatusScheduled {
		return ex, errs.ErrImmutableState
	}

	res := s.DB.WithContext(ctx).
		Model(&model.ExamModel{}).
		Where("exam_id = ? AND exam_status = ? AND exam_is_published = TRUE", examID, model.ExamStatusScheduled).
		Updates(map[string]any{
			"exam_status":             model.ExamStatusDraft,
			"exam_is_published":       false,
			"exam_unpublished_at":     time.Now(),
			"exam_unpublished_reason": reason,
		})
	if res.Error != nil {
		return ex, res.Error
	}
	if res.RowsAffected == 0 {
		return ex, errs.ErrStaleState
	}
	return s.loadOwned(ctx, schoolID, examID)
}

// Start: scheduled → ongoing (hari-H ujian dimulai).
func (s *ExamService) Start(ctx context.Context, schoolID, examID uuid.UUID) (model.ExamModel, error) {
	return s.transition(ctx, schoolID, examID, model.ExamStatusScheduled, model.ExamStatusOngoing)
}

// Complete: ongoing → completed.
func (s *ExamService) Complete(ctx context.Context, schoolID, examID uuid.UUID) (model.ExamModel, error) {
	return s.transition(ctx, schoolID, examID, model.ExamStatusOngoing, model.ExamStatusCompleted)
}

func (s *ExamService) transition(ctx context.Context, schoolID, examID uuid.UUID, from, to string) (model.ExamModel, error) {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return ex, err
	}
	if ex.ExamStatus != from {
		return ex, errs.ErrStaleState
	}

	res := s.DB.WithContext(ctx).
		Model(&model.ExamModel{}).
		Where("exam_id = ? AND exam_status = ?", examID, from).
		Update("exam_status", to)
	if res.Error != nil {
		return ex, res.Error
	}
	if res.RowsAffected == 0 {
		return ex, errs.ErrStaleState
	}
	return s.loadOwned(ctx, schoolID, examID)
}

/* =========================
   Reads
========================= */

func (s *ExamService) GetWithPapers(ctx context.Context, schoolID, examID uuid.UUID) (dto.ExamWithPapers, error) {
	ex, err := s.loadOwned(ctx, schoolID, examID)
	if err != nil {
		return dto.ExamWithPapers{}, err
	}
	papers, err := s.loadPapers(ctx, examID)
	if err != nil {
		return dto.ExamWithPapers{}, err
	}
	return dto.ExamWithPapers{
		Exam:   dto.FromExamModel(ex),
		Papers: dto.FromPaperModels(papers),
	}, nil
}

// GetTimetable: papers per tanggal untuk kalender (proyeksi murni).
func (s *ExamService) GetTimetable(ctx context.Context, schoolID, examID uuid.UUID) ([]dto.ExamDayGroup, error) {
	if _, err := s.loadOwned(ctx, schoolID, examID); err != nil {
		return nil, err
	}
	papers, err := s.loadPapers(ctx, examID)
	if err != nil {
		return nil, err
	}
	return GroupPapersByDate(papers), nil
}

func (s *ExamService) List(ctx context.Context, schoolID uuid.UUID, status string, limit, offset int) ([]model.ExamModel, int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.ExamModel{}).
		Where("exam_school_id = ?", schoolID)
	if status != "" {
		q = q.Where("exam_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ExamModel
	if err := q.Order("exam_created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
