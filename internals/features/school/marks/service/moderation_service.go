// file: internals/features/school/marks/service/moderation_service.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/marks/dto"
	"schoolku_backend/internals/features/school/marks/model"
	notifModel "schoolku_backend/internals/features/school/others/notifications/model"
	notifSvc "schoolku_backend/internals/features/school/others/notifications/service"
)

/* =======================================================
   Workflow moderasi: submit → assign → approve/reject → publish
======================================================= */

// SubmitForModeration: kunci semua nilai draft paper jadi submitted dan buka
// satu request moderasi. Ditolak kalau validasi belum lulus atau sudah ada
// request aktif untuk paper yang sama.
func (s *MarksService) SubmitForModeration(ctx context.Context, schoolID, paperID, submittedBy uuid.UUID) (model.ModerationRequestModel, error) {
	validation, err := s.ValidateMarks(ctx, schoolID, paperID)
	if err != nil {
		return model.ModerationRequestModel{}, err
	}
	if !validation.Valid {
		ve := errs.NewValidation("nilai belum siap dimoderasi")
		for _, p := range validation.Problems {
			ve.Add("marks", p)
		}
		return model.ModerationRequestModel{}, ve
	}

	var active int64
	if err := s.DB.WithContext(ctx).
		Model(&model.ModerationRequestModel{}).
		Where("moderation_request_school_id = ? AND moderation_request_exam_paper_id = ? AND moderation_request_status IN ?",
			schoolID, paperID, []string{model.ModerationStatusPending, model.ModerationStatusInReview}).
		Count(&active).Error; err != nil {
		return model.ModerationRequestModel{}, err
	}
	if active > 0 {
		return model.ModerationRequestModel{}, errs.NewValidation(
			"paper ini sudah punya request moderasi yang masih aktif",
		)
	}

	// kunci nilai dulu; jumlah baris yang terkunci jadi snapshot request
	res := s.DB.WithContext(ctx).
		Model(&model.StudentMarkModel{}).
		Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_status = ?",
			schoolID, paperID, model.MarkStatusDraft).
		Update("student_mark_status", model.MarkStatusSubmitted)
	if res.Error != nil {
		return model.ModerationRequestModel{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.ModerationRequestModel{}, errs.NewValidation(
			"tidak ada nilai draft yang bisa di-submit",
		)
	}

	req := model.ModerationRequestModel{
		ModerationRequestSchoolID:    schoolID,
		ModerationRequestExamPaperID: paperID,
		ModerationRequestSubmittedBy: submittedBy,
		ModerationRequestStatus:      model.ModerationStatusPending,
		ModerationRequestMarksCount:  int(res.RowsAffected),
	}
	if err := s.DB.WithContext(ctx).Create(&req).Error; err != nil {
		// request gagal dibuat: kembalikan nilai ke draft supaya guru
		// tidak terkunci tanpa ada request yang mereviewnya
		undo := s.DB.WithContext(ctx).
			Model(&model.StudentMarkModel{}).
			Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_status = ?",
				schoolID, paperID, model.MarkStatusSubmitted).
			Update("student_mark_status", model.MarkStatusDraft)
		if undo.Error != nil {
			log.Printf("[RECONCILE] submit moderasi paper %s: create request gagal (%v) dan undo gagal (%v)",
				paperID, err, undo.Error)
		}
		return model.ModerationRequestModel{}, err
	}
	return req, nil
}

// AssignModerator: pending → in_review dengan moderator tercatat.
func (s *MarksService) AssignModerator(ctx context.Context, schoolID, requestID, moderatorID uuid.UUID) (model.ModerationRequestModel, error) {
	req, err := s.loadRequest(ctx, schoolID, requestID)
	if err != nil {
		return model.ModerationRequestModel{}, err
	}
	if req.IsTerminal() {
		return model.ModerationRequestModel{}, errs.ErrImmutableState
	}

	res := s.DB.WithContext(ctx).
		Model(&model.ModerationRequestModel{}).
		Where("moderation_request_id = ? AND moderation_request_status = ?",
			requestID, model.ModerationStatusPending).
		Updates(map[string]any{
			"moderation_request_status":       model.ModerationStatusInReview,
			"moderation_request_moderator_id": moderatorID,
		})
	if res.Error != nil {
		return model.ModerationRequestModel{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.ModerationRequestModel{}, errs.ErrStaleState
	}
	return s.loadRequest(ctx, schoolID, requestID)
}

// MarkOutcomeFor memetakan outcome request ke status nilai: approved
// mengunci nilai jadi moderated; rejected mengembalikan nilai persis ke
// draft (bukan submitted) supaya guru langsung bisa memperbaikinya.
func MarkOutcomeFor(requestOutcome string) string {
	if requestOutcome == model.ModerationStatusApproved {
		return model.MarkStatusModerated
	}
	return model.MarkStatusDraft
}

// Approve: nilai submitted → moderated, lalu request → approved.
// Nilai dulu baru request: reconciler mendeteksi "moderated tapi request
// belum approved" dan memperbaikinya, arah sebaliknya tidak terdeteksi.
func (s *MarksService) Approve(ctx context.Context, schoolID, requestID, moderatorID uuid.UUID, req dto.ApproveModerationRequest) (model.ModerationRequestModel, error) {
	return s.review(ctx, schoolID, requestID, moderatorID,
		MarkOutcomeFor(model.ModerationStatusApproved), model.ModerationStatusApproved, req.Comments)
}

// Reject: nilai submitted → draft (guru bisa perbaiki), request → rejected.
// Komentar wajib; tanpa komentar guru tidak tahu apa yang salah.
func (s *MarksService) Reject(ctx context.Context, schoolID, requestID, moderatorID uuid.UUID, req dto.RejectModerationRequest) (model.ModerationRequestModel, error) {
	if req.Comments == "" {
		return model.ModerationRequestModel{}, errs.NewValidation(
			"komentar wajib diisi saat menolak moderasi",
		).Add("comments", "wajib diisi")
	}

	out, err := s.review(ctx, schoolID, requestID, moderatorID,
		MarkOutcomeFor(model.ModerationStatusRejected), model.ModerationStatusRejected, &req.Comments)
	if err != nil {
		return out, err
	}

	notifSvc.Enqueue(s.DB.WithContext(ctx), schoolID, out.ModerationRequestSubmittedBy,
		notifModel.NotificationTypeMarksRejected,
		"Moderasi nilai ditolak",
		map[string]any{
			"moderation_request_id": out.ModerationRequestID,
			"exam_paper_id":         out.ModerationRequestExamPaperID,
			"comments":              req.Comments,
		})
	return out, nil
}

// review menjalankan dua langkah outcome moderasi sebagai pasangan
// kompensasi: update nilai dulu, lalu request; kalau langkah kedua gagal,
// langkah pertama dibatalkan.
func (s *MarksService) review(ctx context.Context, schoolID, requestID, moderatorID uuid.UUID, markTo, requestTo string, comments *string) (model.ModerationRequestModel, error) {
	req, err := s.loadRequest(ctx, schoolID, requestID)
	if err != nil {
		return model.ModerationRequestModel{}, err
	}
	if req.IsTerminal() {
		return model.ModerationRequestModel{}, errs.ErrImmutableState
	}

	markRes := s.DB.WithContext(ctx).
		Model(&model.StudentMarkModel{}).
		Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_status = ?",
			schoolID, req.ModerationRequestExamPaperID, model.MarkStatusSubmitted).
		Update("student_mark_status", markTo)
	if markRes.Error != nil {
		return model.ModerationRequestModel{}, markRes.Error
	}

	now := time.Now()
	reqRes := s.DB.WithContext(ctx).
		Model(&model.ModerationRequestModel{}).
		Where("moderation_request_id = ? AND moderation_request_status IN ?",
			requestID, []string{model.ModerationStatusPending, model.ModerationStatusInReview}).
		Updates(map[string]any{
			"moderation_request_status":       requestTo,
			"moderation_request_moderator_id": moderatorID,
			"moderation_request_comments":     comments,
			"moderation_request_reviewed_at":  now,
		})
	if reqRes.Error != nil || reqRes.RowsAffected == 0 {
		// kompensasi: kembalikan nilai ke submitted
		undo := s.DB.WithContext(ctx).
			Model(&model.StudentMarkModel{}).
			Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_status = ?",
				schoolID, req.ModerationRequestExamPaperID, markTo).
			Update("student_mark_status", model.MarkStatusSubmitted)
		if undo.Error != nil {
			log.Printf("[RECONCILE] review request %s: update request gagal dan undo nilai gagal (%v)",
				requestID, undo.Error)
		}
		if reqRes.Error != nil {
			return model.ModerationRequestModel{}, reqRes.Error
		}
		return model.ModerationRequestModel{}, errs.ErrStaleState
	}

	return s.loadRequest(ctx, schoolID, requestID)
}

// PublishModeratedMarks: batch moderated → published. Hanya boleh setelah
// request moderasi paper berstatus approved. Setelah ini nilai final.
func (s *MarksService) PublishModeratedMarks(ctx context.Context, schoolID, paperID, publishedBy uuid.UUID) (int64, error) {
	var approved int64
	if err := s.DB.WithContext(ctx).
		Model(&model.ModerationRequestModel{}).
		Where("moderation_request_school_id = ? AND moderation_request_exam_paper_id = ? AND moderation_request_status = ?",
			schoolID, paperID, model.ModerationStatusApproved).
		Count(&approved).Error; err != nil {
		return 0, err
	}
	if approved == 0 {
		return 0, errs.NewValidation(
			"nilai belum disetujui moderator, belum bisa dipublikasikan",
		)
	}

	res := s.DB.WithContext(ctx).
		Model(&model.StudentMarkModel{}).
		Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_status = ?",
			schoolID, paperID, model.MarkStatusModerated).
		Update("student_mark_status", model.MarkStatusPublished)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, errs.ErrStaleState
	}

	// kabari setiap siswa yang nilainya terbit
	marks, err := s.loadMarks(ctx, schoolID, paperID)
	if err == nil {
		for _, m := range marks {
			if m.StudentMarkStatus != model.MarkStatusPublished {
				continue
			}
			notifSvc.Enqueue(s.DB.WithContext(ctx), schoolID, m.StudentMarkStudentID,
				notifModel.NotificationTypeMarksPublished,
				"Nilai ujian sudah terbit",
				map[string]any{"exam_paper_id": paperID, "student_mark_id": m.StudentMarkID})
		}
	} else {
		log.Printf("[NOTIFY] publish nilai paper %s: gagal memuat nilai untuk notifikasi: %v", paperID, err)
	}

	log.Printf("[MARKS] paper %s: %d nilai dipublikasikan oleh %s", paperID, res.RowsAffected, publishedBy)
	return res.RowsAffected, nil
}

/* =======================================================
   Reads + reconciler
======================================================= */

func (s *MarksService) loadRequest(ctx context.Context, schoolID, requestID uuid.UUID) (model.ModerationRequestModel, error) {
	var req model.ModerationRequestModel
	err := s.DB.WithContext(ctx).
		Where("moderation_request_id = ? AND moderation_request_school_id = ?", requestID, schoolID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return req, errs.ErrNotFound
	}
	return req, err
}

func (s *MarksService) GetModerationRequest(ctx context.Context, schoolID, requestID uuid.UUID) (model.ModerationRequestModel, error) {
	return s.loadRequest(ctx, schoolID, requestID)
}

func (s *MarksService) ListModerationRequests(ctx context.Context, schoolID uuid.UUID, status string, limit, offset int) ([]model.ModerationRequestModel, int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.ModerationRequestModel{}).
		Where("moderation_request_school_id = ?", schoolID)
	if status != "" {
		q = q.Where("moderation_request_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ModerationRequestModel
	err := q.Order("moderation_request_submitted_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

// ReconcileModeration memperbaiki drift dari pasangan kompensasi yang
// setengah jadi: paper yang punya nilai moderated tapi request-nya masih
// aktif dipaksa approved. Dipanggil periodik oleh scheduler.
func (s *MarksService) ReconcileModeration(ctx context.Context) (int64, error) {
	var drifted []model.ModerationRequestModel
	err := s.DB.WithContext(ctx).
		Where("moderation_request_status IN ?",
			[]string{model.ModerationStatusPending, model.ModerationStatusInReview}).
		Where(`EXISTS (
			SELECT 1 FROM student_marks sm
			WHERE sm.student_mark_exam_paper_id = moderation_requests.moderation_request_exam_paper_id
			  AND sm.student_mark_school_id = moderation_requests.moderation_request_school_id
			  AND sm.student_mark_status = ?
		)`, model.MarkStatusModerated).
		Find(&drifted).Error
	if err != nil {
		return 0, err
	}

	var repaired int64
	now := time.Now()
	for _, req := range drifted {
		note := "auto-approved oleh reconciler: nilai sudah moderated"
		res := s.DB.WithContext(ctx).
			Model(&model.ModerationRequestModel{}).
			Where("moderation_request_id = ? AND moderation_request_status IN ?",
				req.ModerationRequestID,
				[]string{model.ModerationStatusPending, model.ModerationStatusInReview}).
			Updates(map[string]any{
				"moderation_request_status":      model.ModerationStatusApproved,
				"moderation_request_comments":    note,
				"moderation_request_reviewed_at": now,
			})
		if res.Error != nil {
			log.Printf("[RECONCILE] request %s: gagal auto-approve: %v", req.ModerationRequestID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			repaired += res.RowsAffected
			log.Printf("[RECONCILE] request %s paper %s dipaksa approved (nilai sudah moderated)",
				req.ModerationRequestID, req.ModerationRequestExamPaperID)
		}
	}
	return repaired, nil
}
