// file: internals/features/school/others/reconciliation/reconciliation_scheduler.go
package reconciliation

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	marksSvc "schoolku_backend/internals/features/school/marks/service"
	timetableSvc "schoolku_backend/internals/features/school/scheduling/timetables/service"
)

// StartReconciliationScheduler menjalankan scan perbaikan periodik di
// background:
//   - flag is_current timetable yang drift (pasangan publish+demote
//     setengah jadi) dikembalikan ke satu-per-sekolah
//   - request moderasi yang tertinggal di belakang nilai moderated
//     dipaksa approved
//
// Satu scan per interval; scan gagal hanya dicatat lalu dicoba lagi di
// tick berikutnya.
func StartReconciliationScheduler(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	timetables := timetableSvc.New(db)
	marks := marksSvc.NewMarksService(db)

	go func() {
		log.Printf("[CLEANUP] reconciliation scheduler aktif, interval %s", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			runOnce(timetables, marks)
		}
	}()
}

func runOnce(timetables *timetableSvc.TimetableService, marks *marksSvc.MarksService) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n, err := timetables.ReconcileCurrentFlags(ctx); err != nil {
		log.Printf("[RECONCILE] scan is_current gagal: %v", err)
	} else if n > 0 {
		log.Printf("[RECONCILE] %d flag is_current timetable diperbaiki", n)
	}

	if n, err := marks.ReconcileModeration(ctx); err != nil {
		log.Printf("[RECONCILE] scan moderasi gagal: %v", err)
	} else if n > 0 {
		log.Printf("[RECONCILE] %d request moderasi di-sinkronkan", n)
	}
}
