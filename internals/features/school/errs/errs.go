// file: internals/features/school/errs/errs.go
package errs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors lintas engine. Controller yang memetakan ke status HTTP.
var (
	// ErrNotFound: id tidak ditemukan dalam scope tenant pemanggil.
	ErrNotFound = errors.New("data tidak ditemukan")

	// ErrImmutableState: mutasi pada record published/terminal (timetable, exam, nilai).
	ErrImmutableState = errors.New("record sudah final dan tidak bisa diubah")

	// ErrStaleState: status berubah di antara read dan write (optimistic check gagal).
	ErrStaleState = errors.New("status data sudah berubah, muat ulang lalu coba lagi")

	// ErrAlreadyPublished: khusus nilai yang sudah dipublikasikan (§ pembeda dari immutable umum,
	// supaya pesan ke guru lebih spesifik).
	ErrAlreadyPublished = errors.New("nilai sudah dipublikasikan dan tidak bisa diubah")
)

// ValidationError: prasyarat tidak terpenuhi (nilai di luar range, comments kosong,
// cakupan entry belum lengkap). Fields memetakan nama field → daftar pesan.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validasi gagal"
}

func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// EmptyExamError: publish exam tanpa satu pun paper.
type EmptyExamError struct {
	ExamID uuid.UUID
}

func (e *EmptyExamError) Error() string {
	return fmt.Sprintf("exam %s belum memiliki paper, tidak bisa dipublikasikan", e.ExamID)
}

/* =======================================================
   Postgres error mapping (unique / FK / exclusion)
======================================================= */

type pgSQLErr interface{ SQLState() string }

// PgCode mengembalikan SQLSTATE bila err berasal dari driver Postgres.
func PgCode(err error) string {
	var se pgSQLErr
	if errors.As(err, &se) {
		return se.SQLState()
	}
	return ""
}

const (
	PgUniqueViolation    = "23505"
	PgFKViolation        = "23503"
	PgExclusionViolation = "23P01"
)
