// file: internals/features/school/scheduling/conflicts/detector.go
//
// Deteksi bentrok jadwal (pure computation, tanpa side effect).
// Dipakai timetable engine, exam scheduler, dan substitution assigner
// sebelum setiap transisi publish/assign.
package conflicts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type ClashType string

const (
	TeacherClash ClashType = "teacher_clash"
	RoomClash    ClashType = "room_clash"
	StudentClash ClashType = "student_clash"
)

// Activity: satu aktivitas terjadwal. Persis satu dari dua time key yang diisi:
//   - slot mingguan : DayOfWeek (0=Minggu..6) + PeriodID  → timetable entry
//   - interval tanggal: Date ("2006-01-02") + [StartMinute, EndMinute) → exam paper
//
// Resource key bernilai uuid.Nil artinya tidak dipakai aktivitas tsb
// (mis. entry tanpa room) dan tidak pernah dianggap bentrok.
type Activity struct {
	ActivityID uuid.UUID
	Label      string // label manusiawi, mis. "Matematika — 10-A"

	DayOfWeek int
	PeriodID  uuid.UUID

	Date        string
	StartMinute int
	EndMinute   int

	TeacherID uuid.UUID
	RoomID    uuid.UUID
	ClassID   uuid.UUID
	SectionID uuid.UUID

	TeacherName string
	RoomName    string
	GroupName   string // "10-A"
}

func (a Activity) isDated() bool { return strings.TrimSpace(a.Date) != "" }

// bucketKey: pengelompokan kasar sebelum perbandingan pairwise.
// Slot mingguan dibanding exact; interval dibucket per tanggal lalu
// dicek overlap di dalam bucket.
func (a Activity) bucketKey() string {
	if a.isDated() {
		return "d:" + a.Date
	}
	return fmt.Sprintf("w:%d:%s", a.DayOfWeek, a.PeriodID)
}

// overlaps: half-open [start, end) — interval yang bersentuhan di ujung TIDAK bentrok.
func overlaps(a, b Activity) bool {
	if !a.isDated() {
		return true // satu bucket slot mingguan = waktu identik
	}
	return a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute
}

func (a Activity) timeLabel() string {
	if a.isDated() {
		return fmt.Sprintf("%s %02d:%02d-%02d:%02d",
			a.Date,
			a.StartMinute/60, a.StartMinute%60,
			a.EndMinute/60, a.EndMinute%60)
	}
	days := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	d := "?"
	if a.DayOfWeek >= 0 && a.DayOfWeek <= 6 {
		d = days[a.DayOfWeek]
	}
	return fmt.Sprintf("%s period %s", d, shortID(a.PeriodID))
}

type Conflict struct {
	Type        ClashType `json:"type"`
	ResourceID  uuid.UUID `json:"resource_id"`
	FirstID     uuid.UUID `json:"first_activity_id"`
	SecondID    uuid.UUID `json:"second_activity_id"`
	Description string    `json:"description"`
}

// Detect mengembalikan setiap pasangan aktivitas yang berbagi time key dan
// minimal satu resource key, di-tag dimensi mana yang bentrok.
// Hasil deterministik terhadap urutan input (permutation-invariant):
// bucket di-sort by ActivityID sebelum pairwise.
func Detect(activities []Activity) []Conflict {
	buckets := make(map[string][]Activity, len(activities))
	for _, a := range activities {
		k := a.bucketKey()
		buckets[k] = append(buckets[k], a)
	}

	var out []Conflict
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		bucket := buckets[k]
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].ActivityID.String() < bucket[j].ActivityID.String()
		})
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if a.ActivityID == b.ActivityID || !overlaps(a, b) {
					continue
				}
				out = append(out, comparePair(a, b)...)
			}
		}
	}
	return out
}

func comparePair(a, b Activity) []Conflict {
	var out []Conflict

	if a.TeacherID != uuid.Nil && a.TeacherID == b.TeacherID {
		name := firstNonEmpty(a.TeacherName, b.TeacherName, shortID(a.TeacherID))
		out = append(out, Conflict{
			Type:       TeacherClash,
			ResourceID: a.TeacherID,
			FirstID:    a.ActivityID,
			SecondID:   b.ActivityID,
			Description: fmt.Sprintf("Teacher %s is double-booked at %s: %s vs %s",
				name, a.timeLabel(), labelOf(a), labelOf(b)),
		})
	}

	if a.RoomID != uuid.Nil && a.RoomID == b.RoomID {
		name := firstNonEmpty(a.RoomName, b.RoomName, shortID(a.RoomID))
		out = append(out, Conflict{
			Type:       RoomClash,
			ResourceID: a.RoomID,
			FirstID:    a.ActivityID,
			SecondID:   b.ActivityID,
			Description: fmt.Sprintf("Room %s is already booked at %s: %s vs %s",
				name, a.timeLabel(), labelOf(a), labelOf(b)),
		})
	}

	// dimensi siswa: pasangan (class, section) identik.
	if a.ClassID != uuid.Nil && a.ClassID == b.ClassID && a.SectionID == b.SectionID {
		name := firstNonEmpty(a.GroupName, b.GroupName, shortID(a.ClassID))
		out = append(out, Conflict{
			Type:       StudentClash,
			ResourceID: a.ClassID,
			FirstID:    a.ActivityID,
			SecondID:   b.ActivityID,
			Description: fmt.Sprintf("Class %s has two activities at %s: %s vs %s",
				name, a.timeLabel(), labelOf(a), labelOf(b)),
		})
	}

	return out
}

func labelOf(a Activity) string {
	if strings.TrimSpace(a.Label) != "" {
		return a.Label
	}
	return shortID(a.ActivityID)
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}

func firstNonEmpty(xs ...string) string {
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			return x
		}
	}
	return ""
}

/* =======================================================
   ConflictError — dibawa sampai controller (409)
======================================================= */

// ConflictError: detector menemukan ≥1 bentrok saat publish/assign.
// Membawa daftar collision supaya caller bisa menampilkan aturan yang dilanggar.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "jadwal bentrok terdeteksi"
	}
	return e.Conflicts[0].Description
}
