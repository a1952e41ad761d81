package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) resolve(rec attendance.Record) attendance.Record {
	r.db.child.mutex.RLock()
	rec.Child = r.db.childSummary(rec.ChildID)
	r.db.child.mutex.RUnlock()
	return rec
}

func (r *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	r.db.attendance.mutex.Lock()
	defer r.db.attendance.mutex.Unlock()

	for _, existing := range r.db.attendance.t {
		if existing.ChildID == rec.ChildID && core.SameDay(existing.Day, rec.Day) {
			return attendance.Record{}, attendance.ErrDuplicateCheckIn
		}
	}

	rec.ID = uuid.New().String()
	r.db.attendance.t[rec.ID] = &rec
	return r.resolve(rec), nil
}

func (r *attendanceRepository) GetRecordForDay(ctx context.Context, childID string, day time.Time, exec ...core.DBExecutor) (attendance.Record, error) {
	r.db.attendance.mutex.RLock()
	defer r.db.attendance.mutex.RUnlock()

	for _, rec := range r.db.attendance.t {
		if rec.ChildID == childID && core.SameDay(rec.Day, day) {
			return r.resolve(*rec), nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (r *attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	r.db.attendance.mutex.Lock()
	defer r.db.attendance.mutex.Unlock()

	if _, ok := r.db.attendance.t[rec.ID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	r.db.attendance.t[rec.ID] = &rec
	return r.resolve(rec), nil
}

func (r *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]attendance.Record, error) {
	r.db.attendance.mutex.RLock()
	defer r.db.attendance.mutex.RUnlock()

	res := make([]attendance.Record, 0)
	for _, rec := range r.db.attendance.t {
		if filter != nil {
			if filter.ChildID != "" && rec.ChildID != filter.ChildID {
				continue
			}
			if !filter.From.IsZero() && rec.Day.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && !rec.Day.Before(filter.To) {
				continue
			}
		}
		res = append(res, r.resolve(*rec))
	}

	// newest day first, then latest check-in; custom ordering is not supported
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Day.Equal(res[j].Day) {
			return res[i].Day.After(res[j].Day)
		}
		return res[i].CheckInTime.After(res[j].CheckInTime)
	})
	return res, nil
}
