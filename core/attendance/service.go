package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/child"
)

var (
	// errors
	ErrNotFound         = errors.New("attendance record not found")
	ErrDuplicateCheckIn = errors.New("child already checked in today")
	ErrNoOpenCheckIn    = errors.New("no check-in record found for today")
)

type (
	Repository interface {
		// CreateRecord inserts a record; the storage layer enforces the
		// one-record-per-(child, day) invariant and returns
		// ErrDuplicateCheckIn when it is violated.
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		GetRecordForDay(ctx context.Context, childID string, day time.Time, exec ...core.DBExecutor) (Record, error)
		UpdateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		// QueryRecords applies AND operation on available QueryFilter fields;
		// the window is half-open: From inclusive, To exclusive.
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Record, error)
	}

	ServiceInterface interface {
		CheckIn(ctx context.Context, childID string) (Record, error)
		CheckOut(ctx context.Context, co CheckOut) (Record, error)
		Status(ctx context.Context, childID string) (DayStatus, error)
		ListForChild(ctx context.Context, childID string, start, end time.Time) ([]Record, error)
		ListForDay(ctx context.Context, day time.Time) ([]Record, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		children child.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, children child.Repository) *Service {
	return &Service{db: db, repo: repo, children: children}
}

// CheckIn records a child's arrival for today. The duplicate check is not a
// read-then-write: the repository's uniqueness guarantee on (child, day)
// closes the race between two concurrent check-ins.
func (svc *Service) CheckIn(ctx context.Context, childID string) (Record, error) {
	if _, err := svc.children.GetChildByID(ctx, childID); err != nil {
		return Record{}, err
	}

	now := core.NowFunc()
	rec := Record{
		ChildID:     childID,
		Day:         core.Day(now),
		CheckInTime: now,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	return svc.repo.CreateRecord(ctx, rec)
}

// CheckOut closes today's open record for the child. ExtraServiceCharge is
// retained at 0 unless provided; Meals replaces the stored set wholesale.
func (svc *Service) CheckOut(ctx context.Context, co CheckOut) (Record, error) {
	now := core.NowFunc()
	rec, err := svc.repo.GetRecordForDay(ctx, co.ChildID, core.Day(now))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Record{}, ErrNoOpenCheckIn
		}
		return Record{}, err
	}
	if rec.IsCheckedOut() {
		return Record{}, ErrNoOpenCheckIn
	}

	rec.CheckOutTime = null.TimeFrom(now)
	if co.ExtraServiceCharge != nil {
		rec.ExtraServiceCharge = *co.ExtraServiceCharge
	}
	if co.Meals != nil {
		rec.Meals = co.Meals
	}
	rec.UpdatedAt = now.UTC()
	return svc.repo.UpdateRecord(ctx, rec)
}

// Status reports whether the child has a record for today and whether it has
// been checked out.
func (svc *Service) Status(ctx context.Context, childID string) (DayStatus, error) {
	rec, err := svc.repo.GetRecordForDay(ctx, childID, core.Day(core.NowFunc()))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return DayStatus{}, nil
		}
		return DayStatus{}, err
	}
	return DayStatus{
		IsCheckedIn:  true,
		IsCheckedOut: rec.IsCheckedOut(),
		Record:       &rec,
	}, nil
}

// ListForChild returns a child's records, newest day first, optionally
// bounded by an inclusive [start, end] date range.
func (svc *Service) ListForChild(ctx context.Context, childID string, start, end time.Time) ([]Record, error) {
	filter := &QueryFilter{ChildID: childID}
	if !start.IsZero() {
		filter.From = core.Day(start)
	}
	if !end.IsZero() {
		_, filter.To = core.DayWindow(end) // inclusive end date -> exclusive bound
	}
	ordering := []core.DBOrdering{{Field: "day"}, {Field: "check_in_time"}}
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

// ListForDay returns all records for the given calendar day, most recent
// check-in first.
func (svc *Service) ListForDay(ctx context.Context, day time.Time) ([]Record, error) {
	start, end := core.DayWindow(day)
	filter := &QueryFilter{From: start, To: end}
	ordering := []core.DBOrdering{{Field: "check_in_time"}}
	return svc.repo.QueryRecords(ctx, filter, ordering)
}
