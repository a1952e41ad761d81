package sqlrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/child"
)

type attendanceRow struct {
	ID                 string         `db:"id"`
	ChildID            string         `db:"child_id"`
	Day                time.Time      `db:"day"`
	CheckInTime        time.Time      `db:"check_in_time"`
	CheckOutTime       null.Time      `db:"check_out_time"`
	ExtraServiceCharge int64          `db:"extra_service_charge"`
	Meals              pq.StringArray `db:"meals"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`

	// resolved child display fields
	ChildName         null.String `db:"child_name"`
	ChildGuardianName null.String `db:"child_guardian_name"`
	ChildStatus       null.String `db:"child_status"`
}

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo attendanceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo attendanceRepository) row(rec attendance.Record) attendanceRow {
	return attendanceRow{
		ID:                 rec.ID,
		ChildID:            rec.ChildID,
		Day:                rec.Day,
		CheckInTime:        rec.CheckInTime.UTC(),
		CheckOutTime:       rec.CheckOutTime,
		ExtraServiceCharge: rec.ExtraServiceCharge,
		Meals:              textArray(rec.Meals),
		CreatedAt:          rec.CreatedAt.UTC(),
		UpdatedAt:          rec.UpdatedAt.UTC(),
	}
}

func (repo attendanceRepository) unrow(row attendanceRow) attendance.Record {
	rec := attendance.Record{
		ID:                 row.ID,
		ChildID:            row.ChildID,
		Day:                localDay(row.Day),
		CheckInTime:        row.CheckInTime,
		CheckOutTime:       row.CheckOutTime,
		ExtraServiceCharge: row.ExtraServiceCharge,
		Meals:              row.Meals,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.ChildName.Valid {
		rec.Child = &child.Summary{
			ID:           row.ChildID,
			Name:         row.ChildName.String,
			GuardianName: row.ChildGuardianName.String,
			Status:       row.ChildStatus.String,
		}
	}
	return rec
}

// trapNoRowsErr maps psql "no rows" err to attendance.ErrNotFound
func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const attendanceColumns = `a.id, a.child_id, a.day, a.check_in_time, a.check_out_time,
a.extra_service_charge, a.meals, a.created_at, a.updated_at,
c.name AS child_name, c.guardian_name AS child_guardian_name, c.status AS child_status`

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	row := repo.row(rec)
	query := `INSERT INTO attendance (id, child_id, day, check_in_time, check_out_time,
extra_service_charge, meals, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		row.ID, row.ChildID, row.Day.Format(dayFormat), row.CheckInTime, row.CheckOutTime,
		row.ExtraServiceCharge, row.Meals, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23505" {
			return attendance.Record{}, attendance.ErrDuplicateCheckIn
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return repo.unrow(row), nil
}

func (repo attendanceRepository) GetRecordForDay(ctx context.Context, childID string, day time.Time, exec ...core.DBExecutor) (attendance.Record, error) {
	if _, err := uuid.Parse(childID); err != nil {
		return attendance.Record{}, attendance.ErrNotFound
	}
	var row attendanceRow
	query := fmt.Sprintf(`SELECT %s FROM attendance a JOIN child c ON c.id = a.child_id
WHERE a.child_id = $1 AND a.day = $2`, attendanceColumns)
	if err := repo.getExec(exec).GetContext(ctx, &row, query, childID, day.Format(dayFormat)); err != nil {
		return attendance.Record{}, repo.trapNoRowsErr(err, "finding attendance record")
	}
	return repo.unrow(row), nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	row := repo.row(rec)
	query := `UPDATE attendance SET check_out_time = $2, extra_service_charge = $3, meals = $4,
updated_at = $5 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, query,
		row.ID, row.CheckOutTime, row.ExtraServiceCharge, row.Meals, row.UpdatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.ChildID != "" {
			args = append(args, filter.ChildID)
			conds = append(conds, fmt.Sprintf("a.child_id = $%d", len(args)))
		}
		if !filter.From.IsZero() {
			args = append(args, filter.From.Format(dayFormat))
			conds = append(conds, fmt.Sprintf("a.day >= $%d", len(args)))
		}
		if !filter.To.IsZero() {
			args = append(args, filter.To.Format(dayFormat))
			conds = append(conds, fmt.Sprintf("a.day < $%d", len(args)))
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM attendance a JOIN child c ON c.id = a.child_id`, attendanceColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(prefixOrdering("a.", ordering), "a.day DESC, a.check_in_time DESC")

	var rows []attendanceRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.unrow(row))
	}
	return records, nil
}
