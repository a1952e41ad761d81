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
	"github.com/tkabila/chekechea/core/child"
)

type childRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	DateOfBirth    time.Time      `db:"date_of_birth"`
	Gender         string         `db:"gender"`
	Allergies      pq.StringArray `db:"allergies"`
	MedicalNotes   string         `db:"medical_notes"`
	GuardianName   string         `db:"guardian_name"`
	GuardianPhone  string         `db:"guardian_phone"`
	GuardianEmail  string         `db:"guardian_email"`
	ParentID       string         `db:"parent_id"`
	CaregiverID    null.String    `db:"caregiver_id"`
	EnrollmentDate time.Time      `db:"enrollment_date"`
	Status         string         `db:"status"`
	BaseDailyFee   int64          `db:"base_daily_fee"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type childRepository struct {
	exec core.DBExecutor
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(exec core.DBExecutor) *childRepository {
	return &childRepository{exec: exec}
}

func (repo childRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo childRepository) row(ch child.Child) childRow {
	return childRow{
		ID:             ch.ID,
		Name:           ch.Name,
		DateOfBirth:    ch.DateOfBirth,
		Gender:         ch.Gender,
		Allergies:      textArray(ch.Allergies),
		MedicalNotes:   ch.MedicalNotes,
		GuardianName:   ch.GuardianName,
		GuardianPhone:  ch.GuardianPhone,
		GuardianEmail:  ch.GuardianEmail,
		ParentID:       ch.ParentID,
		CaregiverID:    ch.CaregiverID,
		EnrollmentDate: ch.EnrollmentDate.UTC(),
		Status:         ch.Status,
		BaseDailyFee:   ch.BaseDailyFee,
		CreatedAt:      ch.CreatedAt.UTC(),
		UpdatedAt:      ch.UpdatedAt.UTC(),
	}
}

func (repo childRepository) unrow(row childRow) child.Child {
	return child.Child{
		ID:             row.ID,
		Name:           row.Name,
		DateOfBirth:    row.DateOfBirth,
		Gender:         row.Gender,
		Allergies:      row.Allergies,
		MedicalNotes:   row.MedicalNotes,
		GuardianName:   row.GuardianName,
		GuardianPhone:  row.GuardianPhone,
		GuardianEmail:  row.GuardianEmail,
		ParentID:       row.ParentID,
		CaregiverID:    row.CaregiverID,
		EnrollmentDate: row.EnrollmentDate,
		Status:         row.Status,
		BaseDailyFee:   row.BaseDailyFee,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to child.ErrNotFound
func (repo childRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return child.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const childColumns = `id, name, date_of_birth, gender, allergies, medical_notes, guardian_name,
guardian_phone, guardian_email, parent_id, caregiver_id, enrollment_date, status,
base_daily_fee, created_at, updated_at`

func (repo childRepository) CreateChild(ctx context.Context, ch child.Child, exec ...core.DBExecutor) (child.Child, error) {
	ch.ID = uuid.New().String()
	row := repo.row(ch)
	query := fmt.Sprintf(`INSERT INTO child (%s) VALUES (:id, :name, :date_of_birth, :gender, :allergies,
:medical_notes, :guardian_name, :guardian_phone, :guardian_email, :parent_id, :caregiver_id,
:enrollment_date, :status, :base_daily_fee, :created_at, :updated_at)`, childColumns)
	if _, err := sqlxNamedExec(ctx, repo.getExec(exec), query, row); err != nil {
		return child.Child{}, errors.Wrap(err, "inserting child")
	}
	return repo.unrow(row), nil
}

func (repo childRepository) GetChildByID(ctx context.Context, id string, exec ...core.DBExecutor) (child.Child, error) {
	if _, err := uuid.Parse(id); err != nil {
		return child.Child{}, child.ErrNotFound
	}
	var row childRow
	query := fmt.Sprintf(`SELECT %s FROM child WHERE id = $1`, childColumns)
	if err := repo.getExec(exec).GetContext(ctx, &row, query, id); err != nil {
		return child.Child{}, repo.trapNoRowsErr(err, "finding child by ID")
	}
	return repo.unrow(row), nil
}

func (repo childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]child.Child, error) {
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR guardian_name ILIKE $%d)", n, n))
		}
		if filter.ParentID != "" {
			args = append(args, filter.ParentID)
			conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM child`, childColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []childRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying children")
	}

	children := make([]child.Child, 0, len(rows))
	for _, row := range rows {
		children = append(children, repo.unrow(row))
	}
	return children, nil
}

func (repo childRepository) UpdateChild(ctx context.Context, ch child.Child, exec ...core.DBExecutor) (child.Child, error) {
	row := repo.row(ch)
	query := `UPDATE child SET name = :name, date_of_birth = :date_of_birth, gender = :gender,
allergies = :allergies, medical_notes = :medical_notes, guardian_name = :guardian_name,
guardian_phone = :guardian_phone, guardian_email = :guardian_email, caregiver_id = :caregiver_id,
status = :status, base_daily_fee = :base_daily_fee, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlxNamedExec(ctx, repo.getExec(exec), query, row)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo childRepository) DeleteChildrenByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM child WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting children")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting children")
	}
	return int(cnt), nil
}
