package sqlrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/billing"
	"github.com/tkabila/chekechea/core/child"
)

type invoiceRow struct {
	ID             string    `db:"id"`
	ChildID        string    `db:"child_id"`
	Year           int       `db:"year"`
	Month          int       `db:"month"`
	DaysPresent    int       `db:"days_present"`
	BaseRatePerDay int64     `db:"base_rate_per_day"`
	ExtraCharges   int64     `db:"extra_charges"`
	TotalAmount    int64     `db:"total_amount"`
	Status         string    `db:"status"`
	GeneratedAt    time.Time `db:"generated_at"`
	PaidAt         null.Time `db:"paid_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// resolved child display fields
	ChildName         null.String `db:"child_name"`
	ChildGuardianName null.String `db:"child_guardian_name"`
	ChildStatus       null.String `db:"child_status"`
}

type invoiceRepository struct {
	exec core.DBExecutor
}

var _ billing.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(exec core.DBExecutor) *invoiceRepository {
	return &invoiceRepository{exec: exec}
}

func (repo invoiceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo invoiceRepository) unrow(row invoiceRow) billing.Invoice {
	inv := billing.Invoice{
		ID:             row.ID,
		ChildID:        row.ChildID,
		Year:           row.Year,
		Month:          row.Month,
		DaysPresent:    row.DaysPresent,
		BaseRatePerDay: row.BaseRatePerDay,
		ExtraCharges:   row.ExtraCharges,
		TotalAmount:    row.TotalAmount,
		Status:         row.Status,
		GeneratedAt:    row.GeneratedAt,
		PaidAt:         row.PaidAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.ChildName.Valid {
		inv.Child = &child.Summary{
			ID:           row.ChildID,
			Name:         row.ChildName.String,
			GuardianName: row.ChildGuardianName.String,
			Status:       row.ChildStatus.String,
		}
	}
	return inv
}

// trapNoRowsErr maps psql "no rows" err to billing.ErrNotFound
func (repo invoiceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return billing.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const invoiceColumns = `i.id, i.child_id, i.year, i.month, i.days_present, i.base_rate_per_day,
i.extra_charges, i.total_amount, i.status, i.generated_at, i.paid_at, i.created_at, i.updated_at`

const invoiceChildColumns = invoiceColumns + `,
c.name AS child_name, c.guardian_name AS child_guardian_name, c.status AS child_status`

// UpsertInvoice inserts the invoice or, when one already exists for the
// (child, year, month) period, overwrites only the computed figures. Status
// and paid_at are never touched on the update path so regeneration cannot
// flip a settled invoice back to unpaid.
func (repo invoiceRepository) UpsertInvoice(ctx context.Context, inv billing.Invoice, exec ...core.DBExecutor) (billing.Invoice, error) {
	query := fmt.Sprintf(`INSERT INTO invoice AS i (id, child_id, year, month, days_present,
base_rate_per_day, extra_charges, total_amount, status, generated_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (child_id, year, month) DO UPDATE SET
	days_present = EXCLUDED.days_present,
	base_rate_per_day = EXCLUDED.base_rate_per_day,
	extra_charges = EXCLUDED.extra_charges,
	total_amount = EXCLUDED.total_amount,
	generated_at = EXCLUDED.generated_at,
	updated_at = EXCLUDED.updated_at
RETURNING %s`, invoiceColumns)

	var row invoiceRow
	err := repo.getExec(exec).GetContext(ctx, &row, query,
		uuid.New().String(), inv.ChildID, inv.Year, inv.Month, inv.DaysPresent,
		inv.BaseRatePerDay, inv.ExtraCharges, inv.TotalAmount, inv.Status,
		inv.GeneratedAt.UTC(), inv.CreatedAt.UTC(), inv.UpdatedAt.UTC())
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "upserting invoice")
	}
	return repo.unrow(row), nil
}

func (repo invoiceRepository) GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (billing.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return billing.Invoice{}, billing.ErrNotFound
	}
	var row invoiceRow
	query := fmt.Sprintf(`SELECT %s FROM invoice i JOIN child c ON c.id = i.child_id
WHERE i.id = $1`, invoiceChildColumns)
	if err := repo.getExec(exec).GetContext(ctx, &row, query, id); err != nil {
		return billing.Invoice{}, repo.trapNoRowsErr(err, "finding invoice by ID")
	}
	return repo.unrow(row), nil
}

func (repo invoiceRepository) QueryInvoices(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]billing.Invoice, error) {
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.Year != 0 {
			args = append(args, filter.Year)
			conds = append(conds, fmt.Sprintf("i.year = $%d", len(args)))
		}
		if filter.Month != 0 {
			args = append(args, filter.Month)
			conds = append(conds, fmt.Sprintf("i.month = $%d", len(args)))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			conds = append(conds, fmt.Sprintf("i.status = $%d", len(args)))
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM invoice i JOIN child c ON c.id = i.child_id`, invoiceChildColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(prefixOrdering("i.", ordering), "i.created_at DESC")

	var rows []invoiceRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, repo.unrow(row))
	}
	return invoices, nil
}

func (repo invoiceRepository) MarkInvoicePaid(ctx context.Context, id string, paidAt time.Time, exec ...core.DBExecutor) (billing.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return billing.Invoice{}, billing.ErrNotFound
	}
	query := fmt.Sprintf(`UPDATE invoice AS i SET status = $2, paid_at = $3, updated_at = $4
WHERE i.id = $1 RETURNING %s`, invoiceColumns)

	var row invoiceRow
	err := repo.getExec(exec).GetContext(ctx, &row, query,
		id, billing.StatusPaid, paidAt.UTC(), paidAt.UTC())
	if err != nil {
		return billing.Invoice{}, repo.trapNoRowsErr(err, "marking invoice paid")
	}
	return repo.unrow(row), nil
}
