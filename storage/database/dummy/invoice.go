package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/billing"
)

type invoiceRepository struct {
	db *DB
}

func NewInvoiceRepository(db *DB) billing.Repository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) resolve(inv billing.Invoice) billing.Invoice {
	r.db.child.mutex.RLock()
	inv.Child = r.db.childSummary(inv.ChildID)
	r.db.child.mutex.RUnlock()
	return inv
}

func (r *invoiceRepository) UpsertInvoice(ctx context.Context, inv billing.Invoice, exec ...core.DBExecutor) (billing.Invoice, error) {
	r.db.invoice.mutex.Lock()
	defer r.db.invoice.mutex.Unlock()

	for _, existing := range r.db.invoice.t {
		if existing.ChildID == inv.ChildID && existing.Year == inv.Year && existing.Month == inv.Month {
			// refresh the computed figures; status and paid_at survive
			existing.DaysPresent = inv.DaysPresent
			existing.BaseRatePerDay = inv.BaseRatePerDay
			existing.ExtraCharges = inv.ExtraCharges
			existing.TotalAmount = inv.TotalAmount
			existing.GeneratedAt = inv.GeneratedAt
			existing.UpdatedAt = inv.UpdatedAt
			return r.resolve(*existing), nil
		}
	}

	inv.ID = uuid.New().String()
	r.db.invoice.t[inv.ID] = &inv
	return r.resolve(inv), nil
}

func (r *invoiceRepository) GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (billing.Invoice, error) {
	r.db.invoice.mutex.RLock()
	defer r.db.invoice.mutex.RUnlock()

	if inv, ok := r.db.invoice.t[id]; ok {
		return r.resolve(*inv), nil
	}
	return billing.Invoice{}, billing.ErrNotFound
}

func (r *invoiceRepository) QueryInvoices(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]billing.Invoice, error) {
	r.db.invoice.mutex.RLock()
	defer r.db.invoice.mutex.RUnlock()

	res := make([]billing.Invoice, 0)
	for _, inv := range r.db.invoice.t {
		if filter != nil {
			if filter.Year != 0 && inv.Year != filter.Year {
				continue
			}
			if filter.Month != 0 && inv.Month != filter.Month {
				continue
			}
			if filter.Status != "" && inv.Status != filter.Status {
				continue
			}
		}
		res = append(res, r.resolve(*inv))
	}

	// newest first, matching the SQL store's default
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (r *invoiceRepository) MarkInvoicePaid(ctx context.Context, id string, paidAt time.Time, exec ...core.DBExecutor) (billing.Invoice, error) {
	r.db.invoice.mutex.Lock()
	defer r.db.invoice.mutex.Unlock()

	inv, ok := r.db.invoice.t[id]
	if !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	inv.Status = billing.StatusPaid
	inv.PaidAt = null.TimeFrom(paidAt.UTC())
	inv.UpdatedAt = paidAt.UTC()
	return r.resolve(*inv), nil
}
