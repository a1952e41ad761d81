package billing

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/child"
)

// Invoice statuses
const (
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

var AllStatuses = []string{StatusUnpaid, StatusPaid}

// Invoice is one child's aggregated bill for one calendar month. It is a
// materialized snapshot of the month's attendance: later attendance edits do
// not change it until generation is run again for that period.
type Invoice struct {
	ID             string         `json:"id"`
	ChildID        string         `json:"child_id"`
	Year           int            `json:"year"`
	Month          int            `json:"month"`
	DaysPresent    int            `json:"days_present"`
	BaseRatePerDay int64          `json:"base_rate_per_day"`
	ExtraCharges   int64          `json:"extra_charges"`
	TotalAmount    int64          `json:"total_amount"`
	Status         string         `json:"status"`
	GeneratedAt    time.Time      `json:"generated_at"`
	PaidAt         null.Time      `json:"paid_at"`
	CreatedAt      time.Time      `json:"created_at"` // UTC
	UpdatedAt      time.Time      `json:"updated_at"` // UTC
	Child          *child.Summary `json:"child,omitempty"`
}

func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// ChildFailure reports one child that could not be billed during a
// generation run.
type ChildFailure struct {
	ChildID   string `json:"child_id"`
	ChildName string `json:"child_name"`
	Error     string `json:"error"`
}

// GenerationRun is the outcome of one GenerateMonthlyInvoices call: the
// invoices created or updated, plus any per-child failures. A run with
// failures is partial, not aborted; the operator re-triggers it.
type GenerationRun struct {
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Invoices []Invoice      `json:"invoices"`
	Failures []ChildFailure `json:"failures,omitempty"`
}

type QueryFilter struct {
	Year   int    `query:"year"`
	Month  int    `query:"month"`
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Year == 0 && qf.Month == 0 && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
