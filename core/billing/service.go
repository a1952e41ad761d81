package billing

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/child"
)

var (
	// errors
	ErrNotFound      = errors.New("invoice not found")
	errInvalidMonth  = errors.New("month must be between 1 and 12")
	errInvalidYear   = errors.New("year is out of range")
	errInvalidStatus = errors.New("status must be one of: unpaid, paid")
)

type (
	Repository interface {
		// UpsertInvoice creates or updates the invoice keyed on
		// (child, year, month). On update only the computed fields
		// (days_present, base_rate_per_day, extra_charges, total_amount,
		// generated_at) are overwritten; status and paid_at survive.
		UpsertInvoice(ctx context.Context, inv Invoice, exec ...core.DBExecutor) (Invoice, error)
		GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Invoice, error)
		// QueryInvoices applies AND operation on available QueryFilter fields.
		QueryInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Invoice, error)
		MarkInvoicePaid(ctx context.Context, id string, paidAt time.Time, exec ...core.DBExecutor) (Invoice, error)
	}

	ServiceInterface interface {
		GenerateMonthlyInvoices(ctx context.Context, year, month int) (GenerationRun, error)
		GetByID(ctx context.Context, id string) (Invoice, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		MarkPaid(ctx context.Context, id string) (Invoice, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		records  attendance.Repository
		children child.Repository
		mailSvc  core.EmailService
		conf     *core.Config
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	records attendance.Repository,
	children child.Repository,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		records:  records,
		children: children,
		mailSvc:  mailSvc,
		conf:     conf,
		logger:   logger,
	}
}

// GenerateMonthlyInvoices produces one invoice per child for the given
// period. Children with no attendance and no extra charges in the month are
// skipped. Rerunning with unchanged attendance yields identical figures and
// never flips a paid invoice back to unpaid. A failure on one child does not
// abort the run; it is logged and reported in the result.
func (svc *Service) GenerateMonthlyInvoices(ctx context.Context, year, month int) (GenerationRun, error) {
	if month < 1 || month > 12 {
		return GenerationRun{}, core.NewValidationError(errInvalidMonth, core.FieldError{Field: "month", Error: errInvalidMonth.Error()})
	}
	if year < 2000 || year > 2100 {
		return GenerationRun{}, core.NewValidationError(errInvalidYear, core.FieldError{Field: "year", Error: errInvalidYear.Error()})
	}

	start, end := core.MonthWindow(year, time.Month(month))

	// all children; inactive/graduated ones are still billed when they have
	// attendance in the window
	children, err := svc.children.QueryChildren(ctx, nil, nil)
	if err != nil {
		return GenerationRun{}, errors.Wrap(err, "querying children")
	}

	run := GenerationRun{Year: year, Month: month, Invoices: make([]Invoice, 0, len(children))}
	notices := make([]*core.EmailMessage, 0, len(children))

	for _, ch := range children {
		inv, err := svc.generateForChild(ctx, ch, year, month, start, end)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("billing %s for %d-%02d: %v", ch.ID, year, month, err), err)
			run.Failures = append(run.Failures, ChildFailure{ChildID: ch.ID, ChildName: ch.Name, Error: err.Error()})
			continue
		}
		if inv == nil { // no activity in the window
			continue
		}
		run.Invoices = append(run.Invoices, *inv)
		if msg := svc.invoiceNotice(ch, *inv); msg != nil {
			notices = append(notices, msg)
		}
	}

	svc.mailSvc.SendMessages(notices...)
	return run, nil
}

// generateForChild aggregates one child's attendance over the half-open
// month window and upserts the invoice. It returns (nil, nil) when the
// child has no activity in the window.
func (svc *Service) generateForChild(ctx context.Context, ch child.Child, year, month int, start, end time.Time) (*Invoice, error) {
	records, err := svc.records.QueryRecords(ctx, &attendance.QueryFilter{ChildID: ch.ID, From: start, To: end}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}

	daysPresent := len(records) // an open record still counts as present
	var extraCharges int64
	for _, rec := range records {
		extraCharges += rec.ExtraServiceCharge
	}
	if daysPresent == 0 && extraCharges == 0 {
		return nil, nil
	}

	now := core.NowFunc()
	inv := Invoice{
		ChildID:        ch.ID,
		Year:           year,
		Month:          month,
		DaysPresent:    daysPresent,
		BaseRatePerDay: ch.BaseDailyFee, // snapshot of the current fee
		ExtraCharges:   extraCharges,
		TotalAmount:    int64(daysPresent)*ch.BaseDailyFee + extraCharges,
		Status:         StatusUnpaid,
		GeneratedAt:    now,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	upserted, err := svc.repo.UpsertInvoice(ctx, inv)
	if err != nil {
		return nil, errors.Wrap(err, "upserting invoice")
	}
	summary := ch.Summary()
	upserted.Child = &summary
	return &upserted, nil
}

// invoiceNotice builds the guardian's invoice email; nil when the child has
// no guardian email on file.
func (svc *Service) invoiceNotice(ch child.Child, inv Invoice) *core.EmailMessage {
	if ch.GuardianEmail == "" {
		return nil
	}
	period := time.Month(inv.Month).String()
	return &core.EmailMessage{
		To:      []mail.Address{{Name: ch.GuardianName, Address: ch.GuardianEmail}},
		Subject: fmt.Sprintf("Invoice for %s, %s %d", ch.Name, period, inv.Year),
		BodyStr: fmt.Sprintf(
			"Hello %s,\r\n\r\n"+
				"The invoice for %s covering %s %d is ready.\r\n\r\n"+
				"Days present: %d\r\n"+
				"Daily rate: %d\r\n"+
				"Extra charges: %d\r\n"+
				"Total due: %d\r\n\r\n"+
				"You can view and settle it at %s.\r\n",
			ch.GuardianName, ch.Name, period, inv.Year,
			inv.DaysPresent, inv.BaseRatePerDay, inv.ExtraCharges, inv.TotalAmount,
			svc.conf.FrontendBaseURL,
		),
	}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.GetInvoiceByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error) {
	if filter != nil {
		if filter.Month < 0 || filter.Month > 12 {
			return nil, core.NewValidationError(errInvalidMonth, core.FieldError{Field: "month", Error: errInvalidMonth.Error()})
		}
		if filter.Status != "" && filter.Status != StatusUnpaid && filter.Status != StatusPaid {
			return nil, core.NewValidationError(errInvalidStatus, core.FieldError{Field: "status", Error: errInvalidStatus.Error()})
		}
	}
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "created_at"}} // newest first
	}
	return svc.repo.QueryInvoices(ctx, filter, ordering)
}

// MarkPaid transitions an invoice to paid. The transition is one-way;
// re-marking an already-paid invoice is allowed and refreshes paid_at.
func (svc *Service) MarkPaid(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.MarkInvoicePaid(ctx, id, core.NowFunc())
}
