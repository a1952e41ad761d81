package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/billing"
	"github.com/tkabila/chekechea/core/child"
)

// NewConfig returns a self-contained test configuration; nothing is read
// from the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:            true,
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Chekechea",
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Chekechea", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			Host:               "127.0.0.1",
			Port:               8000,
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: time.Hour,
		},
	}
}

// Logger discards rollbar reporting and writes through the test log instead.
type Logger struct {
	T *testing.T
}

var _ core.Logger = (*Logger)(nil)

func (l Logger) log(msg string, args []interface{}) {
	l.T.Helper()
	l.T.Log(append([]interface{}{msg}, args...)...)
}

func (l Logger) Debug(msg string, args ...interface{}) { l.log(msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log(msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.log(msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log(msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) {
	l.T.Helper()
	l.T.Fatal(append([]interface{}{msg}, args...)...)
}

func CreateChild(
	t *testing.T,
	repo child.Repository,
	name, parentID string,
	fee int64,
	status string,
	guardianEmail ...string,
) child.Child {
	t.Helper()

	now := time.Now().UTC()
	ch := child.Child{
		Name:           name,
		DateOfBirth:    now.AddDate(-3, 0, 0),
		Gender:         child.GenderOther,
		ParentID:       parentID,
		GuardianName:   name + "'s guardian",
		EnrollmentDate: now,
		Status:         status,
		BaseDailyFee:   fee,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if len(guardianEmail) > 0 {
		ch.GuardianEmail = guardianEmail[0]
	}
	ch, err := repo.CreateChild(context.Background(), ch)
	if err != nil {
		t.Fatalf("CreateChild() failed: %v", err)
	}
	return ch
}

// CreateAttendance inserts a checked-out record for the given day with the
// given extra charge and meals.
func CreateAttendance(
	t *testing.T,
	repo attendance.Repository,
	childID string,
	day time.Time,
	extraCharge int64,
	meals []string,
) attendance.Record {
	t.Helper()

	day = core.Day(day)
	checkIn := day.Add(8 * time.Hour)
	rec := attendance.Record{
		ChildID:            childID,
		Day:                day,
		CheckInTime:        checkIn,
		CheckOutTime:       null.TimeFrom(checkIn.Add(9 * time.Hour)),
		ExtraServiceCharge: extraCharge,
		Meals:              meals,
		CreatedAt:          checkIn.UTC(),
		UpdatedAt:          checkIn.UTC(),
	}
	rec, err := repo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return rec
}

func CreateInvoice(
	t *testing.T,
	repo billing.Repository,
	childID string,
	year, month int,
	daysPresent int,
	ratePerDay, extraCharges int64,
) billing.Invoice {
	t.Helper()

	now := time.Now().UTC()
	inv := billing.Invoice{
		ChildID:        childID,
		Year:           year,
		Month:          month,
		DaysPresent:    daysPresent,
		BaseRatePerDay: ratePerDay,
		ExtraCharges:   extraCharges,
		TotalAmount:    int64(daysPresent)*ratePerDay + extraCharges,
		Status:         billing.StatusUnpaid,
		GeneratedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inv, err := repo.UpsertInvoice(context.Background(), inv)
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}
	return inv
}
