package child_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/billing"
	"github.com/tkabila/chekechea/core/child"
	dummydb "github.com/tkabila/chekechea/storage/database/dummy"
	testutil "github.com/tkabila/chekechea/tests"
)

const parentID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func setup(t *testing.T) (*child.Service, *dummydb.DB) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return child.NewService(nil, dummydb.NewChildRepository(db)), db
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	dob := time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		ch, err := svc.Create(ctx, child.NewChild{Name: "Amani", DateOfBirth: dob, Gender: child.GenderFemale}, parentID)
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if ch.ID == "" {
			t.Error("Create() did not assign an ID")
		}
		if ch.ParentID != parentID {
			t.Errorf("ParentID = %s, want %s", ch.ParentID, parentID)
		}
		if ch.Status != child.StatusActive {
			t.Errorf("Status = %s, want %s", ch.Status, child.StatusActive)
		}
		if ch.BaseDailyFee != child.DefaultDailyFee {
			t.Errorf("BaseDailyFee = %d, want default %d", ch.BaseDailyFee, child.DefaultDailyFee)
		}
	})

	t.Run("explicit fee", func(t *testing.T) {
		fee := int64(650)
		ch, err := svc.Create(ctx, child.NewChild{Name: "Zuri", DateOfBirth: dob, Gender: child.GenderMale, BaseDailyFee: &fee}, parentID)
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if ch.BaseDailyFee != fee {
			t.Errorf("BaseDailyFee = %d, want %d", ch.BaseDailyFee, fee)
		}
	})
}

func TestService_Update(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	repo := dummydb.NewChildRepository(db)
	orig := testutil.CreateChild(t, repo, "Amani", parentID, 500, child.StatusActive)

	notes := "peanut allergy, carries epipen"
	uc := child.UpdateChild{
		Name:         "Amani B.",
		DateOfBirth:  orig.DateOfBirth,
		Gender:       orig.Gender,
		Status:       orig.Status,
		MedicalNotes: &notes,
	}
	ch, err := svc.Update(ctx, orig, uc)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if ch.Name != "Amani B." {
		t.Errorf("Name = %s, want Amani B.", ch.Name)
	}
	if ch.MedicalNotes != notes {
		t.Errorf("MedicalNotes = %s, want %s", ch.MedicalNotes, notes)
	}
	if ch.GuardianName != orig.GuardianName { // untouched pointers stay as-is
		t.Errorf("GuardianName = %s, want %s", ch.GuardianName, orig.GuardianName)
	}
	if ch.BaseDailyFee != orig.BaseDailyFee {
		t.Errorf("BaseDailyFee = %d, want %d", ch.BaseDailyFee, orig.BaseDailyFee)
	}
}

func TestService_AssignCaregiver(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	repo := dummydb.NewChildRepository(db)
	orig := testutil.CreateChild(t, repo, "Amani", parentID, 500, child.StatusActive)
	caregiverID := "3b8de351-c1a9-4e21-8410-6e2a4bcdbf96"

	ch, err := svc.AssignCaregiver(ctx, orig, caregiverID)
	if err != nil {
		t.Fatalf("AssignCaregiver() failed: %v", err)
	}
	if !ch.CaregiverID.Valid || ch.CaregiverID.String != caregiverID {
		t.Errorf("CaregiverID = %v, want %s", ch.CaregiverID, caregiverID)
	}

	// empty ID unassigns
	ch, err = svc.AssignCaregiver(ctx, ch, "")
	if err != nil {
		t.Fatalf("AssignCaregiver() failed: %v", err)
	}
	if ch.CaregiverID.Valid {
		t.Errorf("CaregiverID = %v, want unset", ch.CaregiverID)
	}
}

func TestService_Delete(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	childRepo := dummydb.NewChildRepository(db)
	attendanceRepo := dummydb.NewAttendanceRepository(db)
	invoiceRepo := dummydb.NewInvoiceRepository(db)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local)
	testutil.CreateAttendance(t, attendanceRepo, ch.ID, day, 0, nil)
	testutil.CreateInvoice(t, invoiceRepo, ch.ID, 2026, 3, 1, 500, 0)

	if err := svc.Delete(ctx, ch.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := svc.GetByID(ctx, ch.ID); errors.Cause(err) != child.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, child.ErrNotFound)
	}

	// dependent rows are cascaded
	records, err := attendanceRepo.QueryRecords(ctx, &attendance.QueryFilter{ChildID: ch.ID}, nil)
	if err != nil {
		t.Fatalf("QueryRecords() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d attendance records, want 0", len(records))
	}
	invoices, err := invoiceRepo.QueryInvoices(ctx, &billing.QueryFilter{Year: 2026}, nil)
	if err != nil {
		t.Fatalf("QueryInvoices() failed: %v", err)
	}
	if len(invoices) != 0 {
		t.Errorf("got %d invoices, want 0", len(invoices))
	}
}
