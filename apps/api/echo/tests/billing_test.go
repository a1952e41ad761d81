package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/tkabila/chekechea/apps/api/echo"
	"github.com/tkabila/chekechea/core/billing"
	"github.com/tkabila/chekechea/core/child"
	testutil "github.com/tkabila/chekechea/tests"
)

type invoiceResponse struct {
	Success bool            `json:"success"`
	Data    billing.Invoice `json:"data"`
	Message string          `json:"message"`
}

func Test_billingApi_generate(t *testing.T) {
	app := setup(t)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	for d := 2; d <= 6; d++ { // 5 days, one with an extra charge
		extra := int64(0)
		if d == 4 {
			extra = 150
		}
		testutil.CreateAttendance(t, attendanceRepo, ch.ID, time.Date(2026, time.March, d, 0, 0, 0, 0, time.Local), extra, nil)
	}

	adminToken := getToken(t, adminID, "Admin", RoleAdmin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/billing/generate/2026/3", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/billing/generate/2026/3", token: getToken(t, staffID, "Staff", RoleStaff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Bad year", path: "/v1/billing/generate/lol/3", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"year": "must be a number"}}),
		},
		{
			name: "Bad month", path: "/v1/billing/generate/2026/lol", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"month": "must be a number"}}),
		},
		{
			name: "Month out of range", path: "/v1/billing/generate/2026/13", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"month": "month must be between 1 and 12"}}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Generated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/billing/generate/2026/3", adminToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Data    billing.GenerationRun `json:"data"`
			Message string                `json:"message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if resp.Message != "invoices generated" {
			t.Errorf("Message = %s, want invoices generated", resp.Message)
		}
		if len(resp.Data.Invoices) != 1 || len(resp.Data.Failures) != 0 {
			t.Fatalf("run = %d invoices / %d failures, want 1 / 0", len(resp.Data.Invoices), len(resp.Data.Failures))
		}

		inv := resp.Data.Invoices[0]
		if inv.DaysPresent != 5 {
			t.Errorf("DaysPresent = %d, want 5", inv.DaysPresent)
		}
		if inv.TotalAmount != 2650 { // 500*5 + 150
			t.Errorf("TotalAmount = %d, want 2650", inv.TotalAmount)
		}
		if inv.Status != billing.StatusUnpaid {
			t.Errorf("Status = %s, want %s", inv.Status, billing.StatusUnpaid)
		}
	})
}

func Test_billingApi_query(t *testing.T) {
	app := setup(t)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	inv1 := testutil.CreateInvoice(t, invoiceRepo, ch.ID, 2026, 2, 4, 500, 0)
	inv2 := testutil.CreateInvoice(t, invoiceRepo, ch.ID, 2026, 3, 5, 500, 150)

	adminToken := getToken(t, adminID, "Admin", RoleAdmin)
	empty := dataBody(t, []billing.Invoice{})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/billing/invoices", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/billing/invoices", token: getToken(t, parentID, "Mama Amani", RoleParent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unknown status", path: "/v1/billing/invoices?status=overdue", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"status": "must be one of: unpaid, paid"}}),
		},
		{name: "Get all", path: "/v1/billing/invoices", token: adminToken, wantData: dataBody(t, []billing.Invoice{inv2, inv1})},
		{name: "month=3", path: "/v1/billing/invoices?year=2026&month=3", token: adminToken, wantData: dataBody(t, []billing.Invoice{inv2})},
		{name: "month=4 (empty)", path: "/v1/billing/invoices?year=2026&month=4", token: adminToken, wantData: empty},
		{name: "status=unpaid", path: "/v1/billing/invoices?status=unpaid", token: adminToken, wantData: dataBody(t, []billing.Invoice{inv2, inv1})},
		{name: "status=paid (empty)", path: "/v1/billing/invoices?status=paid", token: adminToken, wantData: empty},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_billingApi_retrieve(t *testing.T) {
	app := setup(t)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	inv := testutil.CreateInvoice(t, invoiceRepo, ch.ID, 2026, 3, 5, 500, 150)

	adminToken := getToken(t, adminID, "Admin", RoleAdmin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/billing/invoices/" + inv.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/billing/invoices/" + inv.ID, token: getToken(t, staffID, "Staff", RoleStaff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unknown invoice", path: "/v1/billing/invoices/deadbeef", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "Found", path: "/v1/billing/invoices/" + inv.ID, token: adminToken, wantData: dataBody(t, inv)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_billingApi_markPaid(t *testing.T) {
	app := setup(t)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	inv := testutil.CreateInvoice(t, invoiceRepo, ch.ID, 2026, 3, 5, 500, 150)
	path := "/v1/billing/invoices/" + inv.ID + "/pay"

	adminToken := getToken(t, adminID, "Admin", RoleAdmin)

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, parentID, "Mama Amani", RoleParent))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("Unknown invoice", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/billing/invoices/deadbeef/pay", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("Paid", func(t *testing.T) {
		paidAt := time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
		mockNow(t, paidAt)

		req, rec := newAuthRequest(http.MethodPatch, path, adminToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp invoiceResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if resp.Message != "invoice marked as paid" {
			t.Errorf("Message = %s, want invoice marked as paid", resp.Message)
		}
		if resp.Data.Status != billing.StatusPaid {
			t.Errorf("Status = %s, want %s", resp.Data.Status, billing.StatusPaid)
		}
		if !resp.Data.PaidAt.Valid || !resp.Data.PaidAt.Time.Equal(paidAt) {
			t.Errorf("PaidAt = %v, want %v", resp.Data.PaidAt, paidAt)
		}
	})
}
