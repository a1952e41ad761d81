package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/tkabila/chekechea/apps/api/echo"
	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/child"
	testutil "github.com/tkabila/chekechea/tests"
)

type attendanceResponse struct {
	Success bool              `json:"success"`
	Data    attendance.Record `json:"data"`
	Message string            `json:"message"`
}

func Test_attendanceApi_checkIn(t *testing.T) {
	app := setup(t)

	now := time.Date(2026, time.March, 2, 8, 30, 0, 0, time.Local)
	mockNow(t, now)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	staffToken := getToken(t, staffID, "Staff", RoleStaff)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Parent not allowed", token: getToken(t, parentID, "Mama Amani", RoleParent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "child_id required", token: staffToken, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"child_id": "this field is required"}}),
		},
		{
			name: "Unknown child", token: staffToken, wantCode: http.StatusNotFound,
			body:     []byte(`{"child_id": "deadbeef"}`),
			wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/attendance/check-in"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	body := []byte(`{"child_id": "` + ch.ID + `"}`)

	t.Run("Checked in", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-in", staffToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp attendanceResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if resp.Message != "checked in" {
			t.Errorf("Message = %s, want checked in", resp.Message)
		}
		if resp.Data.ChildID != ch.ID {
			t.Errorf("ChildID = %s, want %s", resp.Data.ChildID, ch.ID)
		}
		if !resp.Data.CheckInTime.Equal(now) {
			t.Errorf("CheckInTime = %v, want %v", resp.Data.CheckInTime, now)
		}
		if resp.Data.IsCheckedOut() {
			t.Error("new record is already checked out")
		}
	})

	t.Run("Already checked in", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-in", staffToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "child already checked in today"}),
		}, rec)
	})
}

func Test_attendanceApi_checkOut(t *testing.T) {
	app := setup(t)

	checkInTime := time.Date(2026, time.March, 2, 8, 30, 0, 0, time.Local)
	mockNow(t, checkInTime)

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	staffToken := getToken(t, staffID, "Staff", RoleStaff)

	t.Run("No open record", func(t *testing.T) {
		body := []byte(`{"child_id": "` + ch.ID + `"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-out", staffToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "no open check-in record found for today"}),
		}, rec)
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-in", staffToken, []byte(`{"child_id": "`+ch.ID+`"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("check-in failed: %s", rec.Body.String())
	}

	t.Run("Unknown meal", func(t *testing.T) {
		body := []byte(`{"child_id": "` + ch.ID + `", "meals": ["brunch"]}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-out", staffToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	checkOutTime := checkInTime.Add(9 * time.Hour)
	mockNow(t, checkOutTime)

	t.Run("Checked out", func(t *testing.T) {
		body := []byte(`{"child_id": "` + ch.ID + `", "extra_service_charge": 150, "meals": ["breakfast", "lunch"]}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-out", staffToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp attendanceResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if resp.Message != "checked out" {
			t.Errorf("Message = %s, want checked out", resp.Message)
		}
		if !resp.Data.CheckOutTime.Valid || !resp.Data.CheckOutTime.Time.Equal(checkOutTime) {
			t.Errorf("CheckOutTime = %v, want %v", resp.Data.CheckOutTime, checkOutTime)
		}
		if resp.Data.ExtraServiceCharge != 150 {
			t.Errorf("ExtraServiceCharge = %d, want 150", resp.Data.ExtraServiceCharge)
		}
		if len(resp.Data.Meals) != 2 {
			t.Errorf("Meals = %v, want [breakfast lunch]", resp.Data.Meals)
		}
	})

	t.Run("Already checked out", func(t *testing.T) {
		body := []byte(`{"child_id": "` + ch.ID + `"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-out", staffToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "no open check-in record found for today"}),
		}, rec)
	})
}

func Test_attendanceApi_today(t *testing.T) {
	app := setup(t)

	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local)
	mockNow(t, day.Add(15*time.Hour))

	ch1 := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	ch2 := testutil.CreateChild(t, childRepo, "Zuri", parent2ID, 650, child.StatusActive)
	testutil.CreateAttendance(t, attendanceRepo, ch1.ID, day, 0, nil)
	testutil.CreateAttendance(t, attendanceRepo, ch2.ID, day, 150, []string{attendance.MealLunch})
	testutil.CreateAttendance(t, attendanceRepo, ch1.ID, day.AddDate(0, 0, -1), 0, nil)

	staffToken := getToken(t, staffID, "Staff", RoleStaff)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/attendance/today", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Parent not allowed", path: "/v1/attendance/today", token: getToken(t, parentID, "Mama Amani", RoleParent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Bad date", path: "/v1/attendance/today?date=lol", token: staffToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"date": "must be a YYYY-MM-DD date"}}),
		},
		{name: "Another day", path: "/v1/attendance/today?date=2026-03-05", token: staffToken, wantData: dataBody(t, []attendance.Record{})},
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

	t.Run("Today's records", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/today", staffToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Data []attendance.Record `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(resp.Data) != 2 {
			t.Fatalf("got %d records, want 2", len(resp.Data))
		}
		seen := map[string]bool{}
		for _, r := range resp.Data {
			seen[r.ChildID] = true
		}
		if !seen[ch1.ID] || !seen[ch2.ID] {
			t.Errorf("records cover %v, want both children", seen)
		}
	})
}

func Test_attendanceApi_status(t *testing.T) {
	app := setup(t)

	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local)
	mockNow(t, day.Add(15*time.Hour))

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	rec := testutil.CreateAttendance(t, attendanceRepo, ch.ID, day, 0, nil)
	absent := testutil.CreateChild(t, childRepo, "Zuri", parent2ID, 650, child.StatusActive)

	path := "/v1/attendance/status/" + ch.ID
	present := dataBody(t, attendance.DayStatus{IsCheckedIn: true, IsCheckedOut: true, Record: &rec})

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Foreign parent gets 404", path: path, token: getToken(t, parent2ID, "Papa Zuri", RoleParent),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "Staff", path: path, token: getToken(t, staffID, "Staff", RoleStaff), wantData: present},
		{name: "Own parent", path: path, token: getToken(t, parentID, "Mama Amani", RoleParent), wantData: present},
		{
			name: "Absent child", path: "/v1/attendance/status/" + absent.ID, token: getToken(t, staffID, "Staff", RoleStaff),
			wantData: dataBody(t, attendance.DayStatus{}),
		},
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

func Test_attendanceApi_listForChild(t *testing.T) {
	app := setup(t)

	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.Local) }

	ch := testutil.CreateChild(t, childRepo, "Amani", parentID, 500, child.StatusActive)
	other := testutil.CreateChild(t, childRepo, "Zuri", parent2ID, 650, child.StatusActive)
	rec1 := testutil.CreateAttendance(t, attendanceRepo, ch.ID, day(1), 0, nil)
	rec2 := testutil.CreateAttendance(t, attendanceRepo, ch.ID, day(2), 0, nil)
	rec5 := testutil.CreateAttendance(t, attendanceRepo, ch.ID, day(5), 0, nil)
	testutil.CreateAttendance(t, attendanceRepo, other.ID, day(2), 0, nil)

	path := "/v1/attendance/child/" + ch.ID

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Foreign parent gets 404", path: path, token: getToken(t, parent2ID, "Papa Zuri", RoleParent),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Bad start date", path: path + "?start=lol", token: getToken(t, staffID, "Staff", RoleStaff),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"start": "must be a YYYY-MM-DD date"}}),
		},
		{
			name: "Full history, newest first", path: path, token: getToken(t, parentID, "Mama Amani", RoleParent),
			wantData: dataBody(t, []attendance.Record{rec5, rec2, rec1}),
		},
		{
			name: "Inclusive range", path: path + "?start=2026-03-01&end=2026-03-02", token: getToken(t, staffID, "Staff", RoleStaff),
			wantData: dataBody(t, []attendance.Record{rec2, rec1}),
		},
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
