package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/tkabila/chekechea/apps/api/echo"
	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/billing"
	"github.com/tkabila/chekechea/core/child"
	emailsvc "github.com/tkabila/chekechea/services/email"
	dummydb "github.com/tkabila/chekechea/storage/database/dummy"
	testutil "github.com/tkabila/chekechea/tests"
)

// token subjects; minted by the external identity service in production
const (
	adminID   = "8b8fb6e9-a4fc-4a61-9a77-5f759f1f64bd"
	staffID   = "1f0b5c9d-6a10-4f3d-8b17-3d77d3b61f5c"
	parentID  = "0f0cdabe-0506-4ade-8edc-30f5750b9575"
	parent2ID = "2a5a60a4-0496-4551-bb36-4a55cbd02e01"
)

var (
	conf *core.Config

	childRepo      child.Repository
	attendanceRepo attendance.Repository
	invoiceRepo    billing.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) *Server {
	t.Helper()

	// set up store & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	childRepo = dummydb.NewChildRepository(db)
	attendanceRepo = dummydb.NewAttendanceRepository(db)
	invoiceRepo = dummydb.NewInvoiceRepository(db)

	// set up services
	conf = testutil.NewConfig()
	logger := testutil.Logger{T: t}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	childSvc := child.NewService(nil, childRepo)
	attendanceSvc := attendance.NewService(nil, attendanceRepo, childRepo)
	billingSvc := billing.NewService(nil, invoiceRepo, attendanceRepo, childRepo, mailSvc, conf, logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	child.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			ChildSvc:       childSvc,
			AttendanceSvc:  attendanceSvc,
			BillingSvc:     billingSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

type httpErr struct {
	Success bool        `json:"success"`
	Error   interface{} `json:"error"`
}

// envelope mirrors the uniform success response.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, subject, name, role string) string {
	t.Helper()
	token, err := GenerateToken(conf, NewClaims(conf, subject, name, role))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func dataBody(t *testing.T, data interface{}) []byte {
	return marchallObj(t, envelope{Success: true, Data: data})
}

func messageBody(t *testing.T, data interface{}, msg string) []byte {
	return marchallObj(t, envelope{Success: true, Data: data, Message: msg})
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if !(ok1 && ok2) {
		return false, nil
	}
	// unordered list compare
	return assert.ElementsMatch(t, l1, l2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
