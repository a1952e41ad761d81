package child

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
)

// Statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusGraduated = "graduated"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var (
	AllStatuses = []string{StatusActive, StatusInactive, StatusGraduated}
	AllGenders  = []string{GenderMale, GenderFemale, GenderOther}
)

// DefaultDailyFee applies when registration does not provide a fee.
const DefaultDailyFee int64 = 500

type Child struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	DateOfBirth    time.Time   `json:"date_of_birth"`
	Gender         string      `json:"gender"`
	Allergies      []string    `json:"allergies"`
	MedicalNotes   string      `json:"medical_notes"`
	GuardianName   string      `json:"guardian_name"`
	GuardianPhone  string      `json:"guardian_phone"`
	GuardianEmail  string      `json:"guardian_email"`
	ParentID       string      `json:"parent_id"`
	CaregiverID    null.String `json:"caregiver_id"`
	EnrollmentDate time.Time   `json:"enrollment_date"`
	Status         string      `json:"status"`
	BaseDailyFee   int64       `json:"base_daily_fee"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

func (c *Child) IsActive() bool {
	return c.Status == StatusActive
}

// Summary carries the child display fields resolved onto attendance records
// and invoices.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	GuardianName string `json:"guardian_name"`
	Status       string `json:"status"`
}

func (c *Child) Summary() Summary {
	return Summary{
		ID:           c.ID,
		Name:         c.Name,
		GuardianName: c.GuardianName,
		Status:       c.Status,
	}
}

// NewChild contains information needed to register a new Child.
// ParentID is only honored for admin callers; parents always register
// children under their own account.
type NewChild struct {
	ParentID      string    `json:"parent_id" validate:"omitempty,uuid4"`
	Name          string    `json:"name" validate:"required"`
	DateOfBirth   time.Time `json:"date_of_birth" validate:"required"`
	Gender        string    `json:"gender" validate:"required,gender"`
	Allergies     []string  `json:"allergies"`
	MedicalNotes  string    `json:"medical_notes"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	GuardianEmail string    `json:"guardian_email" validate:"omitempty,email"`
	BaseDailyFee  *int64    `json:"base_daily_fee" validate:"omitempty,gte=0"`
}

func (nc *NewChild) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Gender = core.CleanString(nc.Gender, true /* lower */)
	nc.GuardianEmail = core.CleanString(nc.GuardianEmail, true /* lower */)
	return validate.Struct(nc)
}

// UpdateChild defines what information may be provided to modify an existing Child.
type UpdateChild struct {
	Name          string    `json:"name"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	Gender        string    `json:"gender" validate:"omitempty,gender"`
	Allergies     []string  `json:"allergies"`
	MedicalNotes  *string   `json:"medical_notes"`
	GuardianName  *string   `json:"guardian_name"`
	GuardianPhone *string   `json:"guardian_phone"`
	GuardianEmail *string   `json:"guardian_email" validate:"omitempty"`
	Status        string    `json:"status" validate:"omitempty,childstatus"`
	BaseDailyFee  *int64    `json:"base_daily_fee" validate:"omitempty,gte=0"`
}

func (uc *UpdateChild) Validate(orig Child, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.DateOfBirth.IsZero() {
		uc.DateOfBirth = orig.DateOfBirth
	}
	if gender := core.CleanString(uc.Gender, true /* lower */); gender != "" {
		uc.Gender = gender
	} else {
		uc.Gender = orig.Gender
	}
	if uc.Status == "" {
		uc.Status = orig.Status
	}
	if uc.GuardianEmail != nil {
		email := core.CleanString(*uc.GuardianEmail, true /* lower */)
		uc.GuardianEmail = &email
	}
	return validate.Struct(uc)
}

type QueryFilter struct {
	Search   string `query:"search"`
	ParentID string `query:"parent_id"`
	Status   string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ParentID == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Custom validators

var (
	genderTag      = "gender"
	genderText     = "must be one of: male, female, other"
	childStatusTag = "childstatus"
	childStatusTxt = "must be one of: active, inactive, graduated"
)

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(genderTag, genderValidation)
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)

	_ = validate.RegisterValidation(childStatusTag, childStatusValidation)
	core.RegisterCustomTranslation(validate, translator, childStatusTag, childStatusTxt)
}

func genderValidation(fl validator.FieldLevel) bool {
	return containsString(AllGenders, fl.Field().String())
}

func childStatusValidation(fl validator.FieldLevel) bool {
	return containsString(AllStatuses, fl.Field().String())
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
