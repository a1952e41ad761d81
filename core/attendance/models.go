package attendance

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/child"
)

// Meal names
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealSnack     = "snack"
	MealDinner    = "dinner"
)

var AllMeals = []string{MealBreakfast, MealLunch, MealSnack, MealDinner}

// Record is one child's single-day presence entry. Day is the record's
// calendar day normalized to local midnight; the (ChildID, Day) pair is
// unique.
type Record struct {
	ID                 string         `json:"id"`
	ChildID            string         `json:"child_id"`
	Day                time.Time      `json:"date"`
	CheckInTime        time.Time      `json:"check_in_time"`
	CheckOutTime       null.Time      `json:"check_out_time"`
	ExtraServiceCharge int64          `json:"extra_service_charge"`
	Meals              []string       `json:"meals"`
	CreatedAt          time.Time      `json:"created_at"` // UTC
	UpdatedAt          time.Time      `json:"updated_at"` // UTC
	Child              *child.Summary `json:"child,omitempty"`
}

func (r *Record) IsCheckedOut() bool {
	return r.CheckOutTime.Valid
}

// CheckIn contains information needed to check a child in.
type CheckIn struct {
	ChildID string `json:"child_id" validate:"required"`
}

func (ci *CheckIn) Validate(validate *validator.Validate) error {
	ci.ChildID = core.CleanString(ci.ChildID)
	return validate.Struct(ci)
}

// CheckOut contains information needed to check a child out. Meals, when
// provided, replaces the record's meal set wholesale.
type CheckOut struct {
	ChildID            string   `json:"child_id" validate:"required"`
	ExtraServiceCharge *int64   `json:"extra_service_charge" validate:"omitempty,gte=0"`
	Meals              []string `json:"meals" validate:"omitempty,dive,mealname"`
}

func (co *CheckOut) Validate(validate *validator.Validate) error {
	co.ChildID = core.CleanString(co.ChildID)
	for i, meal := range co.Meals {
		co.Meals[i] = core.CleanString(meal, true /* lower */)
	}
	return validate.Struct(co)
}

// DayStatus tells the UI which attendance action to offer next for a child.
type DayStatus struct {
	IsCheckedIn  bool    `json:"is_checked_in"`
	IsCheckedOut bool    `json:"is_checked_out"`
	Record       *Record `json:"attendance"`
}

type QueryFilter struct {
	ChildID string
	// half-open window [From, To)
	From time.Time
	To   time.Time
}

// Custom validators

var (
	mealNameTag  = "mealname"
	mealNameText = "must be one of: breakfast, lunch, snack, dinner"
)

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(mealNameTag, mealNameValidation)
	core.RegisterCustomTranslation(validate, translator, mealNameTag, mealNameText)
}

func mealNameValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, meal := range AllMeals {
		if meal == val {
			return true
		}
	}
	return false
}
