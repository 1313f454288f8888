package portal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format used by every dated entity.
const DateLayout = "2006-01-02"

const msgAllRequired = "All fields are required."

// MemberDraft is the add-member form.
type MemberDraft struct {
	ID       string `validate:"required,max=64"`
	Name     string `validate:"required,max=128"`
	Password string `validate:"required"`
	Role     Role   `validate:"required,oneof=admin member"`
}

// WorkDraft is the work item form. UserID is checked against the user list
// by the controller, not here.
type WorkDraft struct {
	UserID      string
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Date        string `validate:"required,isodate"`
	ImageURL    string `validate:"omitempty,url|datauri"`
}

type EventDraft struct {
	Title       string `validate:"required"`
	Date        string `validate:"required,isodate"`
	Description string `validate:"required"`
}

type AchievementDraft struct {
	Title       string `validate:"required"`
	Year        int    `validate:"required,min=1900,max=2100"`
	Description string `validate:"required"`
}

type ArticleDraft struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
	Author  string `validate:"required"`
	Date    string `validate:"required,isodate"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("isodate", validateISODate)
	})
	return validate
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// validateDraft trims every string field of draft (a struct pointer) in place
// and validates it. A missing required field reports requiredMsg; any other
// failure reports the first field's message.
func validateDraft(draft any, requiredMsg string) error {
	trimStrings(draft)
	err := getValidator().Struct(draft)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return newValidationError(err.Error())
	}
	ve := newValidationError("")
	ve.Fields = make(map[string]string, len(fieldErrs))
	missing := false
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = fieldMessage(fe)
		if fe.Tag() == "required" {
			missing = true
		}
	}
	if missing {
		ve.Message = requiredMsg
	} else {
		ve.Message = ve.Fields[fieldErrs[0].Field()]
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format.", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s.", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", field, param)
		}
		return fmt.Sprintf("%s must be at most %s.", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, strings.ReplaceAll(param, " ", ", "))
	case "url|datauri":
		return fmt.Sprintf("%s must be a URL or an image data URI.", field)
	default:
		return fmt.Sprintf("%s is invalid (%s).", field, fe.Tag())
	}
}

// trimStrings trims surrounding whitespace from every settable string field
// of the struct pointed to by v.
func trimStrings(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
