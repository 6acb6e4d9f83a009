package validation

import (
	"errors"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Custom validation tags.
const (
	notBlankTag  = "notblank"
	isoDateTag   = "isodate"
	sheetFileTag = "sheetfile"
	dateRangeTag = "daterange"
)

// SheetExtensions are the spreadsheet formats the student import accepts.
var SheetExtensions = []string{".csv", ".xlsx", ".xls"}

// DateRange is an optional inclusive date interval posted by filter forms.
type DateRange struct {
	Start string `form:"start-date" validate:"omitempty,isodate"`
	End   string `form:"end-date" validate:"omitempty,isodate"`
}

// Struct validates tagged form structs and reports English messages keyed
// by the form field name.
type Struct struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewStruct builds a Struct with the default English translations and the
// custom tags registered.
func NewStruct() *Struct {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Report form field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(isoDateTag, isoDate)
	_ = v.RegisterValidation(sheetFileTag, sheetFile)
	v.RegisterStructValidation(dateRangeOrder, DateRange{})

	s := &Struct{validate: v, trans: trans}
	s.registerMessages(notBlankTag, isoDateTag, sheetFileTag, dateRangeTag)
	return s
}

// Check validates v and returns the failed fields, or nil when v is valid.
func (s *Struct) Check(v any) map[string]string {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; !seen {
			out[field] = fe.Translate(s.trans)
		}
	}
	return out
}

// registerMessages installs messages for the custom tags. The translator
// itself is already registered, so the registration func is a no-op.
func (s *Struct) registerMessages(tags ...string) {
	noop := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = s.validate.RegisterTranslation(tag, s.trans, noop, customMessage)
	}
}

func customMessage(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "This field cannot be blank."
	case isoDateTag:
		return "Enter a date as YYYY-MM-DD."
	case sheetFileTag:
		return "Upload a " + strings.Join(SheetExtensions, ", ") + " file."
	case dateRangeTag:
		return "The end date must not be before the start date."
	default:
		return fe.Error()
	}
}

func notBlank(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(str) != ""
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

func sheetFile(fl validator.FieldLevel) bool {
	ext := strings.ToLower(path.Ext(fl.Field().String()))
	for _, allowed := range SheetExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func dateRangeOrder(sl validator.StructLevel) {
	dr, ok := sl.Current().Interface().(DateRange)
	if !ok || dr.Start == "" || dr.End == "" {
		return
	}
	start, err1 := time.Parse(time.DateOnly, dr.Start)
	end, err2 := time.Parse(time.DateOnly, dr.End)
	if err1 != nil || err2 != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(dr.End, "end-date", "End", dateRangeTag, "")
	}
}
