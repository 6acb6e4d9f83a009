package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type importForm struct {
	Sheet   string `form:"sheet" validate:"notblank,sheetfile"`
	ClassID string `form:"class_id" validate:"omitempty,max=8"`
}

func TestStruct_Check(t *testing.T) {
	s := NewStruct()

	assert.Nil(t, s.Check(importForm{Sheet: "students.xlsx"}))

	errs := s.Check(importForm{Sheet: "  ", ClassID: "much-too-long"})
	assert.Equal(t, "This field cannot be blank.", errs["sheet"])
	assert.Equal(t, "class_id must be a maximum of 8 characters in length", errs["class_id"])

	errs = s.Check(importForm{Sheet: "photo.png"})
	assert.Equal(t, "Upload a .csv, .xlsx, .xls file.", errs["sheet"])
}

func TestStruct_DateRange(t *testing.T) {
	s := NewStruct()

	assert.Nil(t, s.Check(DateRange{}))
	assert.Nil(t, s.Check(DateRange{Start: "2025-09-01", End: "2025-09-01"}))

	errs := s.Check(DateRange{Start: "2025-09-30", End: "2025-09-01"})
	assert.Equal(t, "The end date must not be before the start date.", errs["end-date"])

	errs = s.Check(DateRange{Start: "09/01/2025"})
	assert.Equal(t, "Enter a date as YYYY-MM-DD.", errs["start-date"])
}
