package model

import "time"

// StudentStatus is the enrollment state of a student.
type StudentStatus int

const (
	StudentStatusPending StudentStatus = iota
	StudentStatusActive
	StudentStatusSuspended
	StudentStatusGraduated
)

var studentStatusLabels = map[StudentStatus]string{
	StudentStatusPending:   "Pending entrance test",
	StudentStatusActive:    "Active",
	StudentStatusSuspended: "Suspended",
	StudentStatusGraduated: "Graduated",
}

// String returns the display label of s.
func (s StudentStatus) String() string {
	if l, ok := studentStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// StudentStatuses lists every status in display order.
func StudentStatuses() []Option {
	return options(studentStatusLabels, StudentStatusGraduated)
}

// Student is a student record as listed by the API.
type Student struct {
	ID         string        `json:"id"`
	FullName   string        `json:"fullName"`
	Email      *string       `json:"email"`
	Phone      *string       `json:"phone"`
	ClassID    *string       `json:"studentClassId"`
	ClassName  *string       `json:"studentClassName"`
	Status     StudentStatus `json:"status"`
	EnrolledAt *time.Time    `json:"enrolledAt"`
}

// ImportStudentsRequest asks the API to import the uploaded sheet.
type ImportStudentsRequest struct {
	ContentID string  `json:"contentId"`
	ClassID   *string `json:"studentClassId,omitempty"`
}

// ImportSummary is the API's answer to a student import.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	// SheetURL links the uploaded sheet; set locally, never by the API.
	SheetURL string `json:"-"`
}
