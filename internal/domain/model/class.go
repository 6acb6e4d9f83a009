package model

import (
	"strconv"
	"time"
)

// ClassStatus is the lifecycle state of a class as reported by the API.
type ClassStatus int

const (
	ClassStatusDraft ClassStatus = iota
	ClassStatusOpen
	ClassStatusOngoing
	ClassStatusCompleted
	ClassStatusCancelled
)

var classStatusLabels = map[ClassStatus]string{
	ClassStatusDraft:     "Draft",
	ClassStatusOpen:      "Open for enrollment",
	ClassStatusOngoing:   "Ongoing",
	ClassStatusCompleted: "Completed",
	ClassStatusCancelled: "Cancelled",
}

// String returns the display label of s.
func (s ClassStatus) String() string {
	if l, ok := classStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// ClassStatuses lists every status in display order.
func ClassStatuses() []Option {
	return options(classStatusLabels, ClassStatusCancelled)
}

// Class is a scheduled piano class.
type Class struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Level       *string     `json:"level"`
	TeacherID   *string     `json:"teacherId"`
	TeacherName *string     `json:"teacherName"`
	Status      ClassStatus `json:"status"`
	Capacity    int         `json:"capacity"`
	Enrolled    int         `json:"enrolled"`
	StartDate   *time.Time  `json:"startDate"`
	EndDate     *time.Time  `json:"endDate"`
	Published   bool        `json:"published"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Seats renders the enrollment as "enrolled/capacity".
func (c Class) Seats() string {
	return strconv.Itoa(c.Enrolled) + "/" + strconv.Itoa(c.Capacity)
}

// CanPublish reports whether the class schedule can still be published.
func (c Class) CanPublish() bool {
	return !c.Published && c.Status == ClassStatusDraft
}

// PublishClassRequest asks the API to publish a class schedule.
type PublishClassRequest struct {
	NotifyStudents bool    `json:"notifyStudents"`
	Note           *string `json:"note,omitempty"`
}

// Teacher is the short form of a teacher used by filters.
type Teacher struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// Option is a value/label pair for filter checkboxes and selects.
type Option struct {
	Value string
	Label string
}

func options[K ~int](labels map[K]string, last K) []Option {
	out := make([]Option, 0, len(labels))
	for k := K(0); k <= last; k++ {
		if l, ok := labels[k]; ok {
			out = append(out, Option{Value: strconv.Itoa(int(k)), Label: l})
		}
	}
	return out
}
