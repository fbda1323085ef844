package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
)

type TaskMemberStatus struct {
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Task struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Priority       constants.Priority `json:"priority"`
	Category       constants.Category `json:"category"`
	Completed      bool               `json:"completed"`
	DueDate        *time.Time         `json:"dueDate,omitempty"`
	Reminder       *time.Time         `json:"reminder,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	GroupID        string             `json:"groupId,omitempty"`
	MemberStatuses []TaskMemberStatus `json:"memberStatuses,omitempty"`
}

// Clone returns a copy that shares no mutable memory with t.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Reminder != nil {
		r := *t.Reminder
		c.Reminder = &r
	}
	if t.MemberStatuses != nil {
		c.MemberStatuses = append([]TaskMemberStatus(nil), t.MemberStatuses...)
	}
	return c
}

// UpsertMemberStatus replaces the entry for ms.UserID unless the stored one is newer.
func (t *Task) UpsertMemberStatus(ms TaskMemberStatus) {
	for i := range t.MemberStatuses {
		if t.MemberStatuses[i].UserID != ms.UserID {
			continue
		}
		if ms.UpdatedAt.Before(t.MemberStatuses[i].UpdatedAt) {
			return
		}
		t.MemberStatuses[i] = ms
		return
	}
	t.MemberStatuses = append(t.MemberStatuses, ms)
}

type CreateTaskInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Priority    constants.Priority `json:"priority"`
	Category    constants.Category `json:"category"`
	Completed   bool               `json:"completed,omitempty"`
	DueDate     *time.Time         `json:"dueDate,omitempty"`
	Reminder    *time.Time         `json:"reminder,omitempty"`
	GroupID     string             `json:"groupId,omitempty"`
}

func (in CreateTaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return exceptions.ErrTitleRequired
	}
	if !in.Priority.Valid() {
		return exceptions.ErrInvalidPriority
	}
	if !in.Category.Valid() {
		return exceptions.ErrInvalidCategory
	}
	return nil
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Priority    *constants.Priority `json:"priority,omitempty"`
	Category    *constants.Category `json:"category,omitempty"`
	Completed   *bool               `json:"completed,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	Reminder    *time.Time          `json:"reminder,omitempty"`
	GroupID     *string             `json:"groupId,omitempty"`
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return exceptions.ErrTitleRequired
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return exceptions.ErrInvalidPriority
	}
	if p.Category != nil && !p.Category.Valid() {
		return exceptions.ErrInvalidCategory
	}
	return nil
}

// ReminderChanged reports whether the patch sets a reminder different from current.
func (p TaskPatch) ReminderChanged(current *time.Time) bool {
	if p.Reminder == nil {
		return false
	}
	return current == nil || !p.Reminder.Equal(*current)
}

func validGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return exceptions.ErrGroupNameRequired
	}
	if utf8.RuneCountInString(name) > 100 {
		return exceptions.ErrGroupNameTooLong
	}
	return nil
}

// MemberTaskState is one member's progress on a group task as reported by the backend.
// UserID is empty when the backend only reports names.
type MemberTaskState struct {
	UserID    string    `json:"userId,omitempty"`
	FirstName string    `json:"prenom"`
	LastName  string    `json:"nom"`
	Status    string    `json:"statut"`
	UpdatedAt time.Time `json:"updatedAt"`
}
