package model

import (
	"fmt"
	"strings"
)

// TaskType separates work lines from meeting lines.
type TaskType string

const (
	TaskTypeWork    TaskType = "Work"
	TaskTypeMeeting TaskType = "Meeting"
)

// TaskStatus is the workflow label a user puts on a work line.
type TaskStatus string

const (
	TaskToStart    TaskStatus = "To Start"
	TaskInProgress TaskStatus = "In Progress"
	TaskOngoing    TaskStatus = "Ongoing"
	TaskOnHold     TaskStatus = "On Hold"
	TaskDone       TaskStatus = "Done"
)

var TaskStatuses = []TaskStatus{TaskToStart, TaskInProgress, TaskOngoing, TaskOnHold, TaskDone}

func ParseTaskStatus(s string) (TaskStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range TaskStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

func (s TaskStatus) MarshalText() ([]byte, error) { return []byte(s), nil }

// UnmarshalText leaves an empty status unset so callers can apply a default.
func (s *TaskStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ""
		return nil
	}
	v, err := ParseTaskStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EntryStatus is the lifecycle of a time entry.
type EntryStatus string

const (
	EntryDraft     EntryStatus = "draft"
	EntrySubmitted EntryStatus = "submitted"
	EntryApproved  EntryStatus = "approved"
)

func ParseEntryStatus(s string) (EntryStatus, error) {
	switch EntryStatus(strings.ToLower(strings.TrimSpace(s))) {
	case EntryDraft:
		return EntryDraft, nil
	case EntrySubmitted:
		return EntrySubmitted, nil
	case EntryApproved:
		return EntryApproved, nil
	}
	return "", fmt.Errorf("unknown entry status %q", s)
}

func (s EntryStatus) MarshalText() ([]byte, error) { return []byte(s), nil }

func (s *EntryStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ""
		return nil
	}
	v, err := ParseEntryStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "Active"
	ProjectInactive ProjectStatus = "Inactive"
)

type MemberStatus string

const (
	MemberActive   MemberStatus = "Active"
	MemberInactive MemberStatus = "Inactive"
)
