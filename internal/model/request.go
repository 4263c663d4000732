package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day carried as YYYY-MM-DD on the wire, midnight UTC in memory.
type Date struct{ time.Time }

func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// --- timesheet submission ---

type SubmissionRequest struct {
	UserEmail string        `json:"user_email" binding:"required"`
	WeekDate  Date          `json:"week_date"`
	DailyMode bool          `json:"daily_mode"`
	Overwrite bool          `json:"overwrite"`
	Status    EntryStatus   `json:"status"`
	Tasks     []TaskLine    `json:"tasks"`
	Meetings  []MeetingLine `json:"meetings"`
}

type TaskLine struct {
	Description      string     `json:"description"`
	GroupActivity    string     `json:"group_activity"`
	FunctionActivity string     `json:"function_activity"`
	Status           TaskStatus `json:"status"`
	WeeklyHours      float64    `json:"weekly_hours"`
	Notes            string     `json:"notes"`
	DayHours
}

type MeetingLine struct {
	Description      string  `json:"description"`
	GroupActivity    string  `json:"group_activity"`
	FunctionActivity string  `json:"function_activity"`
	Hours            float64 `json:"weekly_hours"`
	Notes            string  `json:"notes"`
}

type SubmitResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submission_id,omitempty"`
	Entries      int    `json:"entries"`
}

// --- week reconstruction ---

type TaskRow struct {
	Description      string     `json:"description"`
	GroupActivity    string     `json:"group_activity"`
	FunctionActivity string     `json:"function_activity"`
	Status           TaskStatus `json:"status"`
	TotalWeeklyHours float64    `json:"total_weekly_hours"`
	Notes            string     `json:"notes"`
	DailyMode        bool       `json:"daily_mode"`
	DayHours
}

type MeetingRow struct {
	Description      string  `json:"description"`
	GroupActivity    string  `json:"group_activity"`
	FunctionActivity string  `json:"function_activity"`
	TotalWeeklyHours float64 `json:"total_weekly_hours"`
	Notes            string  `json:"notes"`
	DailyMode        bool    `json:"daily_mode"`
	DayHours
}

type WeekData struct {
	Tasks    []TaskRow    `json:"tasks"`
	Meetings []MeetingRow `json:"meetings"`
}

// DraftWeek is WeekData plus the week it was found in; WeekDate is nil when
// the member has no drafts.
type DraftWeek struct {
	WeekData
	WeekDate *string `json:"week_date"`
}

// --- reference catalog ---

type NameInput struct {
	Name string `json:"name" binding:"required"`
}

type ProjectInput struct {
	Name        string `json:"name" binding:"required"`
	PortfolioID *int   `json:"portfolio_id"`
}

type GroupActivityInput struct {
	Name      string `json:"name" binding:"required"`
	ProjectID int    `json:"project_id" binding:"required"`
}

type FunctionActivityInput struct {
	Name   string `json:"name" binding:"required"`
	TeamID int    `json:"team_id" binding:"required"`
}

type ManagerInput struct {
	ManagerID *int `json:"manager_id"`
}

type ProjectView struct {
	ID            int           `json:"id"`
	Name          string        `json:"project_name"`
	Status        ProjectStatus `json:"status"`
	PortfolioID   *int          `json:"portfolio_id"`
	PortfolioName string        `json:"portfolio_name"`
}

type GroupActivityView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Project   string `json:"project"`
	Portfolio string `json:"portfolio"`
}

type MemberProfile struct {
	FullName string `json:"full_name"`
	Team     string `json:"team"`
}

// --- auth ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	TeamID   *int   `json:"team_id"`
	Role     Role   `json:"role"`
}
