package model

import (
	"time"

	"gorm.io/gorm"
)

type Portfolio struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`

	Projects []Project `json:"-"`
}

type Project struct {
	ID          int           `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"column:project_name;size:255;uniqueIndex;not null" json:"project_name"`
	Status      ProjectStatus `gorm:"size:50;default:Active;not null" json:"status"`
	PortfolioID *int          `json:"portfolio_id"`
	Portfolio   *Portfolio    `json:"-"`

	GroupActivities []GroupActivity `json:"-"`
}

type GroupActivity struct {
	ID        int      `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"size:255;not null;index" json:"name"`
	ProjectID *int     `json:"project_id"`
	Project   *Project `json:"-"`
}

type Team struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`
}

type TeamMember struct {
	ID           int          `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName     string       `gorm:"size:255" json:"full_name"`
	Status       MemberStatus `gorm:"size:20;default:Active" json:"status"`
	Role         Role         `gorm:"size:20;default:user;not null" json:"role"`
	PasswordHash string       `gorm:"size:255" json:"-"`
	TeamID       *int         `json:"team_id"`
	Team         *Team        `json:"-"`
	ManagerID    *int         `json:"manager_id"`
	Manager      *TeamMember  `gorm:"foreignKey:ManagerID" json:"-"`
}

type FunctionActivity struct {
	ID     int    `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null;index" json:"name"`
	TeamID *int   `json:"team_id"`
	Team   *Team  `json:"-"`
}

// Task is an identity row: one per distinct (type, description, group
// activity, function activity, status), reused across weeks.
type Task struct {
	ID                 int               `gorm:"primaryKey" json:"id"`
	Type               TaskType          `gorm:"size:20;not null;uniqueIndex:uk_task_identity" json:"type"`
	Description        string            `gorm:"size:255;not null;uniqueIndex:uk_task_identity" json:"description"`
	Status             TaskStatus        `gorm:"size:50;not null;uniqueIndex:uk_task_identity" json:"status"`
	GroupActivityID    int               `gorm:"not null;uniqueIndex:uk_task_identity" json:"group_activity_id"`
	FunctionActivityID int               `gorm:"not null;uniqueIndex:uk_task_identity" json:"function_activity_id"`
	OwnerID            *int              `json:"owner_id"`
	Owner              *TeamMember       `json:"-"`
	GroupActivity      *GroupActivity    `json:"-"`
	FunctionActivity   *FunctionActivity `json:"-"`
}

type TimeEntry struct {
	ID           int         `gorm:"primaryKey" json:"id"`
	Hours        float64     `gorm:"not null" json:"hours"`
	Notes        string      `json:"notes"`
	DateOfWork   time.Time   `gorm:"not null;index" json:"date_of_work"`
	SubmissionID string      `gorm:"size:36;not null;index" json:"submission_id"`
	Timestamp    time.Time   `gorm:"not null" json:"timestamp"`
	Status       EntryStatus `gorm:"size:20;index" json:"status"`
	DailyMode    bool        `gorm:"not null;default:false" json:"daily_mode"`
	TaskID       int         `gorm:"not null;index" json:"task_id"`
	TeamMemberID int         `gorm:"not null;index" json:"team_member_id"`
	Task         *Task       `json:"-"`
	TeamMember   *TeamMember `json:"-"`

	DayHours
}

// DayHours is the Sunday–Thursday breakdown of a weekly figure.
type DayHours struct {
	Sun float64 `gorm:"not null;default:0" json:"sun"`
	Mon float64 `gorm:"not null;default:0" json:"mon"`
	Tue float64 `gorm:"not null;default:0" json:"tue"`
	Wed float64 `gorm:"not null;default:0" json:"wed"`
	Thu float64 `gorm:"not null;default:0" json:"thu"`
}

func (d DayHours) Total() float64 { return d.Sun + d.Mon + d.Tue + d.Wed + d.Thu }

func (d *DayHours) Add(o DayHours) {
	d.Sun += o.Sun
	d.Mon += o.Mon
	d.Tue += o.Tue
	d.Wed += o.Wed
	d.Thu += o.Thu
}

// AddOn credits h to the field for weekday w. Friday and Saturday have no
// field and report false.
func (d *DayHours) AddOn(w time.Weekday, h float64) bool {
	switch w {
	case time.Sunday:
		d.Sun += h
	case time.Monday:
		d.Mon += h
	case time.Tuesday:
		d.Tue += h
	case time.Wednesday:
		d.Wed += h
	case time.Thursday:
		d.Thu += h
	default:
		return false
	}
	return true
}

func (Portfolio) TableName() string        { return "portfolios" }
func (Project) TableName() string          { return "projects" }
func (GroupActivity) TableName() string    { return "group_activities" }
func (Team) TableName() string             { return "teams" }
func (TeamMember) TableName() string       { return "team_members" }
func (FunctionActivity) TableName() string { return "function_activities" }
func (Task) TableName() string             { return "tasks" }
func (TimeEntry) TableName() string        { return "time_entries" }

// Migrate creates or updates every table, parents first.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Portfolio{},
		&Project{},
		&GroupActivity{},
		&Team{},
		&TeamMember{},
		&FunctionActivity{},
		&Task{},
		&TimeEntry{},
	)
}
