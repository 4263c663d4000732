package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timesheet/internal/logger"
	"timesheet/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntrySyncer receives the rows of every committed submission, preceded by
// the tasks the submission inserted.
type EntrySyncer interface {
	SyncTasks(ctx context.Context, tasks []model.Task)
	SyncTimeEntries(ctx context.Context, entries []model.TimeEntry)
}

type SubmissionService struct {
	db    *gorm.DB
	sync  EntrySyncer
	now   func() time.Time
	newID func() string
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db, now: time.Now, newID: uuid.NewString}
}

func (s *SubmissionService) SetSyncer(sync EntrySyncer) { s.sync = sync }

// Submit writes one weekly timesheet. With Overwrite set, the member's
// entries in the calendar week ending at WeekDate are replaced in the same
// transaction.
func (s *SubmissionService) Submit(ctx context.Context, req model.SubmissionRequest) (*model.SubmitResult, error) {
	email := strings.TrimSpace(req.UserEmail)
	if email == "" {
		return nil, invalidf("user_email is required")
	}
	if req.WeekDate.IsZero() {
		return nil, invalidf("week_date is required")
	}
	status := req.Status
	if status == "" {
		status = model.EntrySubmitted
	}

	var member *model.TeamMember
	var entries []model.TimeEntry
	var newTasks []model.Task
	submissionID := s.newID()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		member, err = memberByEmail(ctx, tx, email)
		if err != nil {
			return err
		}

		if req.Overwrite {
			from, until := OverwriteWindow(req.WeekDate.Time)
			res := tx.Where("team_member_id = ? AND date_of_work >= ? AND date_of_work < ?", member.ID, from, until).
				Delete(&model.TimeEntry{})
			if res.Error != nil {
				return fmt.Errorf("delete week entries: %w", res.Error)
			}
			logger.Info("submission.overwrite", "member_id", member.ID, "week", req.WeekDate.String(), "deleted", res.RowsAffected)
		}

		b := &entryBuilder{
			db:           tx,
			memberID:     member.ID,
			weekDate:     model.NewDate(req.WeekDate.Time).Time,
			status:       status,
			submissionID: submissionID,
			timestamp:    s.now(),
		}
		tasks, err := b.taskEntries(ctx, req.Tasks, req.DailyMode)
		if err != nil {
			return err
		}
		meetings, err := b.meetingEntries(ctx, req.Meetings)
		if err != nil {
			return err
		}

		entries = append(tasks, meetings...)
		if len(entries) == 0 {
			return invalidf("no valid time entries to submit")
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("insert time entries: %w", err)
		}
		newTasks = b.newTasks
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound) {
			logger.Error("submission.failed", "email", email, "err", err)
		}
		return nil, classify("submit timesheet", err)
	}

	logger.Info("submission.ok", "member_id", member.ID, "submission_id", submissionID,
		"week", req.WeekDate.String(), "status", status, "entries", len(entries), "new_tasks", len(newTasks))

	if s.sync != nil {
		if len(newTasks) > 0 {
			s.sync.SyncTasks(ctx, newTasks)
		}
		s.sync.SyncTimeEntries(ctx, entries)
	}
	return &model.SubmitResult{
		Success:      true,
		Message:      "Timesheet submitted successfully.",
		SubmissionID: submissionID,
		Entries:      len(entries),
	}, nil
}

func memberByEmail(ctx context.Context, db *gorm.DB, email string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("no user found for email: %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return &m, nil
}
