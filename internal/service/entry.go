package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"timesheet/internal/logger"
	"timesheet/internal/model"

	"gorm.io/gorm"
)

// entryBuilder turns submitted lines into TimeEntry rows that share one
// submission id, capture timestamp, work date and status. Tasks it had to
// insert are collected in newTasks.
type entryBuilder struct {
	db           *gorm.DB
	memberID     int
	weekDate     time.Time
	status       model.EntryStatus
	submissionID string
	timestamp    time.Time
	newTasks     []model.Task
}

func (b *entryBuilder) resolve(ctx context.Context, identity TaskIdentity) (int, error) {
	task, created, err := resolveTask(ctx, b.db, identity)
	if err != nil {
		return 0, err
	}
	if created {
		b.newTasks = append(b.newTasks, task)
	}
	return task.ID, nil
}

func (b *entryBuilder) newEntry(taskID int, hours float64, notes string, daily bool, days model.DayHours) model.TimeEntry {
	return model.TimeEntry{
		Hours:        hours,
		Notes:        notes,
		DateOfWork:   b.weekDate,
		SubmissionID: b.submissionID,
		Timestamp:    b.timestamp,
		Status:       b.status,
		DailyMode:    daily,
		DayHours:     days,
		TaskID:       taskID,
		TeamMemberID: b.memberID,
	}
}

// taskEntries skips lines with no positive hours and lines whose activities
// do not resolve; any other failure aborts the build.
func (b *entryBuilder) taskEntries(ctx context.Context, lines []model.TaskLine, daily bool) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	for i, line := range lines {
		var days model.DayHours
		total := line.WeeklyHours
		if daily {
			days = line.DayHours
			total = days.Total()
			if hasNegative(days) {
				logger.Warn("submission.line_skipped", "kind", "task", "line", i, "reason", "negative day hours")
				continue
			}
		}
		if total <= 0 {
			continue
		}

		status := line.Status
		if status == "" {
			status = model.TaskToStart
		}
		taskID, err := b.resolve(ctx, TaskIdentity{
			Type:             model.TaskTypeWork,
			Description:      strings.TrimSpace(line.Description),
			GroupActivity:    strings.TrimSpace(line.GroupActivity),
			FunctionActivity: strings.TrimSpace(line.FunctionActivity),
			Status:           status,
		})
		if errors.Is(err, ErrNotFound) {
			logger.Warn("submission.line_skipped", "kind", "task", "line", i, "reason", err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, b.newEntry(taskID, total, strings.TrimSpace(line.Notes), daily, days))
	}
	return entries, nil
}

// meetingEntries records meetings as a single weekly figure with status Done.
func (b *entryBuilder) meetingEntries(ctx context.Context, lines []model.MeetingLine) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	for i, line := range lines {
		if line.Hours <= 0 {
			continue
		}
		taskID, err := b.resolve(ctx, TaskIdentity{
			Type:             model.TaskTypeMeeting,
			Description:      strings.TrimSpace(line.Description),
			GroupActivity:    strings.TrimSpace(line.GroupActivity),
			FunctionActivity: strings.TrimSpace(line.FunctionActivity),
			Status:           model.TaskDone,
		})
		if errors.Is(err, ErrNotFound) {
			logger.Warn("submission.line_skipped", "kind", "meeting", "line", i, "reason", err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, b.newEntry(taskID, line.Hours, strings.TrimSpace(line.Notes), false, model.DayHours{}))
	}
	return entries, nil
}

func hasNegative(d model.DayHours) bool {
	return d.Sun < 0 || d.Mon < 0 || d.Tue < 0 || d.Wed < 0 || d.Thu < 0
}
