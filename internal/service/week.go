package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timesheet/internal/model"

	"gorm.io/gorm"
)

// TaskLineKey identifies one reconstructed work line. Entries that agree on
// every field are the same line spread over several rows.
type TaskLineKey struct {
	GroupActivity    string
	FunctionActivity string
	Status           model.TaskStatus
	Description      string
	Notes            string
}

// MeetingLineKey identifies one reconstructed meeting line.
type MeetingLineKey struct {
	GroupActivity    string
	FunctionActivity string
	Description      string
	Notes            string
}

const missingName = "N/A"

// LoadWeek rebuilds the task and meeting lines a member logged in the
// Sunday–Thursday week ending at weekEnd, restricted to statuses.
func (s *SubmissionService) LoadWeek(ctx context.Context, email string, weekEnd time.Time, statuses []model.EntryStatus) (*model.WeekData, error) {
	if len(statuses) == 0 {
		return nil, invalidf("at least one status is required")
	}
	member, err := memberByEmail(ctx, s.db, strings.TrimSpace(email))
	if err != nil {
		return nil, classify("load week", err)
	}
	data, err := s.loadWeek(ctx, member.ID, weekEnd, statuses)
	if err != nil {
		return nil, classify("load week", err)
	}
	return data, nil
}

// LoadLatestDraft finds the member's newest draft entry and reloads the
// drafts of the week it belongs to.
func (s *SubmissionService) LoadLatestDraft(ctx context.Context, email string) (*model.DraftWeek, error) {
	member, err := memberByEmail(ctx, s.db, strings.TrimSpace(email))
	if err != nil {
		return nil, classify("load draft", err)
	}

	var latest model.TimeEntry
	err = s.db.WithContext(ctx).
		Where("team_member_id = ? AND status = ?", member.ID, model.EntryDraft).
		Order("date_of_work DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.DraftWeek{WeekData: emptyWeek()}, nil
	}
	if err != nil {
		return nil, persistence("query latest draft", err)
	}

	weekEnd := WeekEnding(latest.DateOfWork)
	data, err := s.loadWeek(ctx, member.ID, weekEnd, []model.EntryStatus{model.EntryDraft})
	if err != nil {
		return nil, classify("load draft", err)
	}
	week := weekEnd.Format(model.DateLayout)
	return &model.DraftWeek{WeekData: *data, WeekDate: &week}, nil
}

func (s *SubmissionService) loadWeek(ctx context.Context, memberID int, weekEnd time.Time, statuses []model.EntryStatus) (*model.WeekData, error) {
	from, until := DisplayWindow(weekEnd)
	var entries []model.TimeEntry
	err := s.db.WithContext(ctx).
		Preload("Task.GroupActivity").
		Preload("Task.FunctionActivity").
		Where("team_member_id = ? AND date_of_work >= ? AND date_of_work < ? AND status IN ?", memberID, from, until, statuses).
		Order("date_of_work, id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("query week entries: %w", err)
	}
	data := GroupWeek(entries)
	return &data, nil
}

// GroupWeek folds entries into display lines in first-seen order. A
// daily-mode entry adds its stored per-day breakdown; any other entry adds
// its hours to the day of its date of work. Hours dated Friday or Saturday
// count toward the line total only. Entries without a loaded Task are dropped.
func GroupWeek(entries []model.TimeEntry) model.WeekData {
	week := emptyWeek()
	taskIdx := map[TaskLineKey]int{}
	meetingIdx := map[MeetingLineKey]int{}

	for _, e := range entries {
		if e.Task == nil {
			continue
		}
		ga, fa := missingName, missingName
		if e.Task.GroupActivity != nil && e.Task.GroupActivity.Name != "" {
			ga = e.Task.GroupActivity.Name
		}
		if e.Task.FunctionActivity != nil && e.Task.FunctionActivity.Name != "" {
			fa = e.Task.FunctionActivity.Name
		}
		desc := e.Task.Description
		if desc == "" {
			desc = missingName
		}
		var days model.DayHours
		if e.DailyMode {
			days = e.DayHours
		} else if !e.DateOfWork.IsZero() {
			days.AddOn(e.DateOfWork.UTC().Weekday(), e.Hours)
		}

		if e.Task.Type == model.TaskTypeMeeting {
			key := MeetingLineKey{GroupActivity: ga, FunctionActivity: fa, Description: desc, Notes: e.Notes}
			i, ok := meetingIdx[key]
			if !ok {
				i = len(week.Meetings)
				meetingIdx[key] = i
				week.Meetings = append(week.Meetings, model.MeetingRow{
					Description: desc, GroupActivity: ga, FunctionActivity: fa, Notes: e.Notes,
				})
			}
			row := &week.Meetings[i]
			row.TotalWeeklyHours += e.Hours
			row.DailyMode = row.DailyMode || e.DailyMode
			row.DayHours.Add(days)
			continue
		}

		key := TaskLineKey{GroupActivity: ga, FunctionActivity: fa, Status: e.Task.Status, Description: desc, Notes: e.Notes}
		i, ok := taskIdx[key]
		if !ok {
			i = len(week.Tasks)
			taskIdx[key] = i
			week.Tasks = append(week.Tasks, model.TaskRow{
				Description: desc, GroupActivity: ga, FunctionActivity: fa, Status: e.Task.Status, Notes: e.Notes,
			})
		}
		row := &week.Tasks[i]
		row.TotalWeeklyHours += e.Hours
		row.DailyMode = row.DailyMode || e.DailyMode
		row.DayHours.Add(days)
	}
	return week
}

func emptyWeek() model.WeekData {
	return model.WeekData{Tasks: []model.TaskRow{}, Meetings: []model.MeetingRow{}}
}
