package service

import (
	"context"
	"testing"

	"timesheet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workTask(desc string, status model.TaskStatus) *model.Task {
	return &model.Task{
		Type: model.TaskTypeWork, Description: desc, Status: status,
		GroupActivity:    &model.GroupActivity{Name: "GA1"},
		FunctionActivity: &model.FunctionActivity{Name: "FA1"},
	}
}

func TestGroupWeekMergesByKey(t *testing.T) {
	design := workTask("Design", model.TaskInProgress)
	entries := []model.TimeEntry{
		{Hours: 3, Notes: "n", Task: design, DailyMode: true, DayHours: model.DayHours{Mon: 1, Tue: 2}},
		{Hours: 4, Notes: "n", Task: design, DailyMode: true, DayHours: model.DayHours{Tue: 1, Thu: 3}},
		{Hours: 5, Notes: "other", Task: design},
		{Hours: 2, Task: workTask("Design", model.TaskDone)},
		{Hours: 9, Task: nil},
	}

	week := GroupWeek(entries)
	require.Len(t, week.Tasks, 3)
	assert.Equal(t, 7.0, week.Tasks[0].TotalWeeklyHours)
	assert.True(t, week.Tasks[0].DailyMode)
	assert.Equal(t, model.DayHours{Mon: 1, Tue: 3, Thu: 3}, week.Tasks[0].DayHours)

	assert.Equal(t, "other", week.Tasks[1].Notes)
	assert.Equal(t, 5.0, week.Tasks[1].TotalWeeklyHours)
	assert.False(t, week.Tasks[1].DailyMode)
	assert.Zero(t, week.Tasks[1].DayHours.Total())

	assert.Equal(t, model.TaskDone, week.Tasks[2].Status)
	assert.Empty(t, week.Meetings)
}

func TestGroupWeekAttributesWeeklyHoursToWorkDay(t *testing.T) {
	design := workTask("Design", model.TaskInProgress)
	build := workTask("Build", model.TaskInProgress)
	standup := &model.Task{Type: model.TaskTypeMeeting, Description: "Standup"}
	week := GroupWeek([]model.TimeEntry{
		{Hours: 3, Task: design, DateOfWork: day("2024-06-17")},
		{Hours: 12, Task: build, DateOfWork: day("2024-06-20")},
		{Hours: 2, Task: design, DateOfWork: day("2024-06-20")},
		{Hours: 4, Task: design, DateOfWork: day("2024-06-21")},
		{Hours: 1, Task: standup, DateOfWork: day("2024-06-16")},
	})

	require.Len(t, week.Tasks, 2)
	assert.Equal(t, "Design", week.Tasks[0].Description)
	assert.Equal(t, 9.0, week.Tasks[0].TotalWeeklyHours)
	assert.Equal(t, model.DayHours{Mon: 3, Thu: 2}, week.Tasks[0].DayHours, "friday hours stay in the total only")
	assert.False(t, week.Tasks[0].DailyMode)

	assert.Equal(t, "Build", week.Tasks[1].Description)
	assert.Equal(t, model.DayHours{Thu: 12}, week.Tasks[1].DayHours)

	require.Len(t, week.Meetings, 1)
	assert.Equal(t, model.DayHours{Sun: 1}, week.Meetings[0].DayHours)
}

func TestGroupWeekDailyBreakdownWinsOverWorkDay(t *testing.T) {
	design := workTask("Design", model.TaskInProgress)
	week := GroupWeek([]model.TimeEntry{
		{Hours: 5, Task: design, DateOfWork: day("2024-06-20"), DailyMode: true, DayHours: model.DayHours{Sun: 2, Wed: 3}},
		{Hours: 1, Task: design, DateOfWork: day("2024-06-18")},
	})
	require.Len(t, week.Tasks, 1)
	assert.True(t, week.Tasks[0].DailyMode)
	assert.Equal(t, 6.0, week.Tasks[0].TotalWeeklyHours)
	assert.Equal(t, model.DayHours{Sun: 2, Tue: 1, Wed: 3}, week.Tasks[0].DayHours)
}

func TestGroupWeekMeetingsIgnoreStatus(t *testing.T) {
	mk := func(status model.TaskStatus) *model.Task {
		return &model.Task{Type: model.TaskTypeMeeting, Description: "Standup", Status: status}
	}
	week := GroupWeek([]model.TimeEntry{
		{Hours: 1, Task: mk(model.TaskDone)},
		{Hours: 2, Task: mk(model.TaskOngoing)},
	})
	require.Len(t, week.Meetings, 1)
	assert.Equal(t, 3.0, week.Meetings[0].TotalWeeklyHours)
	assert.Equal(t, missingName, week.Meetings[0].GroupActivity)
	assert.Equal(t, missingName, week.Meetings[0].FunctionActivity)
}

func TestGroupWeekEmpty(t *testing.T) {
	week := GroupWeek(nil)
	assert.NotNil(t, week.Tasks)
	assert.NotNil(t, week.Meetings)
}

func TestLoadWeekDisplayWindowEdges(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db)
	ctx := context.Background()

	for _, d := range []string{"2024-06-15", "2024-06-16", "2024-06-20", "2024-06-21"} {
		req := designRequest(1)
		req.WeekDate = date(d)
		req.Tasks[0].Notes = d
		_, err := svc.Submit(ctx, req)
		require.NoError(t, err)
	}

	week, err := svc.LoadWeek(ctx, "a@x.com", day("2024-06-20"), []model.EntryStatus{model.EntrySubmitted})
	require.NoError(t, err)
	var notes []string
	for _, row := range week.Tasks {
		notes = append(notes, row.Notes)
	}
	// [end-4d, end]: Sunday 06-16 through Thursday 06-20.
	assert.Equal(t, []string{"2024-06-16", "2024-06-20"}, notes)
}

func TestLoadWeekErrors(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db)
	ctx := context.Background()

	_, err := svc.LoadWeek(ctx, "nobody@x.com", day("2024-06-20"), []model.EntryStatus{model.EntrySubmitted})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.LoadWeek(ctx, "a@x.com", day("2024-06-20"), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadLatestDraft(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db)
	ctx := context.Background()

	none, err := svc.LoadLatestDraft(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, none.WeekDate)
	assert.Empty(t, none.Tasks)
	assert.NotNil(t, none.Meetings)

	older := designRequest(2)
	older.Status = model.EntryDraft
	older.WeekDate = date("2024-06-13")
	_, err = svc.Submit(ctx, older)
	require.NoError(t, err)

	// A Saturday draft belongs to the week that ended on the Thursday before.
	newer := designRequest(6)
	newer.Status = model.EntryDraft
	newer.WeekDate = date("2024-06-22")
	_, err = svc.Submit(ctx, newer)
	require.NoError(t, err)

	submitted := designRequest(8)
	submitted.WeekDate = date("2024-06-27")
	_, err = svc.Submit(ctx, submitted)
	require.NoError(t, err)

	draft, err := svc.LoadLatestDraft(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, draft.WeekDate)
	assert.Equal(t, "2024-06-20", *draft.WeekDate)
}
