package main

import (
	"context"

	"timesheet/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// timesheetKnowledge teaches the catalog's NL2SQL how the synced tables join.
var timesheetKnowledge = []sdk.NL2SQLKnowledgeCreateRequest{
	{Type: "glossary", Key: "timesheet", Value: []string{"all time_entries rows of one member for one Sunday-Thursday week"}},
	{Type: "glossary", Key: "week ending", Value: []string{"the Thursday closing a Sunday-Thursday work week; time_entries.date_of_work holds it for form submissions"}},
	{Type: "glossary", Key: "meeting", Value: []string{"a task whose tasks.type is 'Meeting'"}},

	{Type: "synonyms", Key: "who/person/member/employee", Value: []string{"team member"}, AssociateTables: []string{"team_members,full_name"}},
	{Type: "synonyms", Key: "hours/effort/time spent", Value: []string{"logged hours"}, AssociateTables: []string{"time_entries,hours"}},
	{Type: "synonyms", Key: "task/work item", Value: []string{"task description"}, AssociateTables: []string{"tasks,description"}},

	{Type: "logic", Key: "hours per member join time_entries.team_member_id to team_members.id", Value: []string{"JOIN team_members ON time_entries.team_member_id = team_members.id"}},
	{Type: "logic", Key: "only submitted and approved entries count as reported hours; drafts are work in progress", Value: []string{"time_entries.status IN ('submitted','approved')"}},

	{Type: "case_library", Key: "who has not submitted this week", Value: []string{"SELECT m.full_name FROM team_members m LEFT JOIN time_entries e ON e.team_member_id = m.id AND e.status IN ('submitted','approved') AND e.date_of_work >= DATE_SUB(CURDATE(), INTERVAL 6 DAY) WHERE e.id IS NULL AND m.status = 'Active'"}},
	{Type: "case_library", Key: "total hours per task this month", Value: []string{"SELECT t.description, SUM(e.hours) FROM time_entries e JOIN tasks t ON e.task_id = t.id WHERE e.date_of_work >= DATE_FORMAT(CURDATE(), '%Y-%m-01') GROUP BY t.description ORDER BY 2 DESC"}},
}

func initKnowledge(ctx context.Context, client *sdk.RawClient) error {
	for _, k := range timesheetKnowledge {
		resp, err := client.CreateKnowledge(ctx, &k)
		if err != nil {
			if isDuplicate(err) {
				logger.Info("knowledge: already exists, skipping", "type", k.Type, "key", k.Key)
				continue
			}
			return err
		}
		logger.Info("knowledge: created", "type", k.Type, "key", k.Key, "id", resp.ID)
	}
	return nil
}
