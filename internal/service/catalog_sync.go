package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timesheet/internal/config"
	"timesheet/internal/logger"
	"timesheet/internal/model"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

const catalogTimeLayout = "2006-01-02 15:04:05"

// Column order of the analytics tables created by cmd/catalog_init.
var (
	memberColumns = []string{"id", "email", "full_name", "team_id", "manager_id", "status", "role"}
	taskColumns   = []string{"id", "type", "description", "status", "group_activity_id", "function_activity_id"}
	entryColumns  = []string{"id", "team_member_id", "task_id", "date_of_work", "hours", "status",
		"daily_mode", "sun", "mon", "tue", "wed", "thu", "submission_id", "notes", "created_at"}
)

// CatalogSync appends committed rows to the MOI analytics catalog. Every
// method is best effort: failures are logged and swallowed.
type CatalogSync struct {
	raw *sdk.RawClient
	sdk *sdk.SDKClient
	cfg config.MOIConfig
}

func NewCatalogSync(raw *sdk.RawClient, cfg config.MOIConfig) *CatalogSync {
	if raw == nil {
		return &CatalogSync{cfg: cfg}
	}
	return &CatalogSync{raw: raw, sdk: sdk.NewSDKClient(raw), cfg: cfg}
}

// Ready reports whether a client and a target database are configured.
func (s *CatalogSync) Ready() bool {
	return s != nil && s.raw != nil && s.cfg.DatabaseID != 0
}

func (s *CatalogSync) SyncTimeEntries(ctx context.Context, entries []model.TimeEntry) {
	if !s.Ready() || len(entries) == 0 {
		return
	}
	s.importCSV(ctx, sdk.TableID(s.cfg.EntriesTableID), entriesCSV(entries),
		fmt.Sprintf("entries_%s.csv", entries[0].SubmissionID), entryColumns)
}

func (s *CatalogSync) SyncMembers(ctx context.Context, members []model.TeamMember) {
	if !s.Ready() || len(members) == 0 {
		return
	}
	s.importCSV(ctx, sdk.TableID(s.cfg.MembersTableID), membersCSV(members),
		fmt.Sprintf("members_%d.csv", time.Now().Unix()), memberColumns)
}

func (s *CatalogSync) SyncTasks(ctx context.Context, tasks []model.Task) {
	if !s.Ready() || len(tasks) == 0 {
		return
	}
	s.importCSV(ctx, sdk.TableID(s.cfg.TasksTableID), tasksCSV(tasks),
		fmt.Sprintf("tasks_%d.csv", time.Now().Unix()), taskColumns)
}

func entriesCSV(entries []model.TimeEntry) string {
	var buf bytes.Buffer
	for _, e := range entries {
		fields := []string{
			strconv.Itoa(e.ID),
			strconv.Itoa(e.TeamMemberID),
			strconv.Itoa(e.TaskID),
			e.DateOfWork.Format(model.DateLayout),
			num(e.Hours),
			string(e.Status),
			strconv.FormatBool(e.DailyMode),
			num(e.Sun), num(e.Mon), num(e.Tue), num(e.Wed), num(e.Thu),
			e.SubmissionID,
			esc(e.Notes),
			e.Timestamp.Format(catalogTimeLayout),
		}
		buf.WriteString(strings.Join(fields, ",") + "\n")
	}
	return buf.String()
}

func membersCSV(members []model.TeamMember) string {
	var buf bytes.Buffer
	for _, m := range members {
		fmt.Fprintf(&buf, "%d,%s,%s,%s,%s,%s,%s\n", m.ID, esc(m.Email), esc(m.FullName),
			optInt(m.TeamID), optInt(m.ManagerID), m.Status, m.Role)
	}
	return buf.String()
}

func tasksCSV(tasks []model.Task) string {
	var buf bytes.Buffer
	for _, t := range tasks {
		fmt.Fprintf(&buf, "%d,%s,%s,%s,%d,%d\n", t.ID, t.Type, esc(t.Description), t.Status,
			t.GroupActivityID, t.FunctionActivityID)
	}
	return buf.String()
}

func columnMapping(columns []string) []sdk.FileAndTableColumnMapping {
	out := make([]sdk.FileAndTableColumnMapping, len(columns))
	for i, c := range columns {
		out[i] = sdk.FileAndTableColumnMapping{TableColumn: c, Column: c, ColNumInFile: 1}
		if i > 0 {
			out[i].ColNumInFile = out[i-1].ColNumInFile + 1
		}
	}
	return out
}

func (s *CatalogSync) importCSV(ctx context.Context, tableID sdk.TableID, csv, fileName string, columns []string) {
	if tableID == 0 {
		logger.Warn("catalog_sync.skipped", "file", fileName, "reason", "table id not configured")
		return
	}
	resp, err := s.raw.UploadLocalFile(ctx, strings.NewReader(csv), fileName, []sdk.FileMeta{{Filename: fileName, Path: "/"}})
	if err != nil {
		logger.Warn("catalog_sync.upload_failed", "table", tableID, "err", err)
		return
	}
	if len(resp.ConnFileIds) == 0 {
		logger.Warn("catalog_sync.no_conn_file_ids", "table", tableID)
		return
	}

	_, err = s.sdk.ImportLocalFileToTable(ctx, &sdk.TableConfig{
		ConnFileIDs:      resp.ConnFileIds,
		NewTable:         false,
		DatabaseID:       sdk.DatabaseID(s.cfg.DatabaseID),
		TableID:          tableID,
		IsColumnName:     false,
		RowStart:         1,
		Conflict:         1,
		ExistedTable:     columnMapping(columns),
		ExistedTableOpts: sdk.ExistedTableOptions{Method: sdk.ExistedTableOptionAppend},
	})
	if err != nil {
		logger.Warn("catalog_sync.import_failed", "table", tableID, "err", err)
		return
	}
	logger.Info("catalog_sync.ok", "table", tableID, "file", fileName)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// esc quotes a CSV field when it contains a separator, quote or newline.
func esc(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
