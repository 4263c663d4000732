package main

import (
	"context"
	"fmt"
	"strings"

	"timesheet/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

type catalogTable struct {
	name    string
	comment string
	columns []sdk.Column
}

// catalogTables mirrors the column order the server's catalog sync writes.
var catalogTables = []catalogTable{
	{"team_members", "timesheet members", []sdk.Column{
		{Name: "id", Type: "INT", IsPk: true, Comment: "member id"},
		{Name: "email", Type: "VARCHAR(255)", Comment: "login email"},
		{Name: "full_name", Type: "VARCHAR(255)", Comment: "display name"},
		{Name: "team_id", Type: "INT", Comment: "owning team"},
		{Name: "manager_id", Type: "INT", Comment: "team_members.id of the manager"},
		{Name: "status", Type: "VARCHAR(20)", Comment: "Active or Inactive"},
		{Name: "role", Type: "VARCHAR(20)", Comment: "user, manager or admin"},
	}},
	{"tasks", "task identities", []sdk.Column{
		{Name: "id", Type: "INT", IsPk: true, Comment: "task id"},
		{Name: "type", Type: "VARCHAR(20)", Comment: "Work or Meeting"},
		{Name: "description", Type: "VARCHAR(255)", Comment: "free text task name"},
		{Name: "status", Type: "VARCHAR(50)", Comment: "To Start, In Progress, Ongoing, On Hold, Done"},
		{Name: "group_activity_id", Type: "INT", Comment: "project work stream"},
		{Name: "function_activity_id", Type: "INT", Comment: "team function"},
	}},
	{"time_entries", "logged hours", []sdk.Column{
		{Name: "id", Type: "INT", IsPk: true, Comment: "entry id"},
		{Name: "team_member_id", Type: "INT", Comment: "team_members.id"},
		{Name: "task_id", Type: "INT", Comment: "tasks.id"},
		{Name: "date_of_work", Type: "DATE", Comment: "week-ending Thursday for form submissions"},
		{Name: "hours", Type: "DOUBLE", Comment: "hours for the week"},
		{Name: "status", Type: "VARCHAR(20)", Comment: "draft, submitted or approved"},
		{Name: "daily_mode", Type: "BOOLEAN", Comment: "hours were entered per day"},
		{Name: "sun", Type: "DOUBLE", Comment: "Sunday hours"},
		{Name: "mon", Type: "DOUBLE", Comment: "Monday hours"},
		{Name: "tue", Type: "DOUBLE", Comment: "Tuesday hours"},
		{Name: "wed", Type: "DOUBLE", Comment: "Wednesday hours"},
		{Name: "thu", Type: "DOUBLE", Comment: "Thursday hours"},
		{Name: "submission_id", Type: "VARCHAR(36)", Comment: "groups rows written by one submit"},
		{Name: "notes", Type: "TEXT", Comment: "free text notes"},
		{Name: "created_at", Type: "DATETIME", Comment: "capture timestamp"},
	}},
}

func initCatalog(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	dbResp, err := client.CreateDatabase(ctx, &sdk.DatabaseCreateRequest{
		CatalogID:    catalogID,
		DatabaseName: dbName,
		Comment:      "timesheet analytics",
	})
	var dbID sdk.DatabaseID
	switch {
	case err == nil:
		dbID = dbResp.DatabaseID
		logger.Info("catalog: database created", "id", dbID)
	case isDuplicate(err):
		logger.Info("catalog: database already exists, discovering ID", "name", dbName)
		if dbID, err = discoverDatabaseID(ctx, client, catalogID, dbName); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("create database: %w", err)
	}

	for _, t := range catalogTables {
		resp, err := client.CreateTable(ctx, &sdk.TableCreateRequest{
			DatabaseID: dbID,
			Name:       t.name,
			Columns:    t.columns,
			Comment:    t.comment,
		})
		if err != nil {
			if isDuplicate(err) {
				logger.Info("catalog: table already exists, skipping", "name", t.name)
				continue
			}
			return 0, fmt.Errorf("create table %s: %w", t.name, err)
		}
		logger.Info("catalog: table created", "name", t.name, "id", resp.TableID)
	}

	return dbID, nil
}

func discoverDatabaseID(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	resp, err := client.ListDatabases(ctx, &sdk.DatabaseListRequest{CatalogID: catalogID})
	if err != nil {
		return 0, fmt.Errorf("list databases: %w", err)
	}
	for _, db := range resp.List {
		if db.DatabaseName == dbName {
			logger.Info("catalog: database discovered", "id", db.DatabaseID)
			return db.DatabaseID, nil
		}
	}
	return 0, fmt.Errorf("database %s not found in catalog %d", dbName, catalogID)
}

func isDuplicate(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "already exist") || strings.Contains(s, "conflict")
}
