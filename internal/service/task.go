package service

import (
	"context"
	"errors"
	"fmt"

	"timesheet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskIdentity is the tuple a Task row is unique on, with activities given by name.
type TaskIdentity struct {
	Type             model.TaskType
	Description      string
	GroupActivity    string
	FunctionActivity string
	Status           model.TaskStatus
}

// ResolveTask returns the id of the Task matching identity, inserting it on
// first use. Strings are compared exactly; callers trim them.
func ResolveTask(ctx context.Context, db *gorm.DB, identity TaskIdentity) (int, error) {
	t, _, err := resolveTask(ctx, db, identity)
	return t.ID, err
}

// resolveTask also reports whether this call inserted the row.
func resolveTask(ctx context.Context, db *gorm.DB, identity TaskIdentity) (model.Task, bool, error) {
	gaID, err := groupActivityID(ctx, db, identity.GroupActivity)
	if err != nil {
		return model.Task{}, false, err
	}
	faID, err := functionActivityID(ctx, db, identity.FunctionActivity)
	if err != nil {
		return model.Task{}, false, err
	}
	return findOrCreateTask(ctx, db, model.Task{
		Type:               identity.Type,
		Description:        identity.Description,
		Status:             identity.Status,
		GroupActivityID:    gaID,
		FunctionActivityID: faID,
	})
}

func groupActivityID(ctx context.Context, db *gorm.DB, name string) (int, error) {
	var ga model.GroupActivity
	err := db.WithContext(ctx).Where("name = ?", name).Order("id").First(&ga).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, notFoundf("group activity %q not found", name)
	}
	if err != nil {
		return 0, fmt.Errorf("query group activity: %w", err)
	}
	return ga.ID, nil
}

func functionActivityID(ctx context.Context, db *gorm.DB, name string) (int, error) {
	var fa model.FunctionActivity
	err := db.WithContext(ctx).Where("name = ?", name).Order("id").First(&fa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, notFoundf("function activity %q not found", name)
	}
	if err != nil {
		return 0, fmt.Errorf("query function activity: %w", err)
	}
	return fa.ID, nil
}

// findOrCreateTask relies on the uk_task_identity index: when two writers
// insert the same new identity, the loser's insert is a no-op and both read
// back the single row. The bool is true only for the writer that inserted.
func findOrCreateTask(ctx context.Context, db *gorm.DB, t model.Task) (model.Task, bool, error) {
	found, ok, err := lookupTask(ctx, db, t)
	if err != nil || ok {
		return found, false, err
	}
	return insertTask(ctx, db, t)
}

func insertTask(ctx context.Context, db *gorm.DB, t model.Task) (model.Task, bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&t)
	if res.Error != nil {
		return model.Task{}, false, fmt.Errorf("insert task: %w", res.Error)
	}
	if res.RowsAffected == 1 && t.ID != 0 {
		return t, true, nil
	}

	// The conflicting row may be newer than the caller's snapshot.
	found, ok, err := lookupTask(ctx, currentRead(db), t)
	if err != nil {
		return model.Task{}, false, err
	}
	if !ok {
		return model.Task{}, false, fmt.Errorf("task %q vanished after conflicting insert", t.Description)
	}
	return found, false, nil
}

// currentRead makes the next query read the latest committed rows instead of
// the transaction snapshot. MySQL under REPEATABLE READ needs a locking read
// for that; SQLite has no row locks and a single writer.
func currentRead(db *gorm.DB) *gorm.DB {
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		return db.Clauses(clause.Locking{Strength: "SHARE"})
	}
	return db
}

func lookupTask(ctx context.Context, db *gorm.DB, t model.Task) (model.Task, bool, error) {
	var found []model.Task
	err := db.WithContext(ctx).
		Where("type = ? AND description = ? AND group_activity_id = ? AND function_activity_id = ? AND status = ?",
			t.Type, t.Description, t.GroupActivityID, t.FunctionActivityID, t.Status).
		Order("id").Limit(1).Find(&found).Error
	if err != nil {
		return model.Task{}, false, fmt.Errorf("query task: %w", err)
	}
	if len(found) == 0 {
		return model.Task{}, false, nil
	}
	return found[0], true, nil
}
