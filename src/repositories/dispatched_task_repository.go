package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/search"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Pagination struct {
	Limit    int
	Offset   int
	SortBy   string
	SortDesc bool
}

type DispatchedTaskRepository interface {
	BulkInsertTasks(ctx context.Context, tasks []models.DispatchedTask) (int64, error)
	TasksExistForFiring(ctx context.Context, dispatchID uint, firingInstant time.Time) (bool, error)
	SearchTasks(ctx context.Context, predicate search.Predicate, page Pagination) ([]models.DispatchedTask, error)
	CountTasks(ctx context.Context, predicate search.Predicate) (int, error)
}

type dispatchedTaskRepo struct {
	DB *pgxpool.Pool
}

func NewDispatchedTaskRepository(db *pgxpool.Pool) DispatchedTaskRepository {
	return &dispatchedTaskRepo{DB: db}
}

const taskSelectColumns = `
	t.id,
	t.firing_key,
	t.dispatch_id,
	t.personnel_id,
	t.form_id,
	t.name,
	t.description,
	t.dispatch_time,
	t.due_date,
	t.status,
	t.is_overdue,
	COALESCE(t.notes, '') AS notes,
	t.created_at,
	COALESCE(t.created_by, '') AS created_by,
	t.updated_at,
	COALESCE(t.updated_by, '') AS updated_by`

func scanTask(row pgx.Row) (*models.DispatchedTask, error) {
	var task models.DispatchedTask
	err := row.Scan(
		&task.ID,
		&task.FiringKey,
		&task.DispatchID,
		&task.PersonnelID,
		&task.FormID,
		&task.Name,
		&task.Description,
		&task.DispatchTime,
		&task.DueDate,
		&task.Status,
		&task.IsOverdue,
		&task.Notes,
		&task.CreatedAt,
		&task.CreatedBy,
		&task.UpdatedAt,
		&task.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *dispatchedTaskRepo) BulkInsertTasks(ctx context.Context, tasks []models.DispatchedTask) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	// Start a transaction
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, storageError("BulkInsertTasks", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := insertTasksTx(ctx, tx, tasks)
	if err != nil {
		return 0, storageError("BulkInsertTasks", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storageError("BulkInsertTasks", err)
	}
	return inserted, nil
}

// insertTasksTx builds one multi-row insert with conflict handling on the
// firing key. Re-inserting an already materialized firing inserts nothing.
func insertTasksTx(ctx context.Context, tx pgx.Tx, tasks []models.DispatchedTask) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO dispatched_tasks
			(firing_key, dispatch_id, personnel_id, form_id, name, description,
			 dispatch_time, due_date, status, is_overdue, notes, created_by, updated_by)
		VALUES `

	const columns = 13
	args := make([]interface{}, 0, len(tasks)*columns)
	valueStrings := make([]string, 0, len(tasks))

	for i, task := range tasks {
		placeholders := make([]string, columns)
		for j := 0; j < columns; j++ {
			placeholders[j] = fmt.Sprintf("$%d", i*columns+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			task.FiringKey,
			task.DispatchID,
			task.PersonnelID,
			task.FormID,
			task.Name,
			task.Description,
			task.DispatchTime,
			task.DueDate,
			task.Status,
			task.IsOverdue,
			task.Notes,
			task.CreatedBy,
			task.UpdatedBy,
		)
	}

	query += strings.Join(valueStrings, ",")
	query += " ON CONFLICT (firing_key) DO NOTHING"

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *dispatchedTaskRepo) TasksExistForFiring(ctx context.Context, dispatchID uint, firingInstant time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM dispatched_tasks
			WHERE dispatch_id = $1 AND dispatch_time = $2
		)`, dispatchID, firingInstant).Scan(&exists)
	if err != nil {
		return false, storageError("TasksExistForFiring", err)
	}
	return exists, nil
}

func (r *dispatchedTaskRepo) SearchTasks(ctx context.Context, predicate search.Predicate, page Pagination) ([]models.DispatchedTask, error) {
	where, args, err := RenderPredicate(predicate)
	if err != nil {
		return nil, err
	}

	orderBy := "t.dispatch_time"
	if column, ok := sortColumns[page.SortBy]; ok {
		orderBy = column
	}
	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM dispatched_tasks t
		LEFT JOIN personnel p ON p.id = t.personnel_id
		WHERE %s
		ORDER BY %s %s
		LIMIT %d OFFSET %d`,
		taskSelectColumns, where, orderBy, direction, limit, page.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("SearchTasks", err)
	}
	defer rows.Close()

	var tasks []models.DispatchedTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("SearchTasks", err)
	}
	return tasks, nil
}

func (r *dispatchedTaskRepo) CountTasks(ctx context.Context, predicate search.Predicate) (int, error) {
	where, args, err := RenderPredicate(predicate)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM dispatched_tasks t
		LEFT JOIN personnel p ON p.id = t.personnel_id
		WHERE %s`, where)

	var count int
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageError("CountTasks", err)
	}
	return count, nil
}
