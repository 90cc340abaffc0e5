package repositories

import (
	"context"
	"errors"
	"time"

	"qcdispatch/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// FiringRecord carries everything one firing writes: the materialized tasks
// and the dispatch counter updates. RecordFiring commits them in a single
// transaction so a firing is never half-persisted.
type FiringRecord struct {
	DispatchID    uint
	FiringInstant time.Time
	ExecutedCount int
	Active        bool
	Tasks         []models.DispatchedTask
}

type DispatchRepository interface {
	GetActiveDispatches(ctx context.Context) ([]*models.Dispatch, error)
	GetAllDispatches(ctx context.Context) ([]*models.Dispatch, error)
	GetDispatchByID(ctx context.Context, id uint) (*models.Dispatch, error)
	CreateDispatch(ctx context.Context, dispatch *models.Dispatch) error
	UpdateDispatch(ctx context.Context, dispatch *models.Dispatch) error
	SoftDeleteDispatch(ctx context.Context, id uint) error
	RecordFiring(ctx context.Context, record FiringRecord) (int64, error)
}

type dispatchRepo struct {
	DB *pgxpool.Pool
}

func NewDispatchRepository(db *pgxpool.Pool) DispatchRepository {
	return &dispatchRepo{DB: db}
}

const dispatchSelectColumns = `
	id,
	name,
	COALESCE(description, '') AS description,
	schedule_type,
	specific_days,
	COALESCE(time_of_day, '') AS time_of_day,
	COALESCE(time_zone, '') AS time_zone,
	interval_minutes,
	start_time,
	repeat_count,
	executed_count,
	form_ids,
	target_personnel,
	active,
	deleted,
	last_fired_at,
	COALESCE(created_at, NOW()) AS created_at,
	COALESCE(updated_at, NOW()) AS updated_at`

func scanDispatch(row pgx.Row) (*models.Dispatch, error) {
	var d models.Dispatch
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.ScheduleType,
		&d.SpecificDays,
		&d.TimeOfDay,
		&d.TimeZone,
		&d.IntervalMinutes,
		&d.StartTime,
		&d.RepeatCount,
		&d.ExecutedCount,
		&d.FormIDs,
		&d.TargetPersonnel,
		&d.Active,
		&d.Deleted,
		&d.LastFiredAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dispatchRepo) queryDispatches(ctx context.Context, query string, args ...interface{}) ([]*models.Dispatch, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("queryDispatches", err)
	}
	defer rows.Close()

	var dispatches []*models.Dispatch
	for rows.Next() {
		dispatch, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, dispatch)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("queryDispatches", err)
	}
	return dispatches, nil
}

func (r *dispatchRepo) GetActiveDispatches(ctx context.Context) ([]*models.Dispatch, error) {
	return r.queryDispatches(ctx, `
		SELECT `+dispatchSelectColumns+`
		FROM dispatches
		WHERE active = TRUE AND deleted = FALSE
		ORDER BY id ASC`)
}

func (r *dispatchRepo) GetAllDispatches(ctx context.Context) ([]*models.Dispatch, error) {
	return r.queryDispatches(ctx, `
		SELECT `+dispatchSelectColumns+`
		FROM dispatches
		WHERE deleted = FALSE
		ORDER BY id ASC`)
}

func (r *dispatchRepo) GetDispatchByID(ctx context.Context, id uint) (*models.Dispatch, error) {
	dispatch, err := scanDispatch(r.DB.QueryRow(ctx, `
		SELECT `+dispatchSelectColumns+`
		FROM dispatches
		WHERE id = $1 AND deleted = FALSE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, storageError("GetDispatchByID", err)
	}
	return dispatch, nil
}

func (r *dispatchRepo) CreateDispatch(ctx context.Context, dispatch *models.Dispatch) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO dispatches
			(name, description, schedule_type, specific_days, time_of_day, time_zone,
			 interval_minutes, start_time, repeat_count, form_ids, target_personnel, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		dispatch.Name,
		dispatch.Description,
		dispatch.ScheduleType,
		dispatch.SpecificDays,
		dispatch.TimeOfDay,
		dispatch.TimeZone,
		dispatch.IntervalMinutes,
		dispatch.StartTime,
		dispatch.RepeatCount,
		dispatch.FormIDs,
		dispatch.TargetPersonnel,
		dispatch.Active,
	).Scan(&dispatch.ID, &dispatch.CreatedAt, &dispatch.UpdatedAt)
	if err != nil {
		return storageError("CreateDispatch", err)
	}
	return nil
}

func (r *dispatchRepo) UpdateDispatch(ctx context.Context, dispatch *models.Dispatch) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE dispatches
		SET
			name = $1,
			description = $2,
			schedule_type = $3,
			specific_days = $4,
			time_of_day = $5,
			time_zone = $6,
			interval_minutes = $7,
			start_time = $8,
			repeat_count = $9,
			form_ids = $10,
			target_personnel = $11,
			active = $12,
			updated_at = NOW()
		WHERE id = $13 AND deleted = FALSE`,
		dispatch.Name,
		dispatch.Description,
		dispatch.ScheduleType,
		dispatch.SpecificDays,
		dispatch.TimeOfDay,
		dispatch.TimeZone,
		dispatch.IntervalMinutes,
		dispatch.StartTime,
		dispatch.RepeatCount,
		dispatch.FormIDs,
		dispatch.TargetPersonnel,
		dispatch.Active,
		dispatch.ID,
	)
	if err != nil {
		return storageError("UpdateDispatch", err)
	}
	if tag.RowsAffected() == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteDispatch marks a dispatch deleted and inactive. Rows are never
// hard-deleted while tasks reference them.
func (r *dispatchRepo) SoftDeleteDispatch(ctx context.Context, id uint) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE dispatches
		SET deleted = TRUE, active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storageError("SoftDeleteDispatch", err)
	}
	if tag.RowsAffected() == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *dispatchRepo) RecordFiring(ctx context.Context, record FiringRecord) (int64, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, storageError("RecordFiring", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := insertTasksTx(ctx, tx, record.Tasks)
	if err != nil {
		return 0, storageError("RecordFiring", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE dispatches
		SET
			executed_count = $1,
			active = $2,
			last_fired_at = GREATEST(COALESCE(last_fired_at, $3), $3),
			updated_at = NOW()
		WHERE id = $4`,
		record.ExecutedCount,
		record.Active,
		record.FiringInstant,
		record.DispatchID,
	)
	if err != nil {
		return 0, storageError("RecordFiring", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storageError("RecordFiring", err)
	}
	return inserted, nil
}
