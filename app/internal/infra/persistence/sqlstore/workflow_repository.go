package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	dom "example.com/mystic-prints/app/internal/domain/workflow"
)

type WorkflowRepository struct {
	db *DB
}

func NewWorkflowRepository(db *DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

const workflowColumns = `id, name, description, status, webhook_url, schedule, last_run, next_run, created_at, updated_at`

func (r *WorkflowRepository) Create(ctx context.Context, w *dom.Workflow) (*dom.Workflow, error) {
	id, err := r.db.insert(ctx, r.db, `
        INSERT INTO workflows (name, description, status, webhook_url, schedule, last_run, next_run)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, w.Name, w.Description, string(w.Status), nullString(w.WebhookURL), nullString(w.Schedule), nullTime(w.LastRun), nullTime(w.NextRun))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *WorkflowRepository) Update(ctx context.Context, w *dom.Workflow) (*dom.Workflow, error) {
	res, err := r.db.exec(ctx, r.db, `
        UPDATE workflows
        SET name = ?, description = ?, status = ?, webhook_url = ?, schedule = ?, last_run = ?, next_run = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, w.Name, w.Description, string(w.Status), nullString(w.WebhookURL), nullString(w.Schedule), nullTime(w.LastRun), nullTime(w.NextRun), w.ID)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, dom.ErrWorkflowNotFound
	}
	return r.GetByID(ctx, w.ID)
}

func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, r.db, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return dom.ErrWorkflowNotFound
	}
	return nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*dom.Workflow, error) {
	row := r.db.queryRow(ctx, r.db, `SELECT `+workflowColumns+` FROM workflows WHERE id = ?`, id)
	return scanWorkflow(row)
}

func (r *WorkflowRepository) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows`
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*dom.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

func scanWorkflow(s scanner) (*dom.Workflow, error) {
	var w dom.Workflow
	var status string
	var webhookURL, schedule sql.NullString
	var lastRun, nextRun sql.NullTime
	if err := s.Scan(&w.ID, &w.Name, &w.Description, &status, &webhookURL, &schedule, &lastRun, &nextRun, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrWorkflowNotFound
		}
		return nil, err
	}
	w.Status = dom.Status(status)
	w.WebhookURL = webhookURL.String
	w.Schedule = schedule.String
	w.LastRun = timePtr(lastRun)
	w.NextRun = timePtr(nextRun)
	return &w, nil
}
