package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	dom "example.com/mystic-prints/app/internal/domain/artsource"
)

type ArtSourceRepository struct {
	db *DB
}

func NewArtSourceRepository(db *DB) *ArtSourceRepository {
	return &ArtSourceRepository{db: db}
}

const artSourceColumns = `id, name, url, active, created_at, updated_at`

func (r *ArtSourceRepository) Create(ctx context.Context, s *dom.Source) (*dom.Source, error) {
	id, err := r.db.insert(ctx, r.db, `
        INSERT INTO art_sources (name, url, active)
        VALUES (?, ?, ?)
    `, s.Name, s.URL, s.Active)
	if err != nil {
		if isDuplicate(err) {
			return nil, dom.ErrURLExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ArtSourceRepository) Update(ctx context.Context, s *dom.Source) (*dom.Source, error) {
	res, err := r.db.exec(ctx, r.db, `
        UPDATE art_sources SET name = ?, url = ?, active = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, s.Name, s.URL, s.Active, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return nil, dom.ErrURLExists
		}
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, dom.ErrSourceNotFound
	}
	return r.GetByID(ctx, s.ID)
}

func (r *ArtSourceRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, r.db, `DELETE FROM art_sources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return dom.ErrSourceNotFound
	}
	return nil
}

func (r *ArtSourceRepository) GetByID(ctx context.Context, id int64) (*dom.Source, error) {
	row := r.db.queryRow(ctx, r.db, `SELECT `+artSourceColumns+` FROM art_sources WHERE id = ?`, id)
	return scanArtSource(row)
}

func (r *ArtSourceRepository) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Source, error) {
	query := `SELECT ` + artSourceColumns + ` FROM art_sources`
	args := []any{}
	if filter.OnlyActive {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*dom.Source
	for rows.Next() {
		s, err := scanArtSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func scanArtSource(s scanner) (*dom.Source, error) {
	var src dom.Source
	if err := s.Scan(&src.ID, &src.Name, &src.URL, &src.Active, &src.CreatedAt, &src.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrSourceNotFound
		}
		return nil, err
	}
	return &src, nil
}
