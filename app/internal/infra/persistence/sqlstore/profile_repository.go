package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	dom "example.com/mystic-prints/app/internal/domain/user"
)

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, first_name, last_name, role_code, password_hash, created_at, updated_at`

func (r *ProfileRepository) Create(ctx context.Context, p *dom.Profile) (*dom.Profile, error) {
	id, err := r.db.insert(ctx, r.db, `
        INSERT INTO profiles (email, first_name, last_name, role_code, password_hash)
        VALUES (?, ?, ?, ?, ?)
    `, p.Email, p.FirstName, p.LastName, string(p.RoleCode), p.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*dom.Profile, error) {
	row := r.db.queryRow(ctx, r.db, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*dom.Profile, error) {
	row := r.db.queryRow(ctx, r.db, `SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email)
	return scanProfile(row)
}

func (r *ProfileRepository) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	args := []any{}
	if filter.RoleCode != nil {
		query += ` WHERE role_code = ?`
		args = append(args, string(*filter.RoleCode))
	}
	query += ` ORDER BY id`

	rows, err := r.db.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*dom.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) Update(ctx context.Context, p *dom.Profile) (*dom.Profile, error) {
	res, err := r.db.exec(ctx, r.db, `
        UPDATE profiles
        SET email = ?, first_name = ?, last_name = ?, role_code = ?, password_hash = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, p.Email, p.FirstName, p.LastName, string(p.RoleCode), p.PasswordHash, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, dom.ErrUserNotFound
	}
	return r.GetByID(ctx, p.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*dom.Profile, error) {
	var p dom.Profile
	var roleCode string
	if err := s.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &roleCode, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, err
	}
	p.RoleCode = dom.RoleCode(roleCode)
	return &p, nil
}
