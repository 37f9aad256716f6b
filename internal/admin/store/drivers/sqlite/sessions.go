package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, token_hash, user_id, username, logged_in, login_time,
			last_activity, fingerprint, csrf_token, request_count, last_request,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		s.ID, s.TokenHash, s.UserID, s.Username, s.LoggedIn, nullTime(s.LoginTime),
		s.LastActivity, s.Fingerprint, s.CSRFToken, s.RequestCount, nullTime(s.LastRequest),
	)
	return err
}

func (r *sessionsRepo) GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, user_id, username, logged_in, login_time,
		       last_activity, fingerprint, csrf_token, request_count, last_request,
		       created_at, updated_at
		FROM sessions
		WHERE token_hash = ?`,
		tokenHash,
	)
	return scanSession(row)
}

func (r *sessionsRepo) Update(ctx context.Context, s domain.Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET token_hash = ?, user_id = ?, username = ?, logged_in = ?,
		    login_time = ?, last_activity = ?, fingerprint = ?, csrf_token = ?,
		    request_count = ?, last_request = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.TokenHash, s.UserID, s.Username, s.LoggedIn,
		nullTime(s.LoginTime), s.LastActivity, s.Fingerprint, s.CSRFToken,
		s.RequestCount, nullTime(s.LastRequest), s.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_activity < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSession(row *sql.Row) (domain.Session, error) {
	var s domain.Session
	var loginTime, lastRequest sql.NullTime
	err := row.Scan(
		&s.ID, &s.TokenHash, &s.UserID, &s.Username, &s.LoggedIn, &loginTime,
		&s.LastActivity, &s.Fingerprint, &s.CSRFToken, &s.RequestCount, &lastRequest,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	if loginTime.Valid {
		s.LoginTime = loginTime.Time
	}
	if lastRequest.Valid {
		s.LastRequest = lastRequest.Time
	}
	return s, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
