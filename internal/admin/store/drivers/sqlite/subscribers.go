package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
)

type subscribersRepo struct {
	db *sql.DB
}

func (r *subscribersRepo) Create(ctx context.Context, email string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletter_subscribers (email, date_subscribed) VALUES (?, ?)`,
		email, at,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *subscribersRepo) List(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, date_subscribed
		FROM newsletter_subscribers
		ORDER BY date_subscribed DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.DateSubscribed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *subscribersRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = ?`, id)
	return err
}
