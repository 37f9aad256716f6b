package sqlite

import (
	"context"
	"database/sql"

	"github.com/lanternpress/novelsite/internal/admin/domain"
)

type feedbacksRepo struct {
	db *sql.DB
}

func (r *feedbacksRepo) Create(ctx context.Context, f domain.Feedback) (int64, error) {
	status := f.Status
	if status == "" {
		status = domain.FeedbackPending
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feedbacks (name, email, message, rating, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Email, f.Message, f.Rating, string(status), f.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *feedbacksRepo) List(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, message, rating, status, created_at
		FROM feedbacks
		ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		var status string
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Message, &f.Rating, &status, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Status = domain.FeedbackStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *feedbacksRepo) MarkRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feedbacks SET status = ? WHERE id = ? AND status = ?`,
		string(domain.FeedbackRead), id, string(domain.FeedbackPending),
	)
	return err
}

func (r *feedbacksRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feedbacks WHERE id = ?`, id)
	return err
}
