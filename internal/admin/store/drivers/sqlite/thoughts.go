package sqlite

import (
	"context"
	"database/sql"

	"github.com/lanternpress/novelsite/internal/admin/domain"
)

type thoughtsRepo struct {
	db *sql.DB
}

func (r *thoughtsRepo) Create(ctx context.Context, t domain.Thought) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO thoughts (thought_date, thought_text) VALUES (?, ?)`,
		t.ThoughtDate, t.ThoughtText,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *thoughtsRepo) List(ctx context.Context) ([]domain.Thought, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, thought_date, thought_text
		FROM thoughts
		ORDER BY thought_date DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Thought
	for rows.Next() {
		var t domain.Thought
		if err := rows.Scan(&t.ID, &t.ThoughtDate, &t.ThoughtText); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *thoughtsRepo) UpdateText(ctx context.Context, id int64, text string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE thoughts SET thought_text = ? WHERE id = ?`, text, id)
	return err
}

func (r *thoughtsRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM thoughts WHERE id = ?`, id)
	return err
}
