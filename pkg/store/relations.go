package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ToggleSaved adds the article to the person's saved list, or removes it
// when already present. Returns whether the article is saved afterwards.
func (s *Store) ToggleSaved(ctx context.Context, articleID, personID int64) (bool, error) {
	res, err := s.sb.Insert("article_saved_by").
		Columns("article_id", "person_id").
		Values(articleID, personID).
		Suffix("ON CONFLICT DO NOTHING").
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("save article: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	_, err = s.sb.Delete("article_saved_by").
		Where(sq.Eq{"article_id": articleID, "person_id": personID}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("unsave article: %w", err)
	}
	return false, nil
}

// MarkViewed records a view. The first view by a person also bumps the
// denormalized counter in the same transaction; repeat views are no-ops.
func (s *Store) MarkViewed(ctx context.Context, articleID, personID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := s.sb.Insert("article_viewed_by").
		Columns("article_id", "person_id").
		Values(articleID, personID).
		Suffix("ON CONFLICT DO NOTHING").
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark viewed: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		_, err = s.sb.Update("articles").
			Set("views", sq.Expr("views + 1")).
			Where(sq.Eq{"identifier": articleID}).
			RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("bump views: %w", err)
		}
	}
	return tx.Commit()
}

// MarkShared records that the person shared the article. Repeats are
// no-ops.
func (s *Store) MarkShared(ctx context.Context, articleID, personID int64) error {
	_, err := s.sb.Insert("article_shared_by").
		Columns("article_id", "person_id").
		Values(articleID, personID).
		Suffix("ON CONFLICT DO NOTHING").
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark shared: %w", err)
	}
	return nil
}
