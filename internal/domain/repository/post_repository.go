package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}

type pgPostRepository struct {
	db *sql.DB
}

func NewPgPostRepository(db *sql.DB) PostRepository {
	return &pgPostRepository{db: db}
}

// The author is joined, not constrained: a post outlives its author and then
// reads back with a NULL username.
const selectPost = `SELECT p.id, p.title, p.slug, p.content, p.tags, p.author, u.username, p.created_at, p.updated_at
	FROM blog_posts p
	LEFT JOIN users u ON u.id = p.author`

func (r *pgPostRepository) Create(ctx context.Context, p *model.Post) error {
	query := `INSERT INTO blog_posts (title, slug, content, tags, author, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query, p.Title, p.Slug, p.Content, p.Tags, p.AuthorID, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPostRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	p := &model.Post{}
	err := r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = $1`, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Tags, &p.AuthorID, &p.AuthorUsername, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPostRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgPostRepository) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPost+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.List: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Tags, &p.AuthorID, &p.AuthorUsername, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgPostRepository.List scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPostRepository.List rows: %w", err)
	}
	return posts, nil
}

// Update never changes the author.
func (r *pgPostRepository) Update(ctx context.Context, p *model.Post) error {
	query := `UPDATE blog_posts SET title = $1, slug = $2, content = $3, tags = $4, updated_at = $5
	          WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Slug, p.Content, p.Tags, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Update: %w", err)
	}
	return expectAffected(res, "pgPostRepository.Update")
}

func (r *pgPostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete: %w", err)
	}
	return expectAffected(res, "pgPostRepository.Delete")
}
