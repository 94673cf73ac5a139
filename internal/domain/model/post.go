package model

import (
	"time"
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Tags      *string   `json:"tags"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorUsername is resolved per read and is nil once the author is gone.
	AuthorUsername *string `json:"-"`
}

// PostView is what GET endpoints return.
type PostView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Tags      *string   `json:"tags"`
	Author    *string   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Post) View() PostView {
	return PostView{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Tags:      p.Tags,
		Author:    p.AuthorUsername,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// PostUpdate carries the fields a PATCH may change; nil means "leave as is".
type PostUpdate struct {
	Title   *string
	Content *string
	Tags    *string
}

func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil
}

// Apply copies the set fields onto p and stamps UpdatedAt.
func (u PostUpdate) Apply(p *Post, slugOf func(string) string, now time.Time) {
	if u.Title != nil {
		p.Title = *u.Title
		p.Slug = slugOf(p.Title)
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		tags := *u.Tags
		p.Tags = &tags
	}
	p.UpdatedAt = now
}
