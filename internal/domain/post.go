package domain

import "time"

// PostStatus represents a post's publication state.
type PostStatus string

// Post statuses.
const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Reaction is a single emoji-style reaction from a user.
type Reaction struct {
	User      string    `json:"user"`
	Type      string    `json:"type"` // like, love, laugh, ...
	CreatedAt time.Time `json:"created_at"`
}

// Reply is a nested response to a comment. Replies carry their own reactions
// but cannot be replied to further; threads are two levels deep.
type Reply struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"` // Weak reference.
	Content   string     `json:"content" validate:"required,max=2000"`
	Reactions []Reaction `json:"reactions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Comment is a top-level comment on a post, owned by the post.
type Comment struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"` // Weak reference.
	Content   string     `json:"content" validate:"required,max=2000"`
	Replies   []Reply    `json:"replies,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PostStats holds the denormalized counters for a post.
//
// ReactionsCount and CommentsCount tally only the top-level collections;
// reactions on comments and replies are deliberately excluded. ReadTime is
// ceil(word count / 200) over the plain-text content.
type PostStats struct {
	ReactionsCount int `json:"reactions_count"`
	CommentsCount  int `json:"comments_count"`
	ReadTime       int `json:"read_time"` // Minutes.
	ViewCount      int `json:"view_count"`
}

// Post is an article or blog entry.
type Post struct {
	Base
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Slug        string     `json:"slug"` // Unique; auto-generated from Title, timestamp-suffixed on collision.
	Content     string     `json:"content" validate:"required"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Author      string     `json:"author" validate:"required"` // Weak reference.
	Category    string     `json:"category,omitempty"`         // Weak reference.
	Tags        []string   `json:"tags,omitempty"`             // Weak references (tag IDs).
	CoverURL    string     `json:"cover_url,omitempty" validate:"omitempty,url"`
	Status      PostStatus `json:"status" validate:"required,oneof=draft published archived"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
	Reactions   []Reaction `json:"reactions,omitempty"`
	Stats       PostStats  `json:"stats"`
}

// Recalculate overwrites the derived stat fields from the current nested
// collections. words is the plain-text word count of Content; the caller
// computes it so this stays a pure function of its inputs. Total over any
// well-formed post: empty collections yield zero counts.
func (p *Post) Recalculate(words int) {
	p.Stats.CommentsCount = len(p.Comments)
	p.Stats.ReactionsCount = len(p.Reactions)

	if words == 0 {
		p.Stats.ReadTime = 0
	} else {
		p.Stats.ReadTime = (words + 199) / 200
	}
}

// Comment finds a top-level comment by ID, or nil.
func (p *Post) Comment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment deletes a top-level comment by ID.
// Returns true if a comment was removed.
func (p *Post) RemoveComment(id string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// React adds a top-level reaction, replacing any existing reaction from the
// same user. Returns true if the reaction set changed.
func (p *Post) React(user, reactionType string, now time.Time) bool {
	for i := range p.Reactions {
		if p.Reactions[i].User == user {
			if p.Reactions[i].Type == reactionType {
				return false
			}
			p.Reactions[i].Type = reactionType
			p.Reactions[i].CreatedAt = now
			return true
		}
	}
	p.Reactions = append(p.Reactions, Reaction{User: user, Type: reactionType, CreatedAt: now})
	return true
}

// Unreact removes the user's top-level reaction.
// Returns true if a reaction was removed.
func (p *Post) Unreact(user string) bool {
	for i := range p.Reactions {
		if p.Reactions[i].User == user {
			p.Reactions = append(p.Reactions[:i], p.Reactions[i+1:]...)
			return true
		}
	}
	return false
}

// IsPublished reports whether the post is visible to readers.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
