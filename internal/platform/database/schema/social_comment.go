package schema

// SocialCommentTable represents the 'social.comment' table
type SocialCommentTable struct {
	Table     string
	ID        string
	UserID    string
	NovelID   string
	ChapterID string
	Body      string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// SocialComment is the schema definition for social.comment
var SocialComment = SocialCommentTable{
	Table:     "social.comment",
	ID:        "id",
	UserID:    "userid",
	NovelID:   "novelid",
	ChapterID: "chapterid",
	Body:      "body",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}

func (t SocialCommentTable) Columns() []string {
	return []string{t.ID, t.UserID, t.NovelID, t.ChapterID, t.Body, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
