package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table     string
	ID        string
	NovelID   string
	Seq       string
	IsExtra   string
	Title     string
	Body      string
	WordCount string
	ViewCount string
	IsPremium string
	Price     string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:     "core.chapter",
	ID:        "id",
	NovelID:   "novelid",
	Seq:       "seq",
	IsExtra:   "isextra",
	Title:     "title",
	Body:      "body",
	WordCount: "wordcount",
	ViewCount: "viewcount",
	IsPremium: "ispremium",
	Price:     "price",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.NovelID, t.Seq, t.IsExtra, t.Title, t.Body, t.WordCount,
		t.ViewCount, t.IsPremium, t.Price, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
