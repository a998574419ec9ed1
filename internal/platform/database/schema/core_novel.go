package schema

// CoreNovelTable represents the 'core.novel' table
type CoreNovelTable struct {
	Table           string
	ID              string
	AuthorID        string
	Title           string
	Slug            string
	Description     string
	Status          string
	WordCount       string
	TotalChapters   string
	Readers         string
	LatestChapterID string
	LastActiveAt    string
	CreatedAt       string
	UpdatedAt       string
	DeletedAt       string
}

// CoreNovel is the schema definition for core.novel
var CoreNovel = CoreNovelTable{
	Table:           "core.novel",
	ID:              "id",
	AuthorID:        "authorid",
	Title:           "title",
	Slug:            "slug",
	Description:     "description",
	Status:          "status",
	WordCount:       "wordcount",
	TotalChapters:   "totalchapters",
	Readers:         "readers",
	LatestChapterID: "latestchapterid",
	LastActiveAt:    "lastactiveat",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	DeletedAt:       "deletedat",
}

func (t CoreNovelTable) Columns() []string {
	return []string{
		t.ID, t.AuthorID, t.Title, t.Slug, t.Description, t.Status,
		t.WordCount, t.TotalChapters, t.Readers, t.LatestChapterID,
		t.LastActiveAt, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
