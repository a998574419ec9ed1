package schema

// LibraryHistoryTable represents the 'library.history' table (last chapter read per novel)
type LibraryHistoryTable struct {
	Table     string
	UserID    string
	NovelID   string
	ChapterID string
	UpdatedAt string
}

// LibraryHistory is the schema definition for library.history
var LibraryHistory = LibraryHistoryTable{
	Table:     "library.history",
	UserID:    "userid",
	NovelID:   "novelid",
	ChapterID: "chapterid",
	UpdatedAt: "updatedat",
}

func (t LibraryHistoryTable) Columns() []string {
	return []string{t.UserID, t.NovelID, t.ChapterID, t.UpdatedAt}
}
