package schema

// LibraryFavoriteTable represents the 'library.favorite' table
type LibraryFavoriteTable struct {
	Table     string
	UserID    string
	NovelID   string
	FolderID  string
	CreatedAt string
}

// LibraryFavorite is the schema definition for library.favorite
var LibraryFavorite = LibraryFavoriteTable{
	Table:     "library.favorite",
	UserID:    "userid",
	NovelID:   "novelid",
	FolderID:  "folderid",
	CreatedAt: "createdat",
}

func (t LibraryFavoriteTable) Columns() []string {
	return []string{t.UserID, t.NovelID, t.FolderID, t.CreatedAt}
}
