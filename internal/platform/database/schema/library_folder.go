package schema

// LibraryFolderTable represents the 'library.folder' table
type LibraryFolderTable struct {
	Table     string
	ID        string
	UserID    string
	Name      string
	CreatedAt string
}

// LibraryFolder is the schema definition for library.folder
var LibraryFolder = LibraryFolderTable{
	Table:     "library.folder",
	ID:        "id",
	UserID:    "userid",
	Name:      "name",
	CreatedAt: "createdat",
}
