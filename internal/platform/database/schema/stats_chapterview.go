package schema

// StatsChapterViewTable represents the 'stats.chapterview' table.
//
// One row per (chapter, identity scope) within the dedup window. The row's
// ViewedAt is the authoritative age check; physical purge timing never
// affects counting decisions.
type StatsChapterViewTable struct {
	Table       string
	ID          string
	ChapterID   string
	UserID      string
	ClientToken string
	IPAddress   string
	ViewedAt    string
}

// StatsChapterView is the schema definition for stats.chapterview
var StatsChapterView = StatsChapterViewTable{
	Table:       "stats.chapterview",
	ID:          "id",
	ChapterID:   "chapterid",
	UserID:      "userid",
	ClientToken: "clienttoken",
	IPAddress:   "ipaddress",
	ViewedAt:    "viewedat",
}

func (t StatsChapterViewTable) Columns() []string {
	return []string{t.ID, t.ChapterID, t.UserID, t.ClientToken, t.IPAddress, t.ViewedAt}
}
