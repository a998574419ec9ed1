// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package aggregate re-derives the cached novel statistics.

The three derived columns on a novel (word count, total chapters, readers)
must always equal a pure function of the novel's live chapters:

	wordcount     = Σ chapter.wordcount
	totalchapters = count(chapters)
	readers       = Σ chapter.viewcount

The recomputer never patches these values incrementally; it always derives
them from source in one statement, so running it twice is a no-op and any
drift (crash between writes, missed event) self-heals on the next run. The
readers-only variant exists for the hot view path, where a full word-count
scan would be wasted work.
*/
package aggregate

// Totals is the derived statistics triple for a novel.
type Totals struct {
	WordCount     int64 `json:"word_count"`
	TotalChapters int   `json:"total_chapters"`
	Readers       int64 `json:"readers"`
}
