// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package chapter manages the serialised content of the Noveris catalogue.

A chapter is the unit of reading: it carries the full body text, a position
inside its novel (sequence number plus an extra/side-story flag), and the
per-chapter view counter maintained by the view counting subsystem.

Core Responsibility:

  - Content: Stores chapter bodies and derives word counts from them.
  - Ordering: Enforces the (novel, seq, extra) uniqueness rule among live rows.
  - Metrics: Owns the viewcount column, mutated only through atomic increments.
*/
package chapter

import (
	"sort"
	"time"
)

// # Core Entities

// Chapter represents a single released instalment of a novel.
type Chapter struct {
	ID      string `json:"id"`
	NovelID string `json:"novel_id"`

	// Seq is the reading-order position. Extras (side stories) share the
	// numbering space but are flagged separately; (NovelID, Seq, IsExtra)
	// is unique among live chapters.
	Seq     int  `json:"seq"`
	IsExtra bool `json:"is_extra"`

	Title string `json:"title"`
	Body  string `json:"body,omitempty"` // Omitted from list responses

	// WordCount is derived from Body on every write; never client-supplied.
	WordCount int `json:"word_count"`

	// ViewCount is owned by the view counting subsystem.
	ViewCount int64 `json:"view_count"`

	IsPremium bool `json:"is_premium"`
	Price     int  `json:"price"` // Coin price; meaningful only when IsPremium

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// # Filtering

// ChapterFilter holds the parameters for a chapter list query.
type ChapterFilter struct {
	ExtrasOnly bool   `json:"extras_only,omitempty"`
	SortDir    string `json:"sort_dir,omitempty"` // "asc" (default) or "desc"
}

// # Numbering

// SeqReassignment pairs a chapter ID with its replacement sequence number.
type SeqReassignment struct {
	ChapterID string
	NewSeq    int
}

/*
PlanExtraPromotion computes the sequence moves required before a novel's
extra flags can be cleared.

Description: Clearing an extra flag re-files the chapter under (novel, seq,
regular), which collides when a live regular chapter already holds that seq.
Colliding extras are renumbered past the highest live seq in reading order so
the flag clear never violates the numbering rule. Non-colliding extras keep
their seq.

Parameters:
  - chapters: []*Chapter (the novel's live chapters, any order)

Returns:
  - []SeqReassignment: Moves to apply before the flag clear, possibly empty
*/
func PlanExtraPromotion(chapters []*Chapter) []SeqReassignment {
	regular := make(map[int]bool)
	maxSeq := 0
	for _, ch := range chapters {
		if !ch.IsExtra {
			regular[ch.Seq] = true
		}
		if ch.Seq > maxSeq {
			maxSeq = ch.Seq
		}
	}

	var colliding []*Chapter
	for _, ch := range chapters {
		if ch.IsExtra && regular[ch.Seq] {
			colliding = append(colliding, ch)
		}
	}
	sort.Slice(colliding, func(i, j int) bool { return colliding[i].Seq < colliding[j].Seq })

	moves := make([]SeqReassignment, 0, len(colliding))
	for i, ch := range colliding {
		moves = append(moves, SeqReassignment{ChapterID: ch.ID, NewSeq: maxSeq + i + 1})
	}
	return moves
}

// # Field Identifiers

const (
	FieldNovelID = "novel_id"
	FieldSeq     = "seq"
	FieldTitle   = "title"
	FieldBody    = "body"
	FieldPrice   = "price"
)
