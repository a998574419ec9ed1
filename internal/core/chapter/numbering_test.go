// Copyright (c) 2026 Noveris. All rights reserved.

package chapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noveris/noveris/internal/core/chapter"
)

/*
TestPlanExtraPromotion_CollidingSeq verifies an extra sharing a seq with a
live regular chapter moves past the highest live seq before its flag can be
cleared.
*/
func TestPlanExtraPromotion_CollidingSeq(t *testing.T) {
	live := []*chapter.Chapter{
		{ID: "ch-5", Seq: 5},
		{ID: "ch-side", Seq: 5, IsExtra: true},
	}

	moves := chapter.PlanExtraPromotion(live)

	assert.Equal(t, []chapter.SeqReassignment{{ChapterID: "ch-side", NewSeq: 6}}, moves)
}

/*
TestPlanExtraPromotion_NonCollidingKeepSeq verifies extras on a free seq are
left alone.
*/
func TestPlanExtraPromotion_NonCollidingKeepSeq(t *testing.T) {
	live := []*chapter.Chapter{
		{ID: "ch-1", Seq: 1},
		{ID: "ch-2", Seq: 2},
		{ID: "ch-side", Seq: 3, IsExtra: true},
	}

	assert.Empty(t, chapter.PlanExtraPromotion(live))
}

/*
TestPlanExtraPromotion_KeepsReadingOrder verifies multiple colliding extras
renumber in reading order with no duplicate targets.
*/
func TestPlanExtraPromotion_KeepsReadingOrder(t *testing.T) {
	live := []*chapter.Chapter{
		{ID: "side-b", Seq: 4, IsExtra: true},
		{ID: "ch-2", Seq: 2},
		{ID: "side-a", Seq: 2, IsExtra: true},
		{ID: "ch-4", Seq: 4},
		{ID: "ch-7", Seq: 7},
	}

	moves := chapter.PlanExtraPromotion(live)

	assert.Equal(t, []chapter.SeqReassignment{
		{ChapterID: "side-a", NewSeq: 8},
		{ChapterID: "side-b", NewSeq: 9},
	}, moves)
}

/*
TestPlanExtraPromotion_NoChapters verifies the empty novel yields no moves.
*/
func TestPlanExtraPromotion_NoChapters(t *testing.T) {
	assert.Empty(t, chapter.PlanExtraPromotion(nil))
}
