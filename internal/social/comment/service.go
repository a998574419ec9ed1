// Copyright (c) 2026 Noveris. All rights reserved.

package comment

import (
	"context"
	"log/slog"

	"github.com/noveris/noveris/internal/core/chapter"
	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/pkg/uuidv7"
)

// # Dependency Contracts

// NovelFinder resolves novels before a thread is written to. Implemented by
// the catalogue repository.
type NovelFinder interface {
	FindByID(context context.Context, id string) (*novel.Novel, error)
}

// ChapterFinder resolves chapters for chapter-scoped comments. Implemented
// by the chapter repository.
type ChapterFinder interface {
	FindByID(context context.Context, id string) (*chapter.Chapter, error)
}

// # Service

// Service orchestrates discussion threads.
type Service struct {
	store    Repository
	novels   NovelFinder
	chapters ChapterFinder
	logger   *slog.Logger
}

// NewService constructs the comment service.
func NewService(store Repository, novels NovelFinder, chapters ChapterFinder, logger *slog.Logger) *Service {
	return &Service{store: store, novels: novels, chapters: chapters, logger: logger}
}

// # Operations

// CreateCommentInput holds a new comment's placement and content.
type CreateCommentInput struct {
	NovelID   string
	ChapterID *string
	Body      string
}

/*
CreateComment validates and persists a new comment.

Description: The novel is resolved first. A chapter-scoped comment also
resolves the chapter and rejects placements where the chapter belongs to a
different novel.

Parameters:
  - context: context.Context
  - input: CreateCommentInput
  - actor: *sec.AuthClaims

Returns:
  - *Comment: Created comment
  - error: Validation, NotFound or storage failures
*/
func (service *Service) CreateComment(context context.Context, input CreateCommentInput, actor *sec.AuthClaims) (*Comment, error) {
	err := validate.New().
		Required(FieldBody, input.Body).
		MaxLen(FieldBody, input.Body, MaxBodyLength).
		Err()
	if err != nil {
		return nil, err
	}

	if _, err := service.novels.FindByID(context, input.NovelID); err != nil {
		return nil, err
	}
	if input.ChapterID != nil {
		ch, err := service.chapters.FindByID(context, *input.ChapterID)
		if err != nil {
			return nil, err
		}
		if ch.NovelID != input.NovelID {
			return nil, apperr.Unprocessable("Chapter does not belong to this novel")
		}
	}

	c := &Comment{
		ID:        uuidv7.New(),
		UserID:    actor.UserID,
		Username:  actor.Username,
		NovelID:   input.NovelID,
		ChapterID: input.ChapterID,
		Body:      input.Body,
	}
	if err := service.store.Create(context, c); err != nil {
		return nil, err
	}

	service.logger.Debug("comment_created",
		slog.String("comment_id", c.ID),
		slog.String("novel_id", c.NovelID),
	)
	return c, nil
}

// ListComments pages through a novel or chapter thread.
func (service *Service) ListComments(context context.Context, novelID string, chapterID *string, limit, offset int) ([]*Comment, int, error) {
	return service.store.ListByNovel(context, novelID, chapterID, limit, offset)
}

/*
UpdateComment replaces a comment's body. Writer only.

Parameters:
  - context: context.Context
  - id: string
  - body: string
  - actor: *sec.AuthClaims

Returns:
  - *Comment: Updated comment
  - error: Forbidden, validation or storage failures
*/
func (service *Service) UpdateComment(context context.Context, id, body string, actor *sec.AuthClaims) (*Comment, error) {
	err := validate.New().
		Required(FieldBody, body).
		MaxLen(FieldBody, body, MaxBodyLength).
		Err()
	if err != nil {
		return nil, err
	}

	c, err := service.store.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != actor.UserID {
		return nil, apperr.Forbidden("Only the writer can edit a comment")
	}

	if err := service.store.UpdateBody(context, id, body); err != nil {
		return nil, err
	}
	c.Body = body
	return c, nil
}

/*
DeleteComment soft-deletes a comment.

Description: Allowed to the comment's writer or any moderator.

Parameters:
  - context: context.Context
  - id: string
  - actor: *sec.AuthClaims

Returns:
  - error: Forbidden, NotFound or storage failures
*/
func (service *Service) DeleteComment(context context.Context, id string, actor *sec.AuthClaims) error {
	c, err := service.store.FindByID(context, id)
	if err != nil {
		return err
	}

	if c.UserID != actor.UserID && !sec.UserRole(actor.Role).AtLeast(sec.RoleModerator) {
		return apperr.Forbidden("You do not have permission to delete this comment")
	}

	if err := service.store.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Info("comment_deleted",
		slog.String("comment_id", id),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}
