// Copyright (c) 2026 Noveris. All rights reserved.

package chapter

import (
	"context"
	"log/slog"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/pkg/uuidv7"
	"github.com/noveris/noveris/pkg/wordcount"
)

const (
	// MaxChapterTitleLen bounds chapter titles.
	MaxChapterTitleLen = 255
)

// # Service Layer

// Service orchestrates the business logic for chapters.
type Service struct {
	chapterRepo Repository
	novels      NovelDirectory
	coordinator LifecycleCoordinator
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(chapterRepo Repository, novels NovelDirectory, coordinator LifecycleCoordinator, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		novels:      novels,
		coordinator: coordinator,
		logger:      logger,
	}
}

// # Read Operations

/*
ListChapters retrieves serialisation metadata for a novel.

Parameters:
  - context: context.Context
  - novelID: string (Owner ID)
  - f: ChapterFilter (Extras and sorting options)
  - limit: int
  - offset: int

Returns:
  - []*Chapter: Metadata for matched chapters (bodies excluded)
  - int: Total chapter count for the given novel/filter
  - error: Storage or execution errors
*/
func (service *Service) ListChapters(context context.Context, novelID string, f ChapterFilter, limit, offset int) ([]*Chapter, int, error) {
	return service.chapterRepo.ListByNovel(context, novelID, f, limit, offset)
}

/*
GetChapter retrieves a single chapter by its ID, body included.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Chapter: The hydrated domain entity
  - error: apperr.NotFound if not found
*/
func (service *Service) GetChapter(context context.Context, id string) (*Chapter, error) {
	return service.chapterRepo.FindByID(context, id)
}

// # Write Operations

/*
CreateChapter publishes a new instalment for a novel.

Description: Validates ownership and content, derives the word count from
the body, persists the row, and notifies the lifecycle coordinator so the
novel's latest pointer and derived statistics follow the release.

Parameters:
  - context: context.Context
  - c: *Chapter (The new chapter data)
  - actor: *sec.AuthClaims (Authenticated caller)

Returns:
  - error: Ownership, validation, sequence conflict, or persistence errors
*/
func (service *Service) CreateChapter(context context.Context, c *Chapter, actor *sec.AuthClaims) error {

	if err := service.requireNovelOwnership(context, c.NovelID, actor); err != nil {
		return err
	}

	// Identity & derived field generation
	if c.ID == "" {
		c.ID = uuidv7.New()
	}
	c.WordCount = wordcount.Count(c.Body)

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldNovelID, c.NovelID)
	validator.MaxLen(FieldTitle, c.Title, MaxChapterTitleLen)
	validator.NonNegative(FieldSeq, c.Seq)
	validator.NonNegative(FieldPrice, c.Price)
	validator.Custom(FieldBody, c.Body == "", "Chapter body cannot be empty")

	if err := validator.Err(); err != nil {
		return err
	}

	// Storage persistence
	if err := service.chapterRepo.Create(context, c); err != nil {
		return err
	}

	// Derived novel state follows the release; the coordinator absorbs
	// its own failures.
	service.coordinator.OnChapterCreated(context, c.NovelID)

	service.logger.Info("chapter_created",
		slog.String("chapter_id", c.ID),
		slog.String("novel_id", c.NovelID),
		slog.Int("seq", c.Seq),
		slog.Bool("is_extra", c.IsExtra),
	)

	return nil
}

// UpdateChapterInput carries the optional changes for a chapter.
type UpdateChapterInput struct {
	Seq       *int    `json:"seq,omitempty"`
	IsExtra   *bool   `json:"is_extra,omitempty"`
	Title     *string `json:"title,omitempty"`
	Body      *string `json:"body,omitempty"`
	IsPremium *bool   `json:"is_premium,omitempty"`
	Price     *int    `json:"price,omitempty"`
}

/*
UpdateChapter applies partial changes to an existing chapter.

Description: A body change recomputes the word count synchronously before
the write. The lifecycle coordinator runs after a successful persist so
seq or flag changes can reshuffle the novel's latest pointer.

Parameters:
  - context: context.Context
  - id: string (Target UUID)
  - input: UpdateChapterInput (partial changes)
  - actor: *sec.AuthClaims (Authenticated caller)

Returns:
  - *Chapter: The updated entity
  - error: Ownership, validation, or sequence conflict errors
*/
func (service *Service) UpdateChapter(context context.Context, id string, input UpdateChapterInput, actor *sec.AuthClaims) (*Chapter, error) {

	c, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.requireNovelOwnership(context, c.NovelID, actor); err != nil {
		return nil, err
	}

	// Merge partial input onto the entity
	if input.Seq != nil {
		c.Seq = *input.Seq
	}
	if input.IsExtra != nil {
		c.IsExtra = *input.IsExtra
	}
	if input.Title != nil {
		c.Title = *input.Title
	}
	if input.Body != nil {
		c.Body = *input.Body
		c.WordCount = wordcount.Count(c.Body)
	}
	if input.IsPremium != nil {
		c.IsPremium = *input.IsPremium
	}
	if input.Price != nil {
		c.Price = *input.Price
	}

	// Revalidate merged state
	validator := &validate.Validator{}
	validator.MaxLen(FieldTitle, c.Title, MaxChapterTitleLen)
	validator.NonNegative(FieldSeq, c.Seq)
	validator.NonNegative(FieldPrice, c.Price)
	validator.Custom(FieldBody, c.Body == "", "Chapter body cannot be empty")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.chapterRepo.Update(context, c); err != nil {
		return nil, err
	}

	service.coordinator.OnChapterEdited(context, c.NovelID)

	service.logger.Info("chapter_updated",
		slog.String("chapter_id", c.ID),
		slog.String("novel_id", c.NovelID),
	)

	return c, nil
}

/*
DeleteChapter soft-deletes a single chapter.

Description: After the row is hidden the coordinator re-derives the
novel's latest pointer and statistics; if the deleted chapter was the
latest, the pointer falls back to the next live chapter.

Parameters:
  - context: context.Context
  - id: string (Target UUID)
  - actor: *sec.AuthClaims (Authenticated caller)

Returns:
  - error: Ownership or persistence errors
*/
func (service *Service) DeleteChapter(context context.Context, id string, actor *sec.AuthClaims) error {

	c, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := service.requireNovelOwnership(context, c.NovelID, actor); err != nil {
		return err
	}

	if err := service.chapterRepo.SoftDelete(context, id); err != nil {
		return err
	}

	service.coordinator.OnChapterDeleted(context, c.NovelID)

	service.logger.Info("chapter_deleted",
		slog.String("chapter_id", id),
		slog.String("novel_id", c.NovelID),
	)

	return nil
}

// # Internal Helpers

// requireNovelOwnership allows the owning author or moderator-and-above roles.
func (service *Service) requireNovelOwnership(context context.Context, novelID string, actor *sec.AuthClaims) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	n, err := service.novels.FindByID(context, novelID)
	if err != nil {
		return err
	}

	if n.AuthorID == actor.UserID || sec.UserRole(actor.Role).AtLeast(sec.RoleModerator) {
		return nil
	}

	return apperr.Forbidden("You do not own this novel")
}
