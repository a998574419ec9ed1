// Copyright (c) 2026 Noveris. All rights reserved.

package novel

import (
	"context"
	"log/slog"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/pkg/slug"
	"github.com/noveris/noveris/pkg/uuidv7"
)

const (
	// MaxTitleLen bounds novel titles.
	MaxTitleLen = 255
	// MaxDescriptionLen bounds the synopsis text.
	MaxDescriptionLen = 5000
)

// # Service Layer

// Service orchestrates the business logic for novels.
type Service struct {
	novelRepo   Repository
	chapters    ChapterPurger
	coordinator LifecycleCoordinator
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(novelRepo Repository, chapters ChapterPurger, coordinator LifecycleCoordinator, logger *slog.Logger) *Service {
	return &Service{
		novelRepo:   novelRepo,
		chapters:    chapters,
		coordinator: coordinator,
		logger:      logger,
	}
}

// # Read Operations

/*
ListNovels retrieves catalogue entries for browsing.

Parameters:
  - context: context.Context
  - f: Filter (status, author, search, sorting)
  - limit: int
  - offset: int

Returns:
  - []*Novel: Matched novels with derived statistics
  - int: Total matching count
  - error: Storage or execution errors
*/
func (service *Service) ListNovels(context context.Context, f Filter, limit, offset int) ([]*Novel, int, error) {
	return service.novelRepo.List(context, f, limit, offset)
}

/*
GetNovel retrieves a single novel by its ID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Novel: The hydrated domain entity
  - error: apperr.NotFound if not found
*/
func (service *Service) GetNovel(context context.Context, id string) (*Novel, error) {
	return service.novelRepo.FindByID(context, id)
}

/*
GetNovelBySlug retrieves a single novel by its URL slug.

Parameters:
  - context: context.Context
  - s: string (URL slug)

Returns:
  - *Novel: The hydrated domain entity
  - error: apperr.NotFound if not found
*/
func (service *Service) GetNovelBySlug(context context.Context, s string) (*Novel, error) {
	return service.novelRepo.FindBySlug(context, s)
}

// # Write Operations

/*
CreateNovel initialises a new catalogue entry.

Description: Generates the identity and URL slug, validates the metadata,
and persists the novel with zeroed derived statistics.

Parameters:
  - context: context.Context
  - n: *Novel (title, description, status, author ownership)

Returns:
  - error: Validation, slug conflict, or persistence errors
*/
func (service *Service) CreateNovel(context context.Context, n *Novel) error {

	// Identity & mandatory field generation
	if n.ID == "" {
		n.ID = uuidv7.New()
	}
	if n.Status == "" {
		n.Status = StatusOngoing
	}
	if n.Slug == "" {
		n.Slug = slug.From(n.Title)
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldAuthorID, n.AuthorID)
	validator.Required(FieldTitle, n.Title)
	validator.MaxLen(FieldTitle, n.Title, MaxTitleLen)
	validator.MaxLen(FieldDescription, n.Description, MaxDescriptionLen)
	validator.Required(FieldSlug, n.Slug)
	validator.Custom(FieldStatus, !n.Status.IsValid(), "Status must be one of: ongoing, completed, hiatus")

	if err := validator.Err(); err != nil {
		return err
	}

	// Storage persistence
	if err := service.novelRepo.Create(context, n); err != nil {
		return err
	}

	service.logger.Info("novel_created",
		slog.String("novel_id", n.ID),
		slog.String("author_id", n.AuthorID),
		slog.String("slug", n.Slug),
	)

	return nil
}

// UpdateNovelInput carries the optional metadata changes for a novel.
// Derived statistics are not part of the input surface.
type UpdateNovelInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

/*
UpdateNovel applies metadata changes to an existing novel.

Description: Enforces ownership (author or moderator), revalidates the
merged entity, and persists it. A status transition is routed through the
lifecycle coordinator after the write so chapter flags and derived
statistics can follow the new publication state.

Parameters:
  - context: context.Context
  - id: string (Target UUID)
  - input: UpdateNovelInput (partial changes)
  - actor: *sec.AuthClaims (Authenticated caller)

Returns:
  - *Novel: The updated entity
  - error: apperr.Forbidden on ownership violations, validation errors
*/
func (service *Service) UpdateNovel(context context.Context, id string, input UpdateNovelInput, actor *sec.AuthClaims) (*Novel, error) {

	n, err := service.novelRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwnership(n, actor); err != nil {
		return nil, err
	}

	oldStatus := n.Status

	// Merge partial input onto the entity
	if input.Title != nil {
		n.Title = *input.Title
		n.Slug = slug.From(n.Title)
	}
	if input.Description != nil {
		n.Description = *input.Description
	}
	if input.Status != nil {
		n.Status = *input.Status
	}

	// Revalidate merged state
	validator := &validate.Validator{}
	validator.Required(FieldTitle, n.Title)
	validator.MaxLen(FieldTitle, n.Title, MaxTitleLen)
	validator.MaxLen(FieldDescription, n.Description, MaxDescriptionLen)
	validator.Custom(FieldStatus, !n.Status.IsValid(), "Status must be one of: ongoing, completed, hiatus")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.novelRepo.Update(context, n); err != nil {
		return nil, err
	}

	// Status transitions may reshape chapter flags and derived stats.
	// The coordinator absorbs its own failures; the metadata write stands.
	if oldStatus != n.Status {
		service.coordinator.OnNovelStatusChanged(context, n.ID, string(oldStatus), string(n.Status))
	}

	service.logger.Info("novel_updated",
		slog.String("novel_id", n.ID),
		slog.String("actor_id", actor.UserID),
	)

	return n, nil
}

/*
DeleteNovel soft-deletes a novel and cascades into its chapters.

Description: The novel row is hidden first, then every live chapter is
bulk soft-deleted, and finally the lifecycle coordinator clears the latest
pointer and re-derives statistics for the (now empty) novel.

Parameters:
  - context: context.Context
  - id: string (Target UUID)
  - actor: *sec.AuthClaims (Authenticated caller)

Returns:
  - error: apperr.Forbidden on ownership violations, persistence errors
*/
func (service *Service) DeleteNovel(context context.Context, id string, actor *sec.AuthClaims) error {

	n, err := service.novelRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := requireOwnership(n, actor); err != nil {
		return err
	}

	if err := service.novelRepo.SoftDelete(context, id); err != nil {
		return err
	}

	deleted, err := service.chapters.SoftDeleteByNovel(context, id)
	if err != nil {
		// The novel is already hidden; surface the partial failure so the
		// reconciliation job can repair the orphaned chapters later.
		service.logger.Error("novel_chapter_cascade_failed",
			slog.String("novel_id", id),
			slog.String("error", err.Error()),
		)
		return err
	}

	service.coordinator.OnChaptersBulkDeleted(context, id)

	service.logger.Info("novel_deleted",
		slog.String("novel_id", id),
		slog.String("actor_id", actor.UserID),
		slog.Int64("chapters_deleted", deleted),
	)

	return nil
}

// # Internal Helpers

// requireOwnership allows the owning author or any moderator-and-above role.
func requireOwnership(n *Novel, actor *sec.AuthClaims) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if n.AuthorID == actor.UserID {
		return nil
	}
	if sec.UserRole(actor.Role).AtLeast(sec.RoleModerator) {
		return nil
	}
	return apperr.Forbidden("You do not own this novel")
}
