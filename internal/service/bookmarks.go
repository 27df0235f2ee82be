package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/linkstash/linkstash-back/internal/db"
)

var (
	// ErrForbidden is returned on mutation of a bookmark the caller does
	// not own. It also covers a missing id: the two cases are not
	// distinguishable from the outside, so ownership cannot be probed.
	ErrForbidden = errors.New("access denied to this resource")
	ErrNotFound  = errors.New("not found")
)

type BookmarkStore interface {
	CreateBookmark(ctx context.Context, bookmark *db.Bookmark) error
	ListBookmarks(ctx context.Context, userID uint64) ([]db.Bookmark, error)
	FindBookmarkByID(ctx context.Context, id uint64) (*db.Bookmark, error)
	FindOwnedBookmark(ctx context.Context, userID, id uint64) (*db.Bookmark, error)
	UpdateBookmark(ctx context.Context, id uint64, fields map[string]interface{}) (*db.Bookmark, error)
	DeleteBookmark(ctx context.Context, id uint64) error
}

type Bookmarks struct {
	store  BookmarkStore
	logger *zap.SugaredLogger
}

func NewBookmarks(store BookmarkStore, logger *zap.SugaredLogger) *Bookmarks {
	return &Bookmarks{
		store:  store,
		logger: logger,
	}
}

func (s *Bookmarks) Create(ctx context.Context, userID uint64, title string, description *string, link string) (*db.Bookmark, error) {
	model := db.Bookmark{
		Title:       title,
		Description: description,
		Link:        link,
		UserID:      userID,
	}

	if err := s.store.CreateBookmark(ctx, &model); err != nil {
		return nil, errors.Wrap(err, "create bookmark")
	}

	return &model, nil
}

func (s *Bookmarks) List(ctx context.Context, userID uint64) ([]db.Bookmark, error) {
	bookmarks, err := s.store.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list bookmarks")
	}
	return bookmarks, nil
}

// Get is owner-scoped: a bookmark that exists but belongs to someone else
// looks exactly like one that does not exist.
func (s *Bookmarks) Get(ctx context.Context, userID, id uint64) (*db.Bookmark, error) {
	bookmark, err := s.store.FindOwnedBookmark(ctx, userID, id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find bookmark")
	}
	return bookmark, nil
}

func (s *Bookmarks) Update(ctx context.Context, userID, id uint64, title, description, link *string) (*db.Bookmark, error) {
	current, err := s.checkOwnership(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if title != nil {
		fields["title"] = *title
	}
	if description != nil {
		fields["description"] = *description
	}
	if link != nil {
		fields["link"] = *link
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.store.UpdateBookmark(ctx, id, fields)
	if err != nil {
		return nil, errors.Wrap(err, "update bookmark")
	}
	return updated, nil
}

func (s *Bookmarks) Delete(ctx context.Context, userID, id uint64) error {
	if _, err := s.checkOwnership(ctx, userID, id); err != nil {
		return err
	}

	if err := s.store.DeleteBookmark(ctx, id); err != nil {
		return errors.Wrap(err, "delete bookmark")
	}

	s.logger.Infow("bookmark deleted", "bookmark_id", id, "user_id", userID)
	return nil
}

func (s *Bookmarks) checkOwnership(ctx context.Context, userID, id uint64) (*db.Bookmark, error) {
	bookmark, err := s.store.FindBookmarkByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, errors.Wrap(err, "find bookmark")
	}
	if bookmark.UserID != userID {
		return nil, ErrForbidden
	}
	return bookmark, nil
}
