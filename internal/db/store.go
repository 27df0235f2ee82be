package db

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Typed storage outcomes. Callers branch on these instead of inspecting
// driver-specific error codes.
var (
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrRecordNotFound = errors.New("record not found")
)

type (
	UserStore struct {
		db *gorm.DB
	}

	BookmarkStore struct {
		db *gorm.DB
	}
)

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func NewBookmarkStore(db *gorm.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	user := User{
		Email:    email,
		Password: passwordHash,
	}
	res := s.db.WithContext(ctx).Create(&user)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &user, nil
}

func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	user := User{}
	res := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &user, nil
}

func (s *UserStore) FindUserByID(ctx context.Context, id uint64) (*User, error) {
	user := User{}
	res := s.db.WithContext(ctx).First(&user, id)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &user, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, id uint64, fields map[string]interface{}) (*User, error) {
	res := s.db.WithContext(ctx).Model(&User{GormForkedModel: GormForkedModel{ID: id}}).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return s.FindUserByID(ctx, id)
}

func (s *BookmarkStore) CreateBookmark(ctx context.Context, bookmark *Bookmark) error {
	res := s.db.WithContext(ctx).Create(bookmark)
	if res.Error != nil {
		return translate(res.Error)
	}
	return nil
}

func (s *BookmarkStore) ListBookmarks(ctx context.Context, userID uint64) ([]Bookmark, error) {
	sql, args, err := squirrel.
		Select("b.id", "b.created_at", "b.updated_at", "b.title", "b.description", "b.link", "b.user_id").
		From("bookmarks b").
		OrderBy("b.id").
		Where(squirrel.Eq{"b.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	bookmarks := make([]Bookmark, 0)
	res := s.db.WithContext(ctx).Raw(sql, args...).Scan(&bookmarks)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}

	return bookmarks, nil
}

func (s *BookmarkStore) FindBookmarkByID(ctx context.Context, id uint64) (*Bookmark, error) {
	bookmark := Bookmark{}
	res := s.db.WithContext(ctx).First(&bookmark, id)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &bookmark, nil
}

func (s *BookmarkStore) FindOwnedBookmark(ctx context.Context, userID, id uint64) (*Bookmark, error) {
	bookmark := Bookmark{}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&bookmark)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &bookmark, nil
}

func (s *BookmarkStore) UpdateBookmark(ctx context.Context, id uint64, fields map[string]interface{}) (*Bookmark, error) {
	res := s.db.WithContext(ctx).Model(&Bookmark{GormForkedModel: GormForkedModel{ID: id}}).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return s.FindBookmarkByID(ctx, id)
}

func (s *BookmarkStore) DeleteBookmark(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&Bookmark{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	}
	return err
}
