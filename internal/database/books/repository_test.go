package books

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/pagination"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "books.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func seedBooks(t *testing.T, repo *Repository, titles ...string) []*entities.Book {
	t.Helper()
	var out []*entities.Book
	for _, title := range titles {
		book, err := repo.Save(context.Background(), &entities.Book{Title: title})
		require.NoError(t, err)
		out = append(out, book)
	}
	return out
}

func TestRepository_SaveInsertsAndAssignsID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	book, err := repo.Save(ctx, &entities.Book{Title: "AAAAAAAAAA", Description: strPtr("AAAAAAAAAA")})
	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	stored, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAAAA", stored.Title)
	require.NotNil(t, stored.Description)
	assert.Equal(t, "AAAAAAAAAA", *stored.Description)
}

func TestRepository_SaveReplacesExisting(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	book, err := repo.Save(ctx, &entities.Book{Title: "Original", Description: strPtr("keep me?")})
	require.NoError(t, err)

	replaced, err := repo.Save(ctx, &entities.Book{ID: book.ID, Title: "Replaced"})
	require.NoError(t, err)
	assert.Equal(t, book.ID, replaced.ID)

	stored, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replaced", stored.Title)
	assert.Nil(t, stored.Description, "full replace clears omitted nullable fields")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ExistsByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	books := seedBooks(t, repo, "Existing Book")

	exists, err := repo.ExistsByID(ctx, books[0].ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, books[0].ID+100)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_DeleteByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	books := seedBooks(t, repo, "Doomed Book", "Survivor Book")

	require.NoError(t, repo.DeleteByID(ctx, books[0].ID))

	_, err := repo.FindByID(ctx, books[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("absent id is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.DeleteByID(ctx, books[0].ID))
	})
}

func TestRepository_FindAll(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	seedBooks(t, repo, "Charlie Book", "Alpha Book", "Bravo Book", "Delta Book", "Echo Book")

	t.Run("default order is by id", func(t *testing.T) {
		page, err := repo.FindAll(ctx, pagination.Pageable{Page: 0, Size: 2, Sort: DefaultSort})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.TotalElements)
		require.Len(t, page.Content, 2)
		assert.Equal(t, "Charlie Book", page.Content[0].Title)
		assert.Equal(t, "Alpha Book", page.Content[1].Title)
		assert.Equal(t, 3, page.TotalPages())
	})

	t.Run("sort by title descending with offset", func(t *testing.T) {
		page, err := repo.FindAll(ctx, pagination.Pageable{
			Page: 1,
			Size: 2,
			Sort: []pagination.Order{{Property: "title", Column: "title", Direction: pagination.Desc}},
		})
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, "Charlie Book", page.Content[0].Title)
		assert.Equal(t, "Bravo Book", page.Content[1].Title)
		assert.Equal(t, 1, page.Number)
	})

	t.Run("page past the end is empty, not nil", func(t *testing.T) {
		page, err := repo.FindAll(ctx, pagination.Pageable{Page: 10, Size: 2, Sort: DefaultSort})
		require.NoError(t, err)
		assert.NotNil(t, page.Content)
		assert.Empty(t, page.Content)
		assert.Equal(t, int64(5), page.TotalElements)
	})
}
