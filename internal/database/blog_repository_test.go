package database_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/database"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

func TestBlogRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewBlogRepository(db)
	ctx := context.Background()

	blog := &models.GeneratedBlog{
		TenantID:    1,
		StoreID:     sql.NullInt64{Int64: 2, Valid: true},
		KeywordID:   sql.NullInt64{Int64: 3, Valid: true},
		Title:       "Cbd Oil: Complete Professional Guide 2025",
		ContentHTML: "<html><body><h1>Cbd Oil</h1></body></html>",
		Status:      models.BlogStatusDraft,
	}

	mock.ExpectQuery("INSERT INTO generated_blogs").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.Insert(ctx, blog)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id != 11 {
		t.Errorf("Insert() id = %d, want 11", id)
	}
	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestBlogRepository_MarkPublished(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewBlogRepository(db)
	ctx := context.Background()

	testCases := []struct {
		name      string
		setupMock func()
		wantErr   error
	}{
		{
			name: "marks blog published",
			setupMock: func() {
				mock.ExpectExec("UPDATE generated_blogs").
					WithArgs(int64(11), int64(1), "123456", "cbd-oil-guide", "https://shop.example.com/blogs/news/cbd-oil-guide").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing blog returns not found",
			setupMock: func() {
				mock.ExpectExec("UPDATE generated_blogs").
					WithArgs(int64(11), int64(1), "123456", "cbd-oil-guide", "https://shop.example.com/blogs/news/cbd-oil-guide").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			err := repo.MarkPublished(ctx, 1, 11, "123456", "cbd-oil-guide",
				"https://shop.example.com/blogs/news/cbd-oil-guide")
			if err != tc.wantErr {
				t.Errorf("MarkPublished() error = %v, want %v", err, tc.wantErr)
			}
			if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
				t.Errorf("unfulfilled expectations: %v", expectErr)
			}
		})
	}
}

func TestBlogRepository_MarkPublishFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewBlogRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE generated_blogs").
		WithArgs(int64(11), int64(1), "shopify API error: 500").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkPublishFailed(ctx, 1, 11, "shopify API error: 500"); err != nil {
		t.Fatalf("MarkPublishFailed() error = %v", err)
	}
	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}
