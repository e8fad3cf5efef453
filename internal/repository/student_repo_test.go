package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/models"
)

func setupTestDB(t *testing.T, name string, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func TestStudentRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t, "student_create", &models.Student{})
	repo := NewStudentRepository(db)

	student := models.Student{StudentID: "1001", Name: "Li Hua", Class: "3-2"}
	require.NoError(t, repo.Create(context.Background(), &student))

	fetched, err := repo.GetByStudentID(context.Background(), "1001")
	require.NoError(t, err)
	require.Equal(t, "Li Hua", fetched.Name)

	_, err = repo.GetByStudentID(context.Background(), "9999")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t, "student_list", &models.Student{})
	repo := NewStudentRepository(db)

	require.NoError(t, repo.Create(context.Background(), &models.Student{StudentID: "1001", Name: "Li Hua", Class: "3-2"}))
	require.NoError(t, repo.Create(context.Background(), &models.Student{StudentID: "1002", Name: "Wang Fang", Class: "3-2"}))
	require.NoError(t, repo.Create(context.Background(), &models.Student{StudentID: "2001", Name: "Zhao Lei", Class: "4-1"}))

	all, err := repo.List(context.Background(), StudentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	byClass, err := repo.List(context.Background(), StudentFilter{Class: "3-2"})
	require.NoError(t, err)
	require.Len(t, byClass, 2)

	bySearch, err := repo.List(context.Background(), StudentFilter{Search: "Wang"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	require.Equal(t, "1002", bySearch[0].StudentID)
}

func TestStudentRepositoryUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t, "student_update", &models.Student{})
	repo := NewStudentRepository(db)

	student := models.Student{StudentID: "1001", Name: "Li Hua"}
	require.NoError(t, repo.Create(context.Background(), &student))

	student.Height = "142"
	require.NoError(t, repo.Update(context.Background(), &student))

	fetched, err := repo.GetByStudentID(context.Background(), "1001")
	require.NoError(t, err)
	require.Equal(t, "142", fetched.Height)

	require.NoError(t, repo.Delete(context.Background(), "1001"))
	_, err = repo.GetByStudentID(context.Background(), "1001")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
