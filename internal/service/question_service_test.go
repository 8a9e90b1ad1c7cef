package service

import (
	"context"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/testutil"
	"mindtrack_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCatalog(t *testing.T) (*gorm.DB, *QuestionService) {
	t.Helper()
	db := testutil.NewDB(t)

	testutil.SeedQuestion(t, db, 1, "Two Sum", "Easy")
	testutil.SeedQuestion(t, db, 2, "Add Two Numbers", "Medium")
	testutil.SeedQuestion(t, db, 3, "Median of Two Sorted Arrays", "Hard")
	testutil.SeedQuestion(t, db, 4, "100%_Match", "easy")

	require.NoError(t, db.Create(&[]model.Category{
		{CategoryID: 10, Name: "Array"},
		{CategoryID: 11, Name: "Linked List"},
	}).Error)
	require.NoError(t, db.Create(&[]model.Company{
		{CompanyID: 20, Name: "Google"},
		{CompanyID: 21, Name: "Amazon"},
	}).Error)
	require.NoError(t, db.Create(&model.Sheet{SheetID: 30, Name: "Blind 75"}).Error)

	require.NoError(t, db.Create(&[]model.QuestionCategory{
		{QuestionID: 1, CategoryID: 10},
		{QuestionID: 2, CategoryID: 11},
		{QuestionID: 3, CategoryID: 10},
	}).Error)
	require.NoError(t, db.Create(&[]model.QuestionCompany{
		{QuestionID: 1, CompanyID: 20},
		{QuestionID: 1, CompanyID: 21},
		{QuestionID: 3, CompanyID: 21},
	}).Error)
	require.NoError(t, db.Create(&[]model.QuestionSheet{
		{QuestionID: 1, SheetID: 30},
		{QuestionID: 2, SheetID: 30},
	}).Error)

	return db, NewQuestionService(repository.NewQuestionRepository(db), repository.NewProgressRepository(db))
}

func ids(rows []model.QuestionRow) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.QuestionID)
	}
	return out
}

func TestQuestionService_ListAll(t *testing.T) {
	_, svc := seedCatalog(t)

	rows, total, err := svc.List(context.Background(), model.QuestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(rows))
	assert.Equal(t, "Array", rows[0].Categories)
	assert.Contains(t, rows[0].Companies, "Google")
	assert.Contains(t, rows[0].Companies, "Amazon")
	assert.Equal(t, "", rows[3].Categories)
	assert.Nil(t, rows[0].IsSolved)
}

func TestQuestionService_Filters(t *testing.T) {
	_, svc := seedCatalog(t)
	ctx := context.Background()

	rows, total, err := svc.List(ctx, model.QuestionFilter{Query: "two"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []int64{1, 2, 3}, ids(rows))

	// LIKE 通配符按字面匹配
	rows, _, err = svc.List(ctx, model.QuestionFilter{Query: "%_"})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(rows))

	rows, _, err = svc.List(ctx, model.QuestionFilter{Difficulties: []string{"EASY"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(rows))

	rows, _, err = svc.List(ctx, model.QuestionFilter{Categories: []string{"array"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(rows))

	rows, _, err = svc.List(ctx, model.QuestionFilter{Categories: []string{"11"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(rows))

	rows, _, err = svc.List(ctx, model.QuestionFilter{Companies: []string{"Amazon"}, Sheets: []string{"30"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(rows))
}

func TestQuestionService_Pagination(t *testing.T) {
	_, svc := seedCatalog(t)

	rows, total, err := svc.List(context.Background(), model.QuestionFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []int64{3, 4}, ids(rows))

	rows, _, err = svc.List(context.Background(), model.QuestionFilter{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestQuestionService_UserAnnotations(t *testing.T) {
	db, svc := seedCatalog(t)

	progress := NewProgressService(db,
		repository.NewProgressRepository(db),
		repository.NewUserRepository(db),
		repository.NewQuestionRepository(db),
		&config.ProgressConfig{},
	)
	_, err := progress.Update(context.Background(), "u1", "2", model.ActionSolve)
	require.NoError(t, err)
	_, err = progress.Update(context.Background(), "u1", "3", model.ActionStar)
	require.NoError(t, err)

	rows, _, err := svc.List(context.Background(), model.QuestionFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	require.NotNil(t, rows[0].IsSolved)
	assert.False(t, *rows[0].IsSolved)
	assert.True(t, *rows[1].IsSolved)
	assert.False(t, *rows[1].IsStarred)
	assert.True(t, *rows[2].IsStarred)
}

func TestQuestionService_Detail(t *testing.T) {
	_, svc := seedCatalog(t)
	ctx := context.Background()

	detail, err := svc.Detail(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Median of Two Sorted Arrays", detail.Title)
	assert.Equal(t, "Array", detail.Categories)

	_, err = svc.Detail(ctx, "999")
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	_, err = svc.Detail(ctx, "x1")
	assert.ErrorIs(t, err, util.ErrInvalidQuestionID)
}

func TestQuestionService_Lookups(t *testing.T) {
	_, svc := seedCatalog(t)
	ctx := context.Background()

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Array", cats[0].Name)

	companies, err := svc.Companies(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amazon", companies[0].Name)

	sheets, err := svc.Sheets(ctx)
	require.NoError(t, err)
	assert.Len(t, sheets, 1)

	d, err := svc.Difficulty(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Medium", d)

	d, err = svc.Difficulty(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, "", d)
}
