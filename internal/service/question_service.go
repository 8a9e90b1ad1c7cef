package service

import (
	"context"
	"errors"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/util"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultQuestionLimit = 50
	MaxQuestionLimit     = 50
)

// QuestionService 题库只读查询
type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	ProgressRepo *repository.ProgressRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository, progressRepo *repository.ProgressRepository) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		ProgressRepo: progressRepo,
	}
}

// List 返回当前页的题目与筛选后的总数；带 user_id 时附加该用户的进度
func (s *QuestionService) List(ctx context.Context, filter model.QuestionFilter) ([]model.QuestionRow, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultQuestionLimit
	}
	if filter.Limit > MaxQuestionLimit {
		filter.Limit = MaxQuestionLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Query = strings.TrimSpace(filter.Query)

	rows, total, err := s.QuestionRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, util.WrapStore("questions.list", err)
	}
	if rows == nil {
		rows = []model.QuestionRow{}
	}

	if filter.UserID != "" && len(rows) > 0 {
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.QuestionID)
		}
		progress, err := s.ProgressRepo.FindByQuestions(ctx, filter.UserID, ids)
		if err != nil {
			return nil, 0, util.WrapStore("questions.progress", err)
		}
		for i := range rows {
			p := progress[rows[i].QuestionID]
			solved, starred := p.IsSolved, p.IsStarred
			rows[i].IsSolved = &solved
			rows[i].IsStarred = &starred
		}
	}

	return rows, total, nil
}

func (s *QuestionService) Detail(ctx context.Context, rawID string) (*model.QuestionDetail, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return nil, util.ErrInvalidQuestionID
	}
	detail, err := s.QuestionRepo.FindDetail(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, util.WrapStore("questions.detail", err)
	}
	return detail, nil
}

// Difficulty 题库难度访问器，未知题目返回空字符串
func (s *QuestionService) Difficulty(ctx context.Context, questionID int64) (string, error) {
	d, _, err := s.QuestionRepo.Difficulty(ctx, questionID)
	if err != nil {
		return "", util.WrapStore("questions.difficulty", err)
	}
	return d, nil
}

func (s *QuestionService) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.QuestionRepo.Categories(ctx)
	return orEmpty(rows), util.WrapStore("categories.list", err)
}

func (s *QuestionService) Companies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.QuestionRepo.Companies(ctx)
	return orEmpty(rows), util.WrapStore("companies.list", err)
}

func (s *QuestionService) Sheets(ctx context.Context) ([]model.Sheet, error) {
	rows, err := s.QuestionRepo.Sheets(ctx)
	return orEmpty(rows), util.WrapStore("sheets.list", err)
}

func orEmpty[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
