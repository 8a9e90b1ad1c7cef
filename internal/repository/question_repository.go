package repository

import (
	"context"
	"database/sql"
	"errors"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/util"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const questionColumns = "q.question_id, q.title, q.url, q.source, q.difficulty, q.is_premium, q.acceptance_rate, q.frequency, " +
	"COALESCE((SELECT GROUP_CONCAT(DISTINCT c.name) FROM question_categories qc JOIN categories c ON c.category_id = qc.category_id WHERE qc.question_id = q.question_id), '') AS categories, " +
	"COALESCE((SELECT GROUP_CONCAT(DISTINCT co.name) FROM question_companies qco JOIN companies co ON co.company_id = qco.company_id WHERE qco.question_id = q.question_id), '') AS companies"

// QuestionColumns 列表接口返回的列名
var QuestionColumns = []string{
	"question_id", "title", "url", "source", "difficulty", "is_premium",
	"acceptance_rate", "frequency", "categories", "companies",
}

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

// Difficulty 题目难度，题目不存在时 found 为 false
func (r *QuestionRepository) Difficulty(ctx context.Context, questionID int64) (difficulty string, found bool, err error) {
	var d sql.NullString
	err = r.DB.WithContext(ctx).
		Model(&model.Question{}).
		Select("difficulty").
		Where("question_id = ?", questionID).
		Row().Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d.String, true, nil
}

func (r *QuestionRepository) filtered(ctx context.Context, filter model.QuestionFilter) *gorm.DB {
	query := r.DB.WithContext(ctx).Table("questions AS q")

	if filter.Query != "" {
		term := "%" + util.EscapeLike(strings.ToLower(filter.Query)) + "%"
		query = query.Where("LOWER(q.title) LIKE ? ESCAPE '!'", term)
	}

	if len(filter.Difficulties) > 0 {
		lowered := make([]string, 0, len(filter.Difficulties))
		for _, d := range filter.Difficulties {
			lowered = append(lowered, strings.ToLower(d))
		}
		query = query.Where("LOWER(q.difficulty) IN ?", lowered)
	}

	if len(filter.Categories) > 0 {
		query = existsFilter(query, filter.Categories,
			"question_categories", "category_id", "categories")
	}
	if len(filter.Sheets) > 0 {
		query = existsFilter(query, filter.Sheets,
			"question_sheets", "sheet_id", "sheets")
	}
	if len(filter.Companies) > 0 {
		query = existsFilter(query, filter.Companies,
			"question_companies", "company_id", "companies")
	}

	return query
}

// existsFilter 按 ID 或名称匹配关联表，多个值之间为“或”
func existsFilter(query *gorm.DB, tokens []string, joinTable, idColumn, entityTable string) *gorm.DB {
	var ids []int64
	names := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if id, err := strconv.ParseInt(t, 10, 64); err == nil {
			ids = append(ids, id)
		}
		names = append(names, strings.ToLower(t))
	}

	cond := "EXISTS (SELECT 1 FROM " + joinTable + " j JOIN " + entityTable + " e ON e." + idColumn + " = j." + idColumn +
		" WHERE j.question_id = q.question_id AND (LOWER(e.name) IN ?"
	args := []interface{}{names}
	if len(ids) > 0 {
		cond += " OR j." + idColumn + " IN ?"
		args = append(args, ids)
	}
	cond += "))"
	return query.Where(cond, args...)
}

func (r *QuestionRepository) List(ctx context.Context, filter model.QuestionFilter) ([]model.QuestionRow, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Distinct("q.question_id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.QuestionRow
	err := r.filtered(ctx, filter).
		Select(questionColumns).
		Order("q.question_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *QuestionRepository) FindDetail(ctx context.Context, questionID int64) (*model.QuestionDetail, error) {
	var rows []model.QuestionDetail
	err := r.DB.WithContext(ctx).
		Table("questions AS q").
		Select(questionColumns+", q.description, q.created_at").
		Where("q.question_id = ?", questionID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *QuestionRepository) Categories(ctx context.Context) ([]model.Category, error) {
	var rows []model.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *QuestionRepository) Companies(ctx context.Context) ([]model.Company, error) {
	var rows []model.Company
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *QuestionRepository) Sheets(ctx context.Context) ([]model.Sheet, error) {
	var rows []model.Sheet
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}
