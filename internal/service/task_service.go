package service

import (
	"context"
	"errors"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/util"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	TaskViewToday = "today"
	TaskViewAll   = "all"
)

// TaskService 个人任务清单：任务完成状态与子任务保持一致
type TaskService struct {
	TaskRepo *repository.TaskRepository
	Location *time.Location
	Now      func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, cfg *config.ProgressConfig) *TaskService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &TaskService{
		TaskRepo: taskRepo,
		Location: loc,
		Now:      time.Now,
	}
}

func (s *TaskService) today() string {
	return s.Now().In(s.Location).Format(util.DateFormat)
}

// List today 视图返回计划日期或截止日期为今天的任务；all 视图按截止日期排序，无截止日期的排在最后
func (s *TaskService) List(ctx context.Context, userID, view string) ([]model.UserTask, error) {
	var (
		tasks []model.UserTask
		err   error
	)
	if view == TaskViewToday {
		tasks, err = s.TaskRepo.ListForDay(ctx, userID, s.today())
	} else {
		tasks, err = s.TaskRepo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, util.WrapStore("tasks.list", err)
	}
	tasks = orEmpty(tasks)
	for i := range tasks {
		normalize(&tasks[i])
	}
	if view != TaskViewToday {
		SortByDeadline(tasks)
	}
	return tasks, nil
}

func SortByDeadline(tasks []model.UserTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Deadline != b.Deadline {
			if a.Deadline == "" {
				return false
			}
			if b.Deadline == "" {
				return true
			}
			return a.Deadline < b.Deadline
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

type CreateTaskInput struct {
	Title        string
	Date         string
	Deadline     string
	Notification bool
	Reminders    []string
	Subtasks     []string
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*model.UserTask, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, util.ErrTitleRequired
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.today()
	}
	deadline := strings.TrimSpace(in.Deadline)
	if err := validateDates(date, deadline); err != nil {
		return nil, err
	}

	reminders, err := normalizeReminders(in.Notification, in.Reminders)
	if err != nil {
		return nil, err
	}

	subtasks := make([]model.Subtask, 0, len(in.Subtasks))
	for _, t := range in.Subtasks {
		if t = strings.TrimSpace(t); t != "" {
			subtasks = append(subtasks, model.Subtask{ID: model.GenerateUUID(), Title: t})
		}
	}

	task := &model.UserTask{
		UserID:       userID,
		Title:        title,
		Date:         date,
		Deadline:     deadline,
		Notification: in.Notification,
		Reminders:    reminders,
		Subtasks:     subtasks,
	}
	if err := s.TaskRepo.Create(ctx, task); err != nil {
		return nil, util.WrapStore("tasks.create", err)
	}
	return task, nil
}

type UpdateTaskInput struct {
	Title        *string
	Date         *string
	Deadline     *string
	Notification *bool
	Reminders    *[]string
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, in UpdateTaskInput) (*model.UserTask, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, util.ErrTitleRequired
		}
		task.Title = title
	}
	if in.Date != nil {
		task.Date = strings.TrimSpace(*in.Date)
		if task.Date == "" {
			task.Date = s.today()
		}
	}
	if in.Deadline != nil {
		task.Deadline = strings.TrimSpace(*in.Deadline)
	}
	if err := validateDates(task.Date, task.Deadline); err != nil {
		return nil, err
	}
	if in.Notification != nil {
		task.Notification = *in.Notification
	}
	reminders := []string(task.Reminders)
	if in.Reminders != nil {
		reminders = *in.Reminders
	}
	task.Reminders, err = normalizeReminders(task.Notification, reminders)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	n, err := s.TaskRepo.Delete(ctx, userID, taskID)
	if err != nil {
		return util.WrapStore("tasks.delete", err)
	}
	if n == 0 {
		return util.ErrTaskNotFound
	}
	return nil
}

// Toggle 切换任务完成状态，子任务随之全部完成或全部取消
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	for i := range task.Subtasks {
		task.Subtasks[i].Completed = task.Completed
	}
	return s.save(ctx, task)
}

func (s *TaskService) AddSubtask(ctx context.Context, userID, taskID, title string) (*model.UserTask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, util.ErrTitleRequired
	}
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Subtasks = append(task.Subtasks, model.Subtask{ID: model.GenerateUUID(), Title: title})
	syncCompletion(task)
	return s.save(ctx, task)
}

// ToggleSubtask 子任务全部完成时任务完成，否则任务未完成
func (s *TaskService) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (*model.UserTask, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	idx := subtaskIndex(task, subtaskID)
	if idx < 0 {
		return nil, util.ErrSubtaskNotFound
	}
	task.Subtasks[idx].Completed = !task.Subtasks[idx].Completed
	syncCompletion(task)
	return s.save(ctx, task)
}

func (s *TaskService) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) (*model.UserTask, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	idx := subtaskIndex(task, subtaskID)
	if idx < 0 {
		return nil, util.ErrSubtaskNotFound
	}
	task.Subtasks = append(task.Subtasks[:idx], task.Subtasks[idx+1:]...)
	syncCompletion(task)
	return s.save(ctx, task)
}

func (s *TaskService) find(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	task, err := s.TaskRepo.FindByID(ctx, userID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTaskNotFound
	}
	if err != nil {
		return nil, util.WrapStore("tasks.find", err)
	}
	normalize(task)
	return task, nil
}

func (s *TaskService) save(ctx context.Context, task *model.UserTask) (*model.UserTask, error) {
	normalize(task)
	if err := s.TaskRepo.Save(ctx, task); err != nil {
		return nil, util.WrapStore("tasks.save", err)
	}
	return task, nil
}

// syncCompletion 没有子任务时保留原状态
func syncCompletion(task *model.UserTask) {
	if len(task.Subtasks) == 0 {
		return
	}
	all := true
	for _, st := range task.Subtasks {
		if !st.Completed {
			all = false
			break
		}
	}
	task.Completed = all
}

func subtaskIndex(task *model.UserTask, subtaskID string) int {
	for i, st := range task.Subtasks {
		if st.ID == subtaskID {
			return i
		}
	}
	return -1
}

func normalize(task *model.UserTask) {
	if task.Reminders == nil {
		task.Reminders = []string{}
	}
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}
}

func validateDates(dates ...string) error {
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, err := time.Parse(util.DateFormat, d); err != nil {
			return util.ErrInvalidDate
		}
	}
	return nil
}

// normalizeReminders 仅在开启通知时保留提醒，去重并按时间排序
func normalizeReminders(notification bool, reminders []string) ([]string, error) {
	if !notification {
		return []string{}, nil
	}
	seen := make(map[string]bool, len(reminders))
	out := make([]string, 0, len(reminders))
	for _, r := range reminders {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		t, err := time.Parse(util.ReminderFormat, r)
		if err != nil {
			return nil, util.ErrInvalidReminder
		}
		r = t.Format(util.ReminderFormat)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out, nil
}
