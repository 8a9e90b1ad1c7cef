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
)

func newTaskFixture(t *testing.T) *TaskService {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), &config.ProgressConfig{})
	svc.Now = testutil.NewClock("2024-05-10").Now
	return svc
}

func TestTaskService_CreateDefaults(t *testing.T) {
	svc := newTaskFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, util.ErrTitleRequired)

	task, err := svc.Create(ctx, "u1", CreateTaskInput{
		Title:     " Graphs ",
		Reminders: []string{"09:00"},
		Subtasks:  []string{"BFS", " ", "DFS"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Graphs", task.Title)
	assert.Equal(t, "2024-05-10", task.Date)
	assert.Empty(t, task.Reminders)
	require.Len(t, task.Subtasks, 2)
	assert.NotEqual(t, task.Subtasks[0].ID, task.Subtasks[1].ID)
}

func TestTaskService_Reminders(t *testing.T) {
	svc := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateTaskInput{
		Title:        "DP",
		Notification: true,
		Reminders:    []string{"18:30", "09:00", "18:30", "9:05"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:05", "18:30"}, []string(task.Reminders))

	_, err = svc.Create(ctx, "u1", CreateTaskInput{Title: "DP", Notification: true, Reminders: []string{"25:00"}})
	assert.ErrorIs(t, err, util.ErrInvalidReminder)

	_, err = svc.Create(ctx, "u1", CreateTaskInput{Title: "DP", Deadline: "2024/05/11"})
	assert.ErrorIs(t, err, util.ErrInvalidDate)

	// 关闭通知时清空提醒
	off := false
	task, err = svc.Update(ctx, "u1", task.ID, UpdateTaskInput{Notification: &off})
	require.NoError(t, err)
	assert.Empty(t, task.Reminders)
}

func TestTaskService_ListViews(t *testing.T) {
	svc := newTaskFixture(t)
	ctx := context.Background()

	mk := func(title, date, deadline string) {
		_, err := svc.Create(ctx, "u1", CreateTaskInput{Title: title, Date: date, Deadline: deadline})
		require.NoError(t, err)
	}
	mk("beta", "2024-05-01", "")
	mk("alpha", "2024-05-02", "2024-05-10")
	mk("gamma", "2024-05-10", "2024-05-20")
	mk("delta", "2024-05-03", "2024-05-05")
	mk("epsilon", "2024-05-04", "")
	_, err := svc.Create(ctx, "u2", CreateTaskInput{Title: "other user"})
	require.NoError(t, err)

	today, err := svc.List(ctx, "u1", TaskViewToday)
	require.NoError(t, err)
	var titles []string
	for _, task := range today {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"alpha", "gamma"}, titles)

	all, err := svc.List(ctx, "u1", TaskViewAll)
	require.NoError(t, err)
	titles = titles[:0]
	for _, task := range all {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"delta", "alpha", "gamma", "beta", "epsilon"}, titles)

	empty, err := svc.List(ctx, "nobody", TaskViewAll)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTaskService_ToggleCascades(t *testing.T) {
	svc := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateTaskInput{Title: "Trees", Subtasks: []string{"a", "b"}})
	require.NoError(t, err)

	task, err = svc.Toggle(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	for _, st := range task.Subtasks {
		assert.True(t, st.Completed)
	}

	task, err = svc.Toggle(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.False(t, task.Completed)
	for _, st := range task.Subtasks {
		assert.False(t, st.Completed)
	}

	_, err = svc.Toggle(ctx, "u2", task.ID)
	assert.ErrorIs(t, err, util.ErrTaskNotFound)
}

func TestTaskService_SubtaskRules(t *testing.T) {
	svc := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateTaskInput{Title: "Heaps", Subtasks: []string{"a"}})
	require.NoError(t, err)
	first := task.Subtasks[0].ID

	task, err = svc.ToggleSubtask(ctx, "u1", task.ID, first)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	// 新增未完成的子任务后任务变为未完成
	task, err = svc.AddSubtask(ctx, "u1", task.ID, "b")
	require.NoError(t, err)
	assert.False(t, task.Completed)
	require.Len(t, task.Subtasks, 2)
	second := task.Subtasks[1].ID

	task, err = svc.DeleteSubtask(ctx, "u1", task.ID, second)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	task, err = svc.DeleteSubtask(ctx, "u1", task.ID, first)
	require.NoError(t, err)
	assert.Empty(t, task.Subtasks)
	assert.True(t, task.Completed, "no subtasks left keeps the current flag")

	_, err = svc.ToggleSubtask(ctx, "u1", task.ID, "missing")
	assert.ErrorIs(t, err, util.ErrSubtaskNotFound)

	_, err = svc.AddSubtask(ctx, "u1", task.ID, " ")
	assert.ErrorIs(t, err, util.ErrTitleRequired)
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	svc := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateTaskInput{Title: "Tries"})
	require.NoError(t, err)

	title := "Tries II"
	deadline := "2024-05-12"
	task, err = svc.Update(ctx, "u1", task.ID, UpdateTaskInput{Title: &title, Deadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, "Tries II", task.Title)
	assert.Equal(t, "2024-05-12", task.Deadline)
	assert.Equal(t, "2024-05-10", task.Date)

	blank := ""
	_, err = svc.Update(ctx, "u1", task.ID, UpdateTaskInput{Title: &blank})
	assert.ErrorIs(t, err, util.ErrTitleRequired)

	require.NoError(t, svc.Delete(ctx, "u1", task.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", task.ID), util.ErrTaskNotFound)

	_, err = svc.Update(ctx, "u1", task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, util.ErrTaskNotFound)
}

func TestSortByDeadline(t *testing.T) {
	tasks := []model.UserTask{
		{Title: "b", Deadline: ""},
		{Title: "B2", Deadline: "2024-01-02"},
		{Title: "a2", Deadline: "2024-01-02"},
		{Title: "a", Deadline: ""},
	}
	SortByDeadline(tasks)
	assert.Equal(t, "a2", tasks[0].Title)
	assert.Equal(t, "B2", tasks[1].Title)
	assert.Equal(t, "a", tasks[2].Title)
	assert.Equal(t, "b", tasks[3].Title)
}
