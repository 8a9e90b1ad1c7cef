package util

import "errors"

var (
	ErrMissingParameter  = errors.New("user_id, question_id, action are required")
	ErrInvalidAction     = errors.New("Invalid action")
	ErrInvalidQuestionID = errors.New("question_id must be an integer")
	ErrPermissionDenied  = errors.New("permission denied")

	ErrQuestionNotFound     = errors.New("Question not found")
	ErrUserNotFound         = errors.New("User not found")
	ErrRegistrationNotFound = errors.New("Not found")
	ErrProfileNotFound      = errors.New("Profile not found")
	ErrTaskNotFound         = errors.New("Task not found")
	ErrSubtaskNotFound      = errors.New("Subtask not found")

	// 注册表的唯一约束冲突
	ErrAppUsernameTaken      = errors.New("App username already taken. Please choose another.")
	ErrLeetcodeUsernameTaken = errors.New("LeetCode username already registered. Kindly add your LeetCode username.")
	// 管理员审核时与其他用户冲突
	ErrAppUsernameInUse      = errors.New("app_username already in use")
	ErrLeetcodeUsernameInUse = errors.New("leetcode_username already in use")

	ErrNothingToUpdate    = errors.New("Provide is_verified or a username to update")
	ErrInvalidStatus      = errors.New("status must be one of pending, verified, rejected")
	ErrUsernamesRequired  = errors.New("uid, app_username, and leetcode_username are required")
	ErrVerifyFieldsNeeded = errors.New("user_id, app_username and leetcode_username are required")
	ErrUserIDRequired     = errors.New("user_id is required")
	ErrLookupKeyRequired  = errors.New("user_id or username is required")
	ErrTitleRequired      = errors.New("Title is required")
	ErrInvalidDate        = errors.New("dates must use YYYY-MM-DD")
	ErrInvalidReminder    = errors.New("reminders must use HH:MM")

	ErrStore = errors.New("store error")
)

var badRequestErrors = []error{
	ErrMissingParameter, ErrInvalidAction, ErrInvalidQuestionID,
	ErrNothingToUpdate, ErrInvalidStatus, ErrUsernamesRequired, ErrVerifyFieldsNeeded,
	ErrUserIDRequired, ErrLookupKeyRequired, ErrTitleRequired, ErrInvalidDate, ErrInvalidReminder,
}

var notFoundErrors = []error{
	ErrQuestionNotFound, ErrUserNotFound, ErrRegistrationNotFound,
	ErrProfileNotFound, ErrTaskNotFound, ErrSubtaskNotFound,
}

var conflictErrors = []error{
	ErrAppUsernameTaken, ErrLeetcodeUsernameTaken, ErrAppUsernameInUse, ErrLeetcodeUsernameInUse,
}

// StoreError 包装持久层错误，对外统一映射为 500
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// WrapStore 将非业务错误包装为 StoreError，业务错误原样返回
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || IsDomainError(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsDomainError(err error) bool {
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	return matchAny(err, badRequestErrors) || matchAny(err, notFoundErrors) || matchAny(err, conflictErrors)
}

func matchAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
