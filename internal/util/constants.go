package util

const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "2006-01-02 15:04:05"
	ReminderFormat = "15:04"
)

// gin 上下文键
const (
	ContextUserKey = "user"
)
