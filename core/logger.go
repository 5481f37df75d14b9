package core

// Student identifies the caller a log entry is attributed to.
// It is read from the (unverified) bearer credential and only used for diagnostics.
type Student struct {
	ID       string
	Username string
	Email    string
}

func (s Student) IsZero() bool { return s.ID == "" && s.Username == "" && s.Email == "" }

// Logger is the application logger.
// expected args: error | map[string]interface{} | Student
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
