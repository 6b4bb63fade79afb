// Package notify carries transient notices from the view-models to the
// toast area of the terminal UI.
package notify

import "time"

// Duration is how long a notice stays on screen
const Duration = 2 * time.Second

type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "info"
}

// Notice is a single toast message
type Notice struct {
	Level Level
	Text  string
}

func NewSuccess(text string) Notice { return Notice{Level: Success, Text: text} }

func NewError(text string) Notice { return Notice{Level: Error, Text: text} }

func NewInfo(text string) Notice { return Notice{Level: Info, Text: text} }

// Msg asks the root model to show a notice
type Msg struct {
	Notice Notice
}

// ExpiredMsg clears the notice with the given sequence number
type ExpiredMsg struct {
	Seq int
}

// Notice texts shared by the views
const (
	TaskCreated         = "Task Created!"
	TaskCreateFailed    = "Failed to create task"
	TaskDeleted         = "Task deleted successfully"
	TaskDeleteFailed    = "Failed to delete task"
	TaskUpdated         = "Task updated successfully"
	TaskUpdateFailed    = "Failed to update task"
	TasksLoadFailed     = "Failed to load tasks"
	LoggingIn           = "Logging in..."
	LoginSucceeded      = "Welcome Back!"
	LoginFailed         = "Invalid Credentials"
	PasswordsDontMatch  = "Passwords dont match"
	Registering         = "Creating account"
	Registered          = "Registration Successful"
	RegisterFailed      = "Registration Failed :("
	ProjectsLoadFailed  = "Failed to load Projects :("
	ProjectCreated      = "Project created"
	ProjectSaved        = "Project saved"
	ProjectSaveFailed   = "Failed to save project"
	ProjectDeleted      = "Project deleted"
	ProjectDeleteFailed = "Failed to delete project"
	ProfileUpdated      = "Profile updated"
	ProfileUpdateFailed = "Failed to update profile"
	ProfileLoadFailed   = "Failed to load profile"
	LoggedOut           = "Logged out"
)
