package form

import (
	"sync"

	"github.com/atinyakov/GophTasks/internal/client/strength"
	"github.com/atinyakov/GophTasks/internal/models"
)

// Field names shared by the forms.
const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTitle           = "title"
	FieldDescription     = "description"
)

// SignInForm collects the credentials for sign-in.
type SignInForm struct {
	Form
	Username *Field
	Password *Field
}

// NewSignInForm returns an empty sign-in form.
func NewSignInForm() *SignInForm {
	f := &SignInForm{
		Username: NewField(FieldUsername, "Username", Required("Username"), MinLength(4)),
		Password: NewField(FieldPassword, "Password", Required("Password"), MinLength(8)),
	}
	f.Fields = []*Field{f.Username, f.Password}
	return f
}

// Credentials returns the entered username and password.
func (f *SignInForm) Credentials() models.Credentials {
	return models.Credentials{Username: f.Username.Value(), Password: f.Password.Value()}
}

// SignUpForm collects a new account's credentials and tracks the strength
// of the password as it is typed.
type SignUpForm struct {
	Form
	Username        *Field
	Password        *Field
	ConfirmPassword *Field

	mu       sync.Mutex
	strength strength.Assessment
}

// NewSignUpForm returns an empty sign-up form.
func NewSignUpForm() *SignUpForm {
	f := &SignUpForm{strength: strength.Evaluate("")}
	f.Username = NewField(FieldUsername, "Username",
		Required("Username"), MinLength(4), MaxLength(20))
	f.Password = NewField(FieldPassword, "Password",
		Required("Password"), MinLength(8), MaxLength(20), PasswordPattern())
	f.ConfirmPassword = NewField(FieldConfirmPassword, "Confirm password",
		Required("Password confirmation"), Matches(f.Password))
	f.Fields = []*Field{f.Username, f.Password, f.ConfirmPassword}

	f.Password.OnChange(func(v string) {
		a := strength.Evaluate(v)
		f.mu.Lock()
		f.strength = a
		f.mu.Unlock()
	})
	return f
}

// Strength returns the assessment of the password entered so far.
func (f *SignUpForm) Strength() strength.Assessment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strength
}

// Credentials returns the username and password to register.
func (f *SignUpForm) Credentials() models.Credentials {
	return models.Credentials{Username: f.Username.Value(), Password: f.Password.Value()}
}

// TaskForm collects a new task.
type TaskForm struct {
	Form
	Title       *Field
	Description *Field
}

// NewTaskForm returns an empty task form.
func NewTaskForm() *TaskForm {
	f := &TaskForm{
		Title:       NewField(FieldTitle, "Title", Required("Title"), MaxLength(100)),
		Description: NewField(FieldDescription, "Description", Required("Description")),
	}
	f.Fields = []*Field{f.Title, f.Description}
	return f
}
