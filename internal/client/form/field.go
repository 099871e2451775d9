// Package form models the input fields of the sign-in, sign-up and task
// forms independently of any widget toolkit.
//
// A Field carries its value and explicit onChange/onBlur callbacks; the
// front end pushes keystrokes in with SetValue and reports focus loss with
// Blur. Validation messages only surface once the field has been touched.
package form

import (
	"slices"
	"sync"
)

// Validator checks a value and returns a user-facing message, or "" if the
// value is acceptable.
type Validator func(value string) string

// Field is one form input.
type Field struct {
	Name  string
	Label string

	mu         sync.Mutex
	value      string
	touched    bool
	validators []Validator
	onChange   []func(string)
	onBlur     []func()
}

// NewField returns an empty, untouched field.
func NewField(name, label string, validators ...Validator) *Field {
	return &Field{Name: name, Label: label, validators: validators}
}

// OnChange registers fn to be called with every new value.
func (f *Field) OnChange(fn func(value string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = append(f.onChange, fn)
}

// OnBlur registers fn to be called whenever the field loses focus.
func (f *Field) OnBlur(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onBlur = append(f.onBlur, fn)
}

// Value returns the current value.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// SetValue stores v and notifies the onChange callbacks.
func (f *Field) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	fns := slices.Clone(f.onChange)
	f.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Blur marks the field touched and notifies the onBlur callbacks.
func (f *Field) Blur() {
	f.mu.Lock()
	f.touched = true
	fns := slices.Clone(f.onBlur)
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Touch marks the field touched without firing callbacks, as a submit
// attempt does for every field.
func (f *Field) Touch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = true
}

// Touched reports whether the field has been blurred or touched.
func (f *Field) Touched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// Reset clears the value and the touched flag.
func (f *Field) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = ""
	f.touched = false
}

// Error returns the first failing validator's message once the field has
// been touched, and "" otherwise.
func (f *Field) Error() string {
	if !f.Touched() {
		return ""
	}
	return f.check()
}

// Valid reports whether every validator accepts the current value,
// regardless of whether the field was touched.
func (f *Field) Valid() bool {
	return f.check() == ""
}

func (f *Field) check() string {
	f.mu.Lock()
	v := f.value
	validators := f.validators
	f.mu.Unlock()

	for _, validate := range validators {
		if msg := validate(v); msg != "" {
			return msg
		}
	}
	return ""
}

// Form is an ordered set of fields.
type Form struct {
	Fields []*Field
}

// Field returns the field called name, or nil.
func (fm *Form) Field(name string) *Field {
	for _, f := range fm.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Submit touches every field and reports whether all of them are valid,
// along with the message of each invalid field keyed by name.
func (fm *Form) Submit() (bool, map[string]string) {
	errs := map[string]string{}
	for _, f := range fm.Fields {
		f.Touch()
		if msg := f.Error(); msg != "" {
			errs[f.Name] = msg
		}
	}
	return len(errs) == 0, errs
}

// Reset clears every field.
func (fm *Form) Reset() {
	for _, f := range fm.Fields {
		f.Reset()
	}
}
