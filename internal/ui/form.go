package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/auth"
)

// form is a vertical stack of text inputs with a single focused field.
type form struct {
	inputs []textinput.Model
	focus  int
	skip   func(i int) bool
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = "› "
	return in
}

func (f *form) visible(i int) bool { return f.skip == nil || !f.skip(i) }

// move shifts focus by delta, skipping hidden fields.
func (f *form) move(delta int) {
	n := len(f.inputs)
	for range n {
		f.focus = (f.focus + delta + n) % n
		if f.visible(f.focus) {
			break
		}
	}
	f.sync()
}

func (f *form) sync() {
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// last reports whether the focused field is the final visible one.
func (f *form) last() bool {
	for i := f.focus + 1; i < len(f.inputs); i++ {
		if f.visible(i) {
			return false
		}
	}
	return true
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(i int) string { return f.inputs[i].Value() }

func (f *form) view(labels []string) string {
	var b strings.Builder
	for i, in := range f.inputs {
		if !f.visible(i) {
			continue
		}
		b.WriteString(labels[i] + "\n" + in.View() + "\n\n")
	}
	return b.String()
}

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

var loginLabels = []string{"Name", "Email", "Password"}

// loginForm collects credentials; the name field only shows in sign up mode.
type loginForm struct {
	form
	signup bool
}

func newLoginForm() *loginForm {
	name := newInput("Ada Lovelace", 64)
	email := newInput("you@example.com", 128)
	password := newInput("password", 64)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	lf := &loginForm{form: form{inputs: []textinput.Model{name, email, password}, focus: fieldEmail}}
	lf.skip = func(i int) bool { return i == fieldName && !lf.signup }
	lf.sync()
	return lf
}

func (lf *loginForm) toggle() {
	lf.signup = !lf.signup
	if lf.signup {
		lf.focus = fieldName
	} else if lf.focus == fieldName {
		lf.focus = fieldEmail
	}
	lf.sync()
}

func (lf *loginForm) credentials() auth.Credentials {
	return auth.Credentials{
		Name:     lf.value(fieldName),
		Email:    lf.value(fieldEmail),
		Password: lf.value(fieldPassword),
		Signup:   lf.signup,
	}.Normalize()
}

const (
	fieldTitle = iota
	fieldDescription
)

var addLabels = []string{"Title", "Description"}

func newAddForm() *form {
	f := &form{inputs: []textinput.Model{newInput("Movie title", 120), newInput("Why should we watch it?", 280)}}
	f.sync()
	return f
}
