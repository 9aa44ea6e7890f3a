package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
)

// authDoneMsg carries the result of a login or registration.
type authDoneMsg struct {
	user *domain.User
	err  error
}

var errFieldsRequired = errors.New("all fields are required")

// authModel is the sign-in form, or the registration form when register is set.
type authModel struct {
	client     *client.Client
	register   bool
	labels     []string
	inputs     []textinput.Model
	focus      int
	submitting bool
	err        error
	width      int
	height     int
}

func newAuthModel(c *client.Client, register bool) authModel {
	labels := []string{"Email", "Password"}
	if register {
		labels = []string{"Name", "Email", "Password"}
	}
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		inputs[i] = newInput(strings.ToLower(label), 40)
		if label == "Password" {
			inputs[i].EchoMode = textinput.EchoPassword
			inputs[i].EchoCharacter = '•'
		}
	}
	inputs[0].Focus()
	return authModel{client: c, register: register, labels: labels, inputs: inputs}
}

func (m authModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authModel) resize(size tea.WindowSizeMsg) authModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m authModel) switchLabel() string {
	if m.register {
		return "sign in instead"
	}
	return "register instead"
}

func (m authModel) value(label string) string {
	for i, l := range m.labels {
		if l == label {
			return strings.TrimSpace(m.inputs[i].Value())
		}
	}
	return ""
}

func (m authModel) setFocus(i int) authModel {
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m authModel) submit() tea.Cmd {
	c := m.client
	name, email, password := m.value("Name"), m.value("Email"), m.inputs[len(m.inputs)-1].Value()
	if m.register {
		return func() tea.Msg {
			user, err := c.Register(context.Background(), domain.RegisterRequest{Name: name, Email: email, Password: password})
			return authDoneMsg{user: user, err: err}
		}
	}
	return func() tea.Msg {
		user, err := c.Login(context.Background(), domain.LoginRequest{Email: email, Password: password})
		return authDoneMsg{user: user, err: err}
	}
}

func (m authModel) complete() bool {
	for _, in := range m.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return false
		}
	}
	return true
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.submitting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.setFocus(m.focus + 1), nil
		case "shift+tab", "up":
			return m.setFocus(m.focus - 1), nil
		case "enter":
			if m.focus < len(m.inputs)-1 {
				return m.setFocus(m.focus + 1), nil
			}
			if !m.complete() {
				m.err = errFieldsRequired
				return m, nil
			}
			m.err = nil
			m.submitting = true
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m authModel) View() string {
	title := "Sign in"
	if m.register {
		title = "Create an account"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render(title))
	for i, in := range m.inputs {
		label := dimStyle.Render(fmt.Sprintf("%-10s", m.labels[i]))
		if i == m.focus {
			label = selectedStyle.Render(fmt.Sprintf("%-10s", m.labels[i]))
		}
		fmt.Fprintf(&b, "  %s %s\n", label, in.View())
	}
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("contacting server...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
	}
	return b.String()
}
