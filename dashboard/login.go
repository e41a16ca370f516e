// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ledgerline/console/api"
)

// loginForm is the unauthenticated landing screen: email and password
// inputs and a submit path through the session controller.
type loginForm struct {
	email    textinput.Model
	password textinput.Model

	// focusIndex is 0 for email, 1 for password.
	focusIndex int

	// submitting disables input while a login request is in flight.
	submitting bool

	// errMessage is the user-facing failure from the last attempt.
	errMessage string

	// notice is informational text ("Session expired..."), distinct
	// from an error.
	notice string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 254
	password.Width = 40

	return loginForm{email: email, password: password}
}

// focusCmd puts the cursor in the email field.
func (form *loginForm) focusCmd() tea.Cmd {
	form.focusIndex = 0
	return form.email.Focus()
}

// handleLoginKeys routes key presses on the login screen.
func (model Model) handleLoginKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := &model.login

	switch message.String() {
	case "ctrl+c":
		return model, tea.Quit

	case "tab", "shift+tab", "up", "down":
		if form.submitting {
			return model, nil
		}
		form.focusIndex = 1 - form.focusIndex
		if form.focusIndex == 0 {
			form.password.Blur()
			return model, form.email.Focus()
		}
		form.email.Blur()
		return model, form.password.Focus()

	case "enter":
		if form.submitting {
			return model, nil
		}
		if form.focusIndex == 0 {
			// Enter on the email field moves to the password.
			form.focusIndex = 1
			form.email.Blur()
			return model, form.password.Focus()
		}
		if form.email.Value() == "" || form.password.Value() == "" {
			form.errMessage = "Email and password are required."
			return model, nil
		}
		form.submitting = true
		form.errMessage = ""
		form.notice = ""
		return model, model.submitLogin(form.email.Value(), form.password.Value())
	}

	var command tea.Cmd
	if form.focusIndex == 0 {
		form.email, command = form.email.Update(message)
	} else {
		form.password, command = form.password.Update(message)
	}
	return model, command
}

// submitLogin authenticates and hands the payload to the session
// controller. The controller's event drives the screen change; this
// command only reports failure back to the form.
func (model Model) submitLogin(email, password string) tea.Cmd {
	client := model.deps.Client
	controller := model.deps.Controller
	ctx := model.ctx
	return func() tea.Msg {
		auth, err := client.Login(ctx, api.LoginRequest{Email: email, Password: password})
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{err: controller.HandleAuthSuccess(auth)}
	}
}

// handleLoginResult surfaces a failed attempt on the form. Success
// needs no handling here — the controller's logged-in event switches
// the screen.
func (model Model) handleLoginResult(err error) (tea.Model, tea.Cmd) {
	model.login.submitting = false
	if err != nil {
		model.login.errMessage = api.UserMessage(err)
		model.login.password.SetValue("")
	}
	return model, nil
}
