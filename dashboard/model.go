// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/environment"
	"github.com/ledgerline/console/profile"
	"github.com/ledgerline/console/session"
	"github.com/ledgerline/console/view"
)

// Tab identifies which dashboard view is active.
type Tab int

const (
	// TabOverview shows settled volume and user stats.
	TabOverview Tab = iota
	// TabAccounts lists ledger accounts.
	TabAccounts
	// TabUsers lists users.
	TabUsers
	// TabTransactions lists transactions.
	TabTransactions
	// TabLedger lists settled ledger entries.
	TabLedger
)

// Screen identifies the top-level UI mode.
type Screen int

const (
	// ScreenLogin is the unauthenticated landing form.
	ScreenLogin Screen = iota
	// ScreenDashboard is the tabbed data view.
	ScreenDashboard
)

// Views bundles the per-tab fetch state machines the model renders.
type Views struct {
	Overview          *Overview
	Accounts          *view.List[api.Account]
	Users             *view.List[api.User]
	Transactions      *view.List[api.Transaction]
	Ledger            *view.List[api.LedgerEntry]
	AccountDetail     *view.Detail[api.Account]
	AccountActivity   *view.Detail[api.AccountActivity]
	TransactionDetail *view.Detail[api.Transaction]
}

// Deps is everything the model needs injected. The model itself owns
// no session, environment, or fetch state — it renders projections
// and translates keys into operations on these collaborators.
type Deps struct {
	Controller  *session.Controller
	Environment *environment.Store
	Profile     *profile.Syncer
	Client      *api.Client
	Views       Views
	Logger      *slog.Logger
}

// Messages pumped from the subscription channels into the bubbletea
// loop.
type (
	sessionEventMsg       session.Event
	environmentChangedMsg environment.Environment
	profileUpdateMsg      profile.Update
	overviewStateMsg      OverviewState
	accountsStateMsg      view.State[api.Account]
	usersStateMsg         view.State[api.User]
	transactionsStateMsg  view.State[api.Transaction]
	ledgerStateMsg        view.State[api.LedgerEntry]
	accountDetailMsg      view.DetailState[api.Account]
	accountActivityMsg    view.DetailState[api.AccountActivity]
	transactionDetailMsg  view.DetailState[api.Transaction]
	loginResultMsg        struct{ err error }
)

// Model is the top-level bubbletea model for the console.
type Model struct {
	deps   Deps
	ctx    context.Context
	theme  Theme
	keys   KeyMap
	logger *slog.Logger

	width  int
	height int
	ready  bool

	screen    Screen
	activeTab Tab
	cursor    int

	// Latest projections from the view state machines.
	overview     OverviewState
	accounts     view.State[api.Account]
	users        view.State[api.User]
	transactions view.State[api.Transaction]
	ledger       view.State[api.LedgerEntry]

	// Detail drill-down. At most one detail is open at a time.
	accountDetail     view.DetailState[api.Account]
	accountActivity   view.DetailState[api.AccountActivity]
	transactionDetail view.DetailState[api.Transaction]
	detailOpen        bool

	// Identity chrome.
	profile     *api.Profile
	profileErr  error
	environment environment.Environment

	// Subscription channels, pumped by listen commands. Subscribed
	// once at construction; every re-listen reads the same channel, so
	// no published state can fall between subscriptions.
	sessionEvents      <-chan session.Event
	environmentChanges <-chan environment.Environment
	profileUpdates     <-chan profile.Update

	overviewStates          <-chan OverviewState
	accountsStates          <-chan view.State[api.Account]
	usersStates             <-chan view.State[api.User]
	transactionsStates      <-chan view.State[api.Transaction]
	ledgerStates            <-chan view.State[api.LedgerEntry]
	accountDetailStates     <-chan view.DetailState[api.Account]
	accountActivityStates   <-chan view.DetailState[api.AccountActivity]
	transactionDetailStates <-chan view.DetailState[api.Transaction]

	spinner spinner.Model
	login   loginForm

	// Switching into production requires an explicit confirmation;
	// switching back to sandbox never does.
	confirmingProduction bool
}

// NewModel creates the console model. ctx bounds every fetch the
// model starts; cancel it when the program exits.
func NewModel(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loadingSpinner := spinner.New()
	loadingSpinner.Spinner = spinner.Dot

	model := Model{
		deps:               deps,
		ctx:                ctx,
		theme:              DefaultTheme,
		keys:               DefaultKeyMap,
		logger:             logger,
		screen:             ScreenLogin,
		environment:        deps.Environment.Get(),
		sessionEvents:      deps.Controller.Subscribe(),
		environmentChanges: deps.Environment.Subscribe(),
		profileUpdates:     deps.Profile.Subscribe(),

		overviewStates:          deps.Views.Overview.Subscribe(),
		accountsStates:          deps.Views.Accounts.Subscribe(),
		usersStates:             deps.Views.Users.Subscribe(),
		transactionsStates:      deps.Views.Transactions.Subscribe(),
		ledgerStates:            deps.Views.Ledger.Subscribe(),
		accountDetailStates:     deps.Views.AccountDetail.Subscribe(),
		accountActivityStates:   deps.Views.AccountActivity.Subscribe(),
		transactionDetailStates: deps.Views.TransactionDetail.Subscribe(),

		spinner: loadingSpinner,
		login:   newLoginForm(),
	}

	if deps.Controller.State() == session.Active {
		model.screen = ScreenDashboard
	}

	return model
}

// Init implements tea.Model: start the subscription pumps, and when a
// restored session put us straight on the dashboard, activate the
// first tab.
func (model Model) Init() tea.Cmd {
	commands := []tea.Cmd{
		listen(model.sessionEvents, func(event session.Event) tea.Msg { return sessionEventMsg(event) }),
		listen(model.environmentChanges, func(env environment.Environment) tea.Msg { return environmentChangedMsg(env) }),
		listen(model.profileUpdates, func(update profile.Update) tea.Msg { return profileUpdateMsg(update) }),
		listen(model.overviewStates, func(state OverviewState) tea.Msg { return overviewStateMsg(state) }),
		listen(model.accountsStates, func(state view.State[api.Account]) tea.Msg { return accountsStateMsg(state) }),
		listen(model.usersStates, func(state view.State[api.User]) tea.Msg { return usersStateMsg(state) }),
		listen(model.transactionsStates, func(state view.State[api.Transaction]) tea.Msg { return transactionsStateMsg(state) }),
		listen(model.ledgerStates, func(state view.State[api.LedgerEntry]) tea.Msg { return ledgerStateMsg(state) }),
		listen(model.accountDetailStates, func(state view.DetailState[api.Account]) tea.Msg { return accountDetailMsg(state) }),
		listen(model.accountActivityStates, func(state view.DetailState[api.AccountActivity]) tea.Msg { return accountActivityMsg(state) }),
		listen(model.transactionDetailStates, func(state view.DetailState[api.Transaction]) tea.Msg { return transactionDetailMsg(state) }),
		model.spinner.Tick,
	}
	if model.screen == ScreenDashboard {
		model.activateTab(model.activeTab)
	} else {
		commands = append(commands, model.login.focusCmd())
	}
	return tea.Batch(commands...)
}

// listen returns a tea.Cmd that blocks for one value on a
// subscription channel and delivers it as a message. Each handler
// re-issues the listen to keep the pump running.
func listen[T any](channel <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		value, ok := <-channel
		if !ok {
			return nil
		}
		return wrap(value)
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		return model, nil

	case spinner.TickMsg:
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command

	case sessionEventMsg:
		return model.handleSessionEvent(session.Event(message))

	case environmentChangedMsg:
		return model.handleEnvironmentChange(environment.Environment(message))

	case profileUpdateMsg:
		update := profile.Update(message)
		model.profile = update.Profile
		model.profileErr = update.Err
		return model, listen(model.profileUpdates, func(update profile.Update) tea.Msg { return profileUpdateMsg(update) })

	case overviewStateMsg:
		model.overview = OverviewState(message)
		return model, listen(model.overviewStates, func(state OverviewState) tea.Msg { return overviewStateMsg(state) })

	case accountsStateMsg:
		model.accounts = view.State[api.Account](message)
		model.clampCursor()
		return model, listen(model.accountsStates, func(state view.State[api.Account]) tea.Msg { return accountsStateMsg(state) })

	case usersStateMsg:
		model.users = view.State[api.User](message)
		model.clampCursor()
		return model, listen(model.usersStates, func(state view.State[api.User]) tea.Msg { return usersStateMsg(state) })

	case transactionsStateMsg:
		model.transactions = view.State[api.Transaction](message)
		model.clampCursor()
		return model, listen(model.transactionsStates, func(state view.State[api.Transaction]) tea.Msg { return transactionsStateMsg(state) })

	case ledgerStateMsg:
		model.ledger = view.State[api.LedgerEntry](message)
		model.clampCursor()
		return model, listen(model.ledgerStates, func(state view.State[api.LedgerEntry]) tea.Msg { return ledgerStateMsg(state) })

	case accountDetailMsg:
		model.accountDetail = view.DetailState[api.Account](message)
		return model, listen(model.accountDetailStates, func(state view.DetailState[api.Account]) tea.Msg { return accountDetailMsg(state) })

	case accountActivityMsg:
		model.accountActivity = view.DetailState[api.AccountActivity](message)
		return model, listen(model.accountActivityStates, func(state view.DetailState[api.AccountActivity]) tea.Msg { return accountActivityMsg(state) })

	case transactionDetailMsg:
		model.transactionDetail = view.DetailState[api.Transaction](message)
		return model, listen(model.transactionDetailStates, func(state view.DetailState[api.Transaction]) tea.Msg { return transactionDetailMsg(state) })

	case loginResultMsg:
		return model.handleLoginResult(message.err)

	case tea.KeyMsg:
		if model.screen == ScreenLogin {
			return model.handleLoginKeys(message)
		}
		return model.handleDashboardKeys(message)
	}

	return model, nil
}

// handleSessionEvent reacts to controller transitions. Logout — for
// any reason — clears every view and lands on the login screen.
func (model Model) handleSessionEvent(event session.Event) (tea.Model, tea.Cmd) {
	relisten := listen(model.sessionEvents, func(event session.Event) tea.Msg { return sessionEventMsg(event) })

	switch event.Kind {
	case session.EventLoggedIn, session.EventRestored:
		model.screen = ScreenDashboard
		model.activeTab = TabOverview
		model.cursor = 0
		model.detailOpen = false
		model.activateTab(TabOverview)

	case session.EventLoggedOut:
		model.screen = ScreenLogin
		model.detailOpen = false
		model.cursor = 0
		model.confirmingProduction = false
		model.login = newLoginForm()
		if event.Reason == "expired" {
			model.login.notice = "Session expired. Please sign in again."
		}
		views := model.deps.Views
		views.Overview.SessionEnded()
		views.Accounts.SessionEnded()
		views.Users.SessionEnded()
		views.Transactions.SessionEnded()
		views.Ledger.SessionEnded()
		views.AccountDetail.SessionEnded()
		views.AccountActivity.SessionEnded()
		views.TransactionDetail.SessionEnded()
		return model, tea.Batch(relisten, model.login.focusCmd())
	}

	return model, relisten
}

// handleEnvironmentChange propagates the new environment to every
// view: the active one refetches, hidden ones drop their rows, and
// open details close because their ids belong to the other
// environment.
func (model Model) handleEnvironmentChange(env environment.Environment) (tea.Model, tea.Cmd) {
	model.environment = env
	model.detailOpen = false
	model.cursor = 0

	views := model.deps.Views
	views.Overview.EnvironmentChanged(model.ctx)
	views.Accounts.EnvironmentChanged(model.ctx)
	views.Users.EnvironmentChanged(model.ctx)
	views.Transactions.EnvironmentChanged(model.ctx)
	views.Ledger.EnvironmentChanged(model.ctx)
	views.AccountDetail.EnvironmentChanged()
	views.AccountActivity.EnvironmentChanged()
	views.TransactionDetail.EnvironmentChanged()

	return model, listen(model.environmentChanges, func(env environment.Environment) tea.Msg { return environmentChangedMsg(env) })
}

// handleDashboardKeys routes key presses on the dashboard screen.
func (model Model) handleDashboardKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending production confirmation swallows everything except
	// yes/no.
	if model.confirmingProduction {
		switch message.String() {
		case "y", "Y":
			model.confirmingProduction = false
			model.deps.Environment.Set(environment.Production)
		default:
			model.confirmingProduction = false
		}
		return model, nil
	}

	keys := model.keys
	switch {
	case key.Matches(message, keys.Quit):
		return model, tea.Quit

	case key.Matches(message, keys.Logout):
		model.deps.Controller.Logout()
		return model, nil

	case key.Matches(message, keys.ToggleEnvironment):
		if model.environment == environment.Sandbox {
			model.confirmingProduction = true
			return model, nil
		}
		model.deps.Environment.Set(environment.Sandbox)
		return model, nil

	case key.Matches(message, keys.TabOverview):
		return model.switchTab(TabOverview)
	case key.Matches(message, keys.TabAccounts):
		return model.switchTab(TabAccounts)
	case key.Matches(message, keys.TabUsers):
		return model.switchTab(TabUsers)
	case key.Matches(message, keys.TabTransactions):
		return model.switchTab(TabTransactions)
	case key.Matches(message, keys.TabLedger):
		return model.switchTab(TabLedger)

	case key.Matches(message, keys.Back):
		if model.detailOpen {
			model.detailOpen = false
			model.deps.Views.AccountDetail.Clear()
			model.deps.Views.AccountActivity.Clear()
			model.deps.Views.TransactionDetail.Clear()
		}
		return model, nil

	case key.Matches(message, keys.Select):
		return model.openSelection()

	case key.Matches(message, keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
		return model, nil

	case key.Matches(message, keys.Down):
		if model.cursor < model.activeRowCount()-1 {
			model.cursor++
		}
		return model, nil

	case key.Matches(message, keys.NextPage):
		model.cursor = 0
		model.activeList(func(operate listOps) { operate.NextPage(model.ctx) })
		return model, nil

	case key.Matches(message, keys.PrevPage):
		model.cursor = 0
		model.activeList(func(operate listOps) { operate.PrevPage(model.ctx) })
		return model, nil

	case key.Matches(message, keys.CycleRange):
		if model.activeTab == TabOverview {
			model.deps.Views.Overview.SetRange(model.ctx, nextRange(model.deps.Views.Overview.Range()))
		}
		return model, nil

	case key.Matches(message, keys.Refresh):
		return model.refreshActive()
	}

	return model, nil
}

// nextRange cycles ALL -> 1D -> 1H -> ALL.
func nextRange(current VolumeRange) VolumeRange {
	switch current {
	case RangeAll:
		return RangeDay
	case RangeDay:
		return RangeHour
	default:
		return RangeAll
	}
}

// listOps is the subset of list-view operations shared by every row
// type, used where the model acts on "whichever list is active".
type listOps interface {
	NextPage(ctx context.Context)
	PrevPage(ctx context.Context)
	Refresh(ctx context.Context)
}

// activeList invokes operate on the active tab's list view, if the
// active tab has one.
func (model *Model) activeList(operate func(listOps)) {
	views := model.deps.Views
	switch model.activeTab {
	case TabAccounts:
		operate(views.Accounts)
	case TabUsers:
		operate(views.Users)
	case TabTransactions:
		operate(views.Transactions)
	case TabLedger:
		operate(views.Ledger)
	}
}

// switchTab deactivates the old tab's view and activates the new one,
// which resets its page to 1 and fetches.
func (model Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if tab == model.activeTab {
		return model, nil
	}

	model.deactivateTab(model.activeTab)
	model.activeTab = tab
	model.cursor = 0
	model.detailOpen = false
	model.deps.Views.AccountDetail.Clear()
	model.deps.Views.AccountActivity.Clear()
	model.deps.Views.TransactionDetail.Clear()
	model.activateTab(tab)
	return model, nil
}

func (model *Model) activateTab(tab Tab) {
	views := model.deps.Views
	switch tab {
	case TabOverview:
		views.Overview.Activate(model.ctx)
	case TabAccounts:
		views.Accounts.Activate(model.ctx)
	case TabUsers:
		views.Users.Activate(model.ctx)
	case TabTransactions:
		views.Transactions.Activate(model.ctx)
	case TabLedger:
		views.Ledger.Activate(model.ctx)
	}
}

func (model *Model) deactivateTab(tab Tab) {
	views := model.deps.Views
	switch tab {
	case TabOverview:
		views.Overview.Deactivate()
	case TabAccounts:
		views.Accounts.Deactivate()
	case TabUsers:
		views.Users.Deactivate()
	case TabTransactions:
		views.Transactions.Deactivate()
	case TabLedger:
		views.Ledger.Deactivate()
	}
}

// refreshActive refetches whatever the operator is looking at.
func (model Model) refreshActive() (tea.Model, tea.Cmd) {
	if model.activeTab == TabOverview {
		model.deps.Views.Overview.Refresh(model.ctx)
	} else {
		model.activeList(func(operate listOps) { operate.Refresh(model.ctx) })
	}
	return model, nil
}

// openSelection drills into the row under the cursor. Only accounts
// and transactions have detail views.
func (model Model) openSelection() (tea.Model, tea.Cmd) {
	switch model.activeTab {
	case TabAccounts:
		if model.cursor < len(model.accounts.Rows) {
			model.detailOpen = true
			accountID := model.accounts.Rows[model.cursor].ID
			model.deps.Views.AccountDetail.Select(model.ctx, accountID)
			model.deps.Views.AccountActivity.Select(model.ctx, accountID)
		}
	case TabTransactions:
		if model.cursor < len(model.transactions.Rows) {
			model.detailOpen = true
			model.deps.Views.TransactionDetail.Select(model.ctx, model.transactions.Rows[model.cursor].ID)
		}
	}
	return model, nil
}

// activeRowCount returns how many rows the active tab currently
// shows.
func (model *Model) activeRowCount() int {
	switch model.activeTab {
	case TabAccounts:
		return len(model.accounts.Rows)
	case TabUsers:
		return len(model.users.Rows)
	case TabTransactions:
		return len(model.transactions.Rows)
	case TabLedger:
		return len(model.ledger.Rows)
	default:
		return 0
	}
}

// clampCursor keeps the cursor inside the freshly-committed row set.
func (model *Model) clampCursor() {
	if count := model.activeRowCount(); model.cursor >= count {
		if count == 0 {
			model.cursor = 0
		} else {
			model.cursor = count - 1
		}
	}
}

// anyLoading reports whether the active tab has a fetch in flight,
// driving the spinner in the status bar.
func (model *Model) anyLoading() bool {
	switch model.activeTab {
	case TabOverview:
		return model.overview.Loading
	case TabAccounts:
		return model.accounts.Loading
	case TabUsers:
		return model.users.Loading
	case TabTransactions:
		return model.transactions.Loading
	case TabLedger:
		return model.ledger.Loading
	}
	return false
}
