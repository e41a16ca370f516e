// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/environment"
)

// tabTitles indexes by Tab.
var tabTitles = []string{"Overview", "Accounts", "Users", "Transactions", "Ledger"}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "loading..."
	}
	if model.screen == ScreenLogin {
		return model.renderLogin()
	}
	return model.renderDashboard()
}

func (model Model) renderLogin() string {
	theme := model.theme
	title := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render("Ledgerline Console")

	var lines []string
	lines = append(lines, title, "")
	if model.login.notice != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render(model.login.notice), "")
	}
	lines = append(lines,
		"  "+model.login.email.View(),
		"  "+model.login.password.View(),
		"",
	)
	if model.login.submitting {
		lines = append(lines, model.spinner.View()+" signing in...")
	} else if model.login.errMessage != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(model.login.errMessage))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.HelpText).Render("↵ sign in · tab switch field · C-c quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center, box)
}

func (model Model) renderDashboard() string {
	sections := []string{
		model.renderHeader(),
		model.renderTabBar(),
		model.renderBody(),
		model.renderStatusBar(),
	}
	return strings.Join(sections, "\n")
}

// renderHeader shows the product name, the environment badge, and the
// operator identity.
func (model Model) renderHeader() string {
	theme := model.theme
	name := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render("Ledgerline")

	badgeColor := theme.SandboxBadge
	if model.environment == environment.Production {
		badgeColor = theme.ProductionBadge
	}
	badge := lipgloss.NewStyle().
		Foreground(lipgloss.Color("231")).
		Background(badgeColor).
		Padding(0, 1).
		Bold(model.environment == environment.Production).
		Render(strings.ToUpper(string(model.environment)))

	identity := ""
	if model.profile != nil {
		identity = model.profile.Name
		if model.profile.BusinessName != "" {
			identity += " · " + model.profile.BusinessName
		}
	}
	identityStyled := lipgloss.NewStyle().Foreground(theme.FaintText).Render(identity)

	left := name + " " + badge
	gap := model.width - lipgloss.Width(left) - lipgloss.Width(identityStyled)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + identityStyled
}

func (model Model) renderTabBar() string {
	theme := model.theme
	active := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(theme.FaintText)

	var parts []string
	for i, title := range tabTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		if Tab(i) == model.activeTab {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func (model Model) renderBody() string {
	if model.detailOpen {
		return model.renderDetail()
	}
	switch model.activeTab {
	case TabOverview:
		return model.renderOverview()
	case TabAccounts:
		return renderTable(model.theme, model.cursor,
			[]string{"ID", "NAME", "TYPE", "STATUS", "BALANCE"},
			model.accounts.Rows, func(account api.Account) []string {
				return []string{account.ID, account.Name, account.Type,
					account.Status, account.Balance + " " + account.Currency}
			})
	case TabUsers:
		return renderTable(model.theme, model.cursor,
			[]string{"ID", "NAME", "EMAIL", "ROLE", "STATUS"},
			model.users.Rows, func(user api.User) []string {
				return []string{user.ID, strings.TrimSpace(user.FirstName + " " + user.LastName),
					user.Email, user.Role, user.Status}
			})
	case TabTransactions:
		return renderTable(model.theme, model.cursor,
			[]string{"ID", "TYPE", "STATUS", "AMOUNT", "CREATED"},
			model.transactions.Rows, func(transaction api.Transaction) []string {
				return []string{transaction.ID, transaction.Type, transaction.Status,
					transaction.Amount + " " + transaction.Currency, transaction.CreatedAt}
			})
	case TabLedger:
		return renderTable(model.theme, model.cursor,
			[]string{"ID", "ACCOUNT", "DIRECTION", "AMOUNT", "CREATED"},
			model.ledger.Rows, func(entry api.LedgerEntry) []string {
				return []string{entry.ID, entry.AccountID, entry.Direction,
					fmt.Sprintf("%.2f %s", entry.Amount, entry.Currency), entry.CreatedAt}
			})
	}
	return ""
}

// renderTable lays out rows in fixed-width columns with the cursor
// row highlighted.
func renderTable[T any](theme Theme, cursor int, headers []string, rows []T, project func(T) []string) string {
	const columnWidth = 22

	headerStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)
	selected := lipgloss.NewStyle().
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground)

	var builder strings.Builder
	builder.WriteString(headerStyle.Render(joinColumns(headers, columnWidth)))
	builder.WriteString("\n")

	if len(rows) == 0 {
		builder.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("  (no records)"))
		return builder.String()
	}

	for i, row := range rows {
		line := joinColumns(project(row), columnWidth)
		if i == cursor {
			builder.WriteString(selected.Render(line))
		} else {
			builder.WriteString(normal.Render(line))
		}
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}

func joinColumns(cells []string, width int) string {
	var parts []string
	for _, cell := range cells {
		if len(cell) > width-2 {
			cell = cell[:width-3] + "…"
		}
		parts = append(parts, fmt.Sprintf("%-*s", width, cell))
	}
	return strings.TrimRight(strings.Join(parts, ""), " ")
}

// renderOverview draws the settled-volume chart and user stats.
func (model Model) renderOverview() string {
	theme := model.theme
	state := model.overview

	var builder strings.Builder
	builder.WriteString(lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render(
		fmt.Sprintf("Settled volume · %s · total %.2f %s",
			state.Volume.Range, state.Volume.Total, state.Volume.Currency)))
	builder.WriteString("\n\n")
	builder.WriteString(renderVolumeChart(theme, state.Volume))
	builder.WriteString("\n\n")
	builder.WriteString(lipgloss.NewStyle().Foreground(theme.NormalText).Render(
		fmt.Sprintf("Users: %d total, %d active", state.Stats.Total, state.Stats.Active)))
	return builder.String()
}

// renderVolumeChart draws one horizontal bar per bucket, scaled to
// the largest bucket.
func renderVolumeChart(theme Theme, volume Volume) string {
	const barWidth = 40

	var maxSum float64
	for _, bucket := range volume.Buckets {
		if bucket.Sum > maxSum {
			maxSum = bucket.Sum
		}
	}

	labelFormat := "2006-01-02"
	if volume.Range != RangeAll {
		labelFormat = "15:04"
	}

	barStyle := lipgloss.NewStyle().Foreground(theme.ChartBar)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var lines []string
	for _, bucket := range volume.Buckets {
		width := 0
		if maxSum > 0 {
			width = int(bucket.Sum / maxSum * barWidth)
		}
		bar := barStyle.Render(strings.Repeat("█", width))
		label := faint.Render(bucket.Start.UTC().Format(labelFormat))
		lines = append(lines, fmt.Sprintf("%s %s %s", label, bar, faint.Render(fmt.Sprintf("%.2f", bucket.Sum))))
	}
	return strings.Join(lines, "\n")
}

// renderDetail shows the open account or transaction record.
func (model Model) renderDetail() string {
	theme := model.theme
	label := lipgloss.NewStyle().Foreground(theme.FaintText)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)

	field := func(name, content string) string {
		return label.Render(fmt.Sprintf("%-14s", name)) + value.Render(content)
	}

	var lines []string
	switch {
	case model.accountDetail.ID != "":
		state := model.accountDetail
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render("Account "+state.ID))
		if state.Record != nil {
			account := state.Record
			lines = append(lines,
				field("Name", account.Name),
				field("Type", account.Type),
				field("Status", account.Status),
				field("Balance", account.Balance+" "+account.Currency),
				field("Created", account.CreatedAt),
			)
		}
		lines = append(lines, detailFooter(model, state.Loading, state.Err))
		lines = append(lines, "", model.renderAccountActivity())

	case model.transactionDetail.ID != "":
		state := model.transactionDetail
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render("Transaction "+state.ID))
		if state.Record != nil {
			transaction := state.Record
			lines = append(lines,
				field("Account", transaction.AccountID),
				field("Type", transaction.Type),
				field("Status", transaction.Status),
				field("Amount", transaction.Amount+" "+transaction.Currency),
				field("Description", transaction.Description),
				field("Created", transaction.CreatedAt),
				field("Settled", transaction.SettledAt),
			)
		}
		lines = append(lines, detailFooter(model, state.Loading, state.Err))
	}

	return strings.Join(lines, "\n")
}

// renderAccountActivity lists the open account's most recent
// transactions below the detail fields.
func (model Model) renderAccountActivity() string {
	theme := model.theme
	state := model.accountActivity

	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render("Recent transactions")
	if state.Loading {
		return header + "\n" + model.spinner.View() + " loading..."
	}
	if state.Err != nil {
		return header + "\n" + lipgloss.NewStyle().Foreground(theme.ErrorText).Render(api.UserMessage(state.Err))
	}
	if state.Record == nil || len(state.Record.Transactions) == 0 {
		return header + "\n" + lipgloss.NewStyle().Foreground(theme.FaintText).Render("  (none)")
	}

	table := renderTable(theme, -1,
		[]string{"ID", "TYPE", "STATUS", "AMOUNT", "CREATED"},
		state.Record.Transactions, func(transaction api.Transaction) []string {
			return []string{transaction.ID, transaction.Type, transaction.Status,
				transaction.Amount + " " + transaction.Currency, transaction.CreatedAt}
		})
	return header + "\n" + table
}

func detailFooter(model Model, loading bool, err error) string {
	if loading {
		return model.spinner.View() + " loading..."
	}
	if err != nil {
		return lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render(api.UserMessage(err))
	}
	return ""
}

// renderStatusBar shows pagination, loading, errors, and key help.
func (model Model) renderStatusBar() string {
	theme := model.theme

	if model.confirmingProduction {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(theme.ProductionBadge).Padding(0, 1).
			Render("Switch to PRODUCTION? This is live data. y/n")
	}

	var left string
	switch {
	case model.anyLoading():
		left = model.spinner.View() + " loading"
	case model.activeError() != nil:
		left = lipgloss.NewStyle().Foreground(theme.ErrorText).Render(api.UserMessage(model.activeError()))
	default:
		if meta, ok := model.activeMeta(); ok && meta.TotalPages > 0 {
			left = fmt.Sprintf("page %d/%d · %d records", meta.Page, meta.TotalPages, meta.TotalCount)
		}
	}

	help := lipgloss.NewStyle().Foreground(theme.HelpText).
		Render("1-5 tabs · n/p page · ↵ open · e env · v range · r refresh · C-l log out · q quit")

	gap := model.width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + help
}

// activeError returns the active tab's projection error.
func (model Model) activeError() error {
	switch model.activeTab {
	case TabOverview:
		return model.overview.Err
	case TabAccounts:
		return model.accounts.Err
	case TabUsers:
		return model.users.Err
	case TabTransactions:
		return model.transactions.Err
	case TabLedger:
		return model.ledger.Err
	}
	return nil
}

// activeMeta returns the active tab's pagination block.
func (model Model) activeMeta() (api.PageMeta, bool) {
	switch model.activeTab {
	case TabAccounts:
		return model.accounts.Meta, true
	case TabUsers:
		return model.users.Meta, true
	case TabTransactions:
		return model.transactions.Meta, true
	case TabLedger:
		return model.ledger.Meta, true
	}
	return api.PageMeta{}, false
}
