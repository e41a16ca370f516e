// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"strings"

	"github.com/ledgerline/console/api"
)

// UserStats summarizes the user collection for the overview tab.
type UserStats struct {
	// Total is every user in the environment.
	Total int
	// Active counts users with active status, excluding admins —
	// admins are operators, not customers of the business.
	Active int
}

// CountUsers reduces the drained user collection to overview stats.
func CountUsers(users []api.User) UserStats {
	stats := UserStats{Total: len(users)}
	for _, user := range users {
		if !strings.EqualFold(user.Status, "active") {
			continue
		}
		if strings.EqualFold(user.Role, "admin") {
			continue
		}
		stats.Active++
	}
	return stats
}
