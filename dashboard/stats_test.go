// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"testing"

	"github.com/ledgerline/console/api"
)

func TestCountUsersExcludesAdminsAndInactive(t *testing.T) {
	users := []api.User{
		{ID: "usr_1", Status: "active", Role: "member"},
		{ID: "usr_2", Status: "Active", Role: "ADMIN"},
		{ID: "usr_3", Status: "invited", Role: "member"},
		{ID: "usr_4", Status: "ACTIVE", Role: "viewer"},
	}

	stats := CountUsers(users)
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.Active != 2 {
		t.Errorf("active = %d, want 2 (admin and invited excluded)", stats.Active)
	}
}

func TestCountUsersEmpty(t *testing.T) {
	stats := CountUsers(nil)
	if stats.Total != 0 || stats.Active != 0 {
		t.Errorf("stats = %+v, want zeroes", stats)
	}
}
