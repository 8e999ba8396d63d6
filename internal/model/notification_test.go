package model

import "testing"

func TestShouldNotify(t *testing.T) {
	defaults := DefaultNotificationPreferences(1)

	allOff := defaults
	allOff.EmailNotifications = false
	allOff.PushNotifications = false

	noUpdates := defaults
	noUpdates.NotifyOnClaimUpdates = false

	tests := []struct {
		name  string
		prefs NotificationPreferences
		event string
		want  bool
	}{
		{"new claim by default", defaults, EventNewClaim, true},
		{"decision by default", defaults, EventClaimRejected, true},
		{"more info by default", defaults, EventClaimMoreInfo, true},
		{"system updates off by default", defaults, EventSystemUpdate, false},
		{"unknown event delivered", defaults, "something_else", true},
		{"all channels off", allOff, EventNewClaim, false},
		{"all channels off unknown event", allOff, "something_else", false},
		{"claim updates disabled", noUpdates, EventMoreInfoResponse, false},
		{"claim updates disabled keeps new claims", noUpdates, EventNewClaim, true},
	}

	for _, tt := range tests {
		if got := tt.prefs.ShouldNotify(tt.event); got != tt.want {
			t.Errorf("%s: ShouldNotify(%q) = %v, want %v", tt.name, tt.event, got, tt.want)
		}
	}
}

func TestClaimTerminal(t *testing.T) {
	for _, s := range []string{ClaimStatusApproved, ClaimStatusRejected} {
		if !ClaimTerminal(s) {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []string{ClaimStatusPending, ClaimStatusPendingMoreInfo, ClaimStatusFlagged} {
		if ClaimTerminal(s) {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}
}
