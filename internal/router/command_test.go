package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCommand(t *testing.T) {
	cases := []struct {
		text    string
		command Command
		ok      bool
	}{
		{"/start", CommandStart, true},
		{"/help", CommandHelp, true},
		{"/cancel", CommandCancel, true},
		{"/accounts", CommandAccounts, true},
		{"/START", CommandStart, true},
		{"  /cancel  ", CommandCancel, true},
		{"/cancel please", CommandCancel, true},
		{"/accounts@masroufy_bot", CommandAccounts, true},
		{"/unknown", "", false},
		{"cancel", "", false},
		{"paid 50 for coffee", "", false},
		{"", "", false},
		{"text with /cancel inside", "", false},
	}

	for _, tc := range cases {
		cmd, ok := DetectCommand(tc.text)
		assert.Equal(t, tc.ok, ok, "text %q", tc.text)
		assert.Equal(t, tc.command, cmd, "text %q", tc.text)
	}
}
