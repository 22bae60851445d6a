package tools

import (
	"context"
	"strings"
	"testing"
	"time"
)

func Test_StatusHandler_ReportsWorkspace(t *testing.T) {
	h := &StatusHandler{
		Service: newTestService(t, nil, map[string]string{
			"main.go":   "package main\n",
			"util.go":   "package main\n",
			"README.md": "# readme\n",
		}),
		StartTime: time.Now().Add(-90 * time.Second),
		Logger:    testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{
		"codescope-mcp Status",
		"Workspaces: 1",
		"Indexed files: 3",
		"Uptime: 1m30s",
		"go",
		"markdown",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected status output to contain %q, got:\n%s", want, text)
		}
	}
}

func Test_StatusHandler_NoWorkspaces(t *testing.T) {
	h := &StatusHandler{
		Service:   newTestService(t, nil, nil),
		StartTime: time.Now(),
		Logger:    testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "Workspaces: 1") {
		// newTestService always registers its temp root even with no files
		t.Errorf("expected one registered workspace, got:\n%s", resultText(t, result))
	}
}

func Test_FormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %s, want %s", tc.d, got, tc.want)
		}
	}
}
