package tui

import "github.com/andy/invoicer/internal/export"

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// exportDoneMsg delivers the result of a background export
type exportDoneMsg struct {
	results []export.Result
	err     error
}
