//go:build !darwin

package autostart

import "errors"

var errUnsupported = errors.New("autostart is only supported on macOS")

type stubManager struct{}

func NewWithMode(Mode) Manager { return stubManager{} }

func (stubManager) ServiceName() string        { return "sysalert" }
func (stubManager) IsInstalled() (bool, error) { return false, nil }
func (stubManager) Install(string) error       { return errUnsupported }
func (stubManager) Uninstall() error           { return errUnsupported }
