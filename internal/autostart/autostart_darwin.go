//go:build darwin

package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const jobLabel = "com.sysalert.agent"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>com.sysalert.agent</string>
    <key>ProgramArguments</key>
    <array>
        <string>{execPath}</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{logDir}/sysalert.stdout.log</string>
    <key>StandardErrorPath</key>
    <string>{logDir}/sysalert.stderr.log</string>
</dict>
</plist>
`

type darwinManager struct {
	mode      Mode
	plistPath string
}

func NewWithMode(mode Mode) Manager {
	m := &darwinManager{mode: mode}
	if mode == UserMode {
		home, _ := os.UserHomeDir()
		m.plistPath = filepath.Join(home, "Library", "LaunchAgents", jobLabel+".plist")
	} else {
		m.plistPath = filepath.Join("/Library/LaunchDaemons", jobLabel+".plist")
	}
	return m
}

func (d *darwinManager) ServiceName() string { return jobLabel }

func (d *darwinManager) IsInstalled() (bool, error) {
	_, err := os.Stat(d.plistPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking plist file: %w", err)
	}
	return true, nil
}

func (d *darwinManager) Install(execPath string) error {
	logDir := "/var/log"
	if d.mode == UserMode {
		home, _ := os.UserHomeDir()
		logDir = filepath.Join(home, ".sysalert", "log")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(d.plistPath), 0755); err != nil {
			return fmt.Errorf("creating LaunchAgents directory: %w", err)
		}
	}

	plist := strings.ReplaceAll(plistTemplate, "{execPath}", execPath)
	plist = strings.ReplaceAll(plist, "{logDir}", logDir)
	if err := os.WriteFile(d.plistPath, []byte(plist), 0644); err != nil {
		return fmt.Errorf("creating plist: %w", err)
	}
	if err := exec.Command("launchctl", "load", "-w", d.plistPath).Run(); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	return nil
}

func (d *darwinManager) Uninstall() error {
	_ = exec.Command("launchctl", "unload", d.plistPath).Run()
	if err := os.Remove(d.plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing plist: %w", err)
	}
	return nil
}
