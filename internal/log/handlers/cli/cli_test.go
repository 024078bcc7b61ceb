package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/fatih/color"
)

func newTestLogger() (*log.Logger, *bytes.Buffer) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	return &log.Logger{Handler: New(buf), Level: log.DebugLevel}, buf
}

func TestHandler(t *testing.T) {
	t.Run("plain messages", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithFields(log.Fields{"scan_id": "abc", "target": "gateway"}).Warn("[gateway] is not safe")
		out := buf.String()
		if !strings.Contains(out, "[gateway] is not safe") || !strings.Contains(out, "target=gateway") {
			t.Fatal("unexpected output", out)
		}
		if strings.Contains(out, "scan_id") {
			t.Fatal("scan_id should be hidden", out)
		}
	})

	t.Run("section title", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithFields(log.Fields{"type": "section_title", "title": "Scan results"}).Info("Scan results")
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 || !strings.Contains(lines[1], "Scan results") {
			t.Fatal("unexpected output", buf.String())
		}
	})

	t.Run("target results", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithFields(log.Fields{
			"type": "target_result", "name": "gateway", "kind": "ping", "address": "10.0.0.1",
			"passed": true, "verdict": "is available", "failure": "",
		}).Info("target result")
		logger.WithFields(log.Fields{
			"type": "target_result", "name": "ssh", "kind": "tcp", "address": "10.0.1.5:22",
			"passed": false, "verdict": "is not safe", "failure": "",
		}).Info("target result")
		logger.WithFields(log.Fields{
			"type": "target_result", "name": "intranet", "kind": "http", "address": "http://10.0.0.8/",
			"passed": false, "verdict": "is not available", "failure": "connection_refused",
		}).Info("target result")
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatal("unexpected output", buf.String())
		}
		if !strings.Contains(lines[0], "✓ gateway") || !strings.Contains(lines[0], "is available") {
			t.Fatal("unexpected first line", lines[0])
		}
		if !strings.Contains(lines[1], "✗ ssh") || !strings.Contains(lines[1], "is not safe") {
			t.Fatal("unexpected second line", lines[1])
		}
		if !strings.HasSuffix(lines[2], "connection_refused") {
			t.Fatal("unexpected third line", lines[2])
		}
	})

	t.Run("scan summary", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithFields(log.Fields{
			"type": "scan_summary", "total": 3, "checked": 2, "failed": 1, "skipped": 1,
			"interrupted": true, "duration": 1.25,
		}).Info("scan summary")
		expect := "2 checked, 1 failed, 1 skipped in 1.25s (interrupted)\n"
		if buf.String() != expect {
			t.Fatalf("unexpected output %q", buf.String())
		}
	})

	t.Run("empty scan summary", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithFields(log.Fields{"type": "scan_summary", "total": 0}).Info("scan summary")
		if buf.String() != "No targets\n" {
			t.Fatalf("unexpected output %q", buf.String())
		}
	})

	t.Run("unknown types use the default format", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithFields(log.Fields{"type": "progress"}).Info("halfway")
		if !strings.Contains(buf.String(), "halfway") {
			t.Fatal("unexpected output", buf.String())
		}
	})
}

func TestRightPad(t *testing.T) {
	colored := color.New(color.FgRed)
	colored.EnableColor()
	s := RightPad(colored.Sprint("abc"), 5)
	if EscapeAwareRuneCountInString(s) != 5 {
		t.Fatalf("unexpected padding %q", s)
	}
	if RightPad("toolong", 3) != "toolong" {
		t.Fatal("should not truncate")
	}
}
