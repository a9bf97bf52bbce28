package api

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	saved := baseLogger
	baseLogger = log.New(&buf, "", 0)
	t.Cleanup(func() { baseLogger = saved })
	return &buf
}

func TestLogLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel("warn")
	defer SetLogLevel("info")

	Infof("fetching %d records", 3)
	Warnf("slow page")
	if strings.Contains(buf.String(), "fetching") {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN] slow page") {
		t.Fatalf("warn message missing: %s", buf.String())
	}
}

func TestInfofNoDoubleFormattingWithPercent(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel("info")

	// a message already containing % must not be re-run through fmt
	msg := "fetched 240 records (100% of expected)"
	Infof(msg)
	out := buf.String()
	if !strings.Contains(out, "(100% of expected)") {
		t.Fatalf("log output mangled percent: %s", out)
	}
	if strings.Contains(out, "MISSING") {
		t.Fatalf("log output shows fmt artifact: %s", out)
	}
}

func TestSetLogLevelIgnoresUnknown(t *testing.T) {
	SetLogLevel("info")
	SetLogLevel("nonsense")
	if getLevel() != LevelInfo {
		t.Fatalf("unknown level should be ignored, got %v", getLevel())
	}
}
