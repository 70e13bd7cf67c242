package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionJSON(t *testing.T) {
	cmd := newVersionCmd("1.2.3", "abc1234", "2026-08-30")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var info buildInfo
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc1234" || info.Built != "2026-08-30" {
		t.Errorf("unexpected build info: %+v", info)
	}
	if info.GoVersion == "" {
		t.Error("go_version is empty")
	}
}

func TestVersionPlain(t *testing.T) {
	cmd := newVersionCmd("1.2.3", "abc1234", "2026-08-30")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "logbook 1.2.3") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
