package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDoctorCmd_Structure(t *testing.T) {
	cmd := doctorCmd()
	if cmd.Use != "doctor" {
		t.Errorf("doctorCmd().Use = %q, want %q", cmd.Use, "doctor")
	}
}

func TestRunDoctor_NoCrashOutsideProject(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(originalWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	cmd := doctorCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runDoctor(cmd); err != nil {
		t.Errorf("runDoctor() = %v, want nil", err)
	}
	if out.Len() == 0 {
		t.Error("runDoctor() produced no output")
	}
}

func TestRunDoctor_ReportsConfigValid(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	originalWd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(originalWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	cmd := doctorCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runDoctor(cmd); err != nil {
		t.Fatalf("runDoctor() = %v, want nil", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("config")) {
		t.Errorf("doctor output missing config check: %s", out.String())
	}
}
