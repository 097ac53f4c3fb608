package procrunner

import (
	"context"
	"testing"
	"time"
)

func TestRun_SuccessCapturesStdout(t *testing.T) {
	res, err := Run(context.Background(), time.Second, "echo", "hello")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
}

func TestRun_NonzeroExitIsNotAnError(t *testing.T) {
	res, err := Run(context.Background(), time.Second, "false")
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (nonzero exit is not a Go error)", err)
	}
	if res.ExitCode == 0 {
		t.Errorf("ExitCode = 0, want nonzero")
	}
}

func TestRun_TimeoutIsFlagged(t *testing.T) {
	res, err := Run(context.Background(), 50*time.Millisecond, "sleep", "5")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.TimedOut {
		t.Errorf("TimedOut = false, want true")
	}
}

func TestRun_MissingBinaryReturnsError(t *testing.T) {
	_, err := Run(context.Background(), time.Second, "definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Errorf("expected error for missing binary")
	}
}
