//go:build !windows

package runner

import (
	"context"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/ahktools/ahkcheck/domain"
)

func TestRun_KillsDescendants(t *testing.T) {
	r := New()

	// The shell prints its background child's pid, then blocks on it. The
	// whole process group must be gone once Run returns, not just the shell.
	start := time.Now()
	result := r.Run(context.Background(), "sh", []string{"-c", "sleep 60 & echo $!; wait"}, domain.RunOptions{
		Timeout:     200 * time.Millisecond,
		GracePeriod: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if elapsed > 5*time.Second {
		t.Errorf("Run blocked on a descendant's pipe: %v", elapsed)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(result.Stdout))
	if err != nil {
		t.Fatalf("could not read the descendant pid from stdout %q", result.Stdout)
	}
	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(pid, 0); err == nil {
		t.Errorf("descendant process %d survived termination", pid)
	}
}
