package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/hammamikhairi/foodvision/internal/logger"
)

func TestCLINotifierRoutesByUrgency(t *testing.T) {
	var normal, urgent []string
	n := NewCLINotifier(logger.New(logger.LevelOff, nil),
		func(format string, a ...interface{}) { normal = append(normal, fmt.Sprintf(format, a...)) },
		func(format string, a ...interface{}) { urgent = append(urgent, fmt.Sprintf(format, a...)) },
	)

	ctx := context.Background()
	if err := n.Notify(ctx, "Detected pizza"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.NotifyUrgent(ctx, "Network error"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(normal) != 1 || normal[0] != "Detected pizza" {
		t.Errorf("unexpected normal lines: %v", normal)
	}
	if len(urgent) != 1 || urgent[0] != "Network error" {
		t.Errorf("unexpected urgent lines: %v", urgent)
	}
}

func TestCLINotifierUrgentDefaultsToPrint(t *testing.T) {
	var lines []string
	n := NewCLINotifier(logger.New(logger.LevelOff, nil),
		func(format string, a ...interface{}) { lines = append(lines, fmt.Sprintf(format, a...)) }, nil)
	_ = n.NotifyUrgent(context.Background(), "100% sure")
	if len(lines) != 1 || lines[0] != "100% sure" {
		t.Errorf("unexpected lines: %v", lines)
	}
}
