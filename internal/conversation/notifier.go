package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// PrintFunc prints one formatted status line. It matches display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier writes status lines to the terminal surface's status pane.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
	urgent  PrintFunc
}

// NewCLINotifier creates a notifier. If printFn is nil, fmt.Printf is used.
// urgentFn defaults to printFn.
func NewCLINotifier(log *logger.Logger, printFn, urgentFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	if urgentFn == nil {
		urgentFn = printFn
	}
	return &CLINotifier{log: log, printFn: printFn, urgent: urgentFn}
}

// Notify prints a normal status line.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s", message)
	return nil
}

// NotifyUrgent prints a status line in the urgent style.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.urgent("%s", message)
	return nil
}
