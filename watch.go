package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/medreminder/internal/notify"
	"github.com/vcscsvcscs/medreminder/internal/reminder"
	"go.uber.org/zap"
)

func newWatchCmd(envFile *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Ring reminders for one user on this machine",
		Long: "Runs a reminder session for one user with desktop notifications and a looping beep.\n" +
			"While an alert rings, type t (taken), m (missed) or s (snooze) and press enter. q quits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			desktop := notify.NewDesktop(a.logger)
			if desktop.RequestPermission() != notify.PermissionGranted {
				a.logger.Warn("desktop notifications unavailable")
			}

			manager := reminder.NewManager(reminder.ManagerDeps{
				Logs:        a.logs,
				Medications: a.medications,
				Settings:    a.settings,
				Auditor:     a.audit,
				Notifier:    desktop,
				Player:      notify.NewBeepPlayer(a.logger),
			}, reminder.PollerConfig{
				Interval:    a.cfg.Reminder.PollInterval,
				AlarmWindow: a.cfg.Reminder.AlarmWindow,
				Location:    a.location,
			}, a.logger)
			defer manager.StopAll()

			session := manager.Start(userID)
			return watch(ctx, session, os.Stdin, cmd.OutOrStdout(), a.logger)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user whose doses are watched")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// watch prints session events and applies actions read from in until in is
// exhausted, "q" is read or ctx ends
func watch(ctx context.Context, session *reminder.Session, in io.Reader, out io.Writer, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(out, "watching reminders for %s\n", session.UserID())

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			printEvent(out, evt)
		case line, ok := <-lines:
			if !ok || line == "q" {
				return nil
			}
			if err := applyAction(ctx, session, line); err != nil {
				if errors.Is(err, reminder.ErrNoActiveAlert) {
					fmt.Fprintln(out, "no alert is ringing")
					continue
				}
				logger.Error("reminder action failed", zap.String("action", line), zap.Error(err))
				fmt.Fprintf(out, "failed: %v\n", err)
			}
		}
	}
}

func applyAction(ctx context.Context, session *reminder.Session, action string) error {
	switch action {
	case "t":
		return session.Take(ctx)
	case "m":
		return session.Miss(ctx)
	case "s":
		return session.Snooze()
	case "":
		return nil
	default:
		return fmt.Errorf("unknown action %q, use t, m, s or q", action)
	}
}

func printEvent(out io.Writer, evt reminder.Event) {
	if evt.Alert == nil {
		fmt.Fprintf(out, "[%s] %s\n", evt.At.Format("15:04:05"), evt.Type)
		return
	}

	log := evt.Alert.Log
	line := fmt.Sprintf("[%s] %s: %s %s (due %s)",
		evt.At.Format("15:04:05"),
		evt.Type,
		log.MedicationName(),
		log.MedicationDosage(),
		log.ScheduledTime.Format("15:04"),
	)
	if evt.Error != "" {
		line += ": " + evt.Error
	}
	fmt.Fprintln(out, line)
	if evt.Type == reminder.EventOpened {
		fmt.Fprintln(out, "  t = taken, m = missed, s = snooze")
	}
}
