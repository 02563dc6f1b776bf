// Package notify provides the best-effort side effects of a ringing reminder:
// system notifications and looped alarm audio.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Permission is the notification permission state of the host
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notifier shows one-shot system notifications.
// A missing capability must never surface as a panic; implementations report
// PermissionDenied instead.
type Notifier interface {
	Permission() Permission
	RequestPermission() Permission
	Notify(title, body, tag string) error
}

// Nop is a Notifier for headless sessions. It never has permission.
type Nop struct{}

func (Nop) Permission() Permission        { return PermissionDenied }
func (Nop) RequestPermission() Permission { return PermissionDenied }
func (Nop) Notify(string, string, string) error {
	return nil
}

// notifyFunc matches beeep.Notify
type notifyFunc func(title, message string, icon any) error

// Desktop shows notifications through the host notification daemon.
// Notifications sharing a tag are shown once.
type Desktop struct {
	mu         sync.Mutex
	permission Permission
	shown      map[string]struct{}
	notify     notifyFunc
	logger     *zap.Logger
}

// NewDesktop creates a desktop notifier
func NewDesktop(logger *zap.Logger) *Desktop {
	return &Desktop{
		permission: PermissionDefault,
		shown:      make(map[string]struct{}),
		notify:     beeep.Notify,
		logger:     logger,
	}
}

// Permission returns the current permission state
func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// RequestPermission grants permission. A desktop session has no consent prompt.
func (d *Desktop) RequestPermission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission == PermissionDefault {
		d.permission = PermissionGranted
	}
	return d.permission
}

// Notify shows a notification unless one with the same tag was already shown
func (d *Desktop) Notify(title, body, tag string) error {
	d.mu.Lock()
	if d.permission != PermissionGranted {
		d.mu.Unlock()
		return nil
	}
	if tag != "" {
		if _, ok := d.shown[tag]; ok {
			d.mu.Unlock()
			return nil
		}
		d.shown[tag] = struct{}{}
	}
	d.mu.Unlock()

	if err := d.notify(title, body, ""); err != nil {
		d.logger.Warn("desktop notification failed",
			zap.String("tag", tag),
			zap.Error(err),
		)
		return err
	}
	return nil
}
