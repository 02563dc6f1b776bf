package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medreminder/internal/reminder"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"go.uber.org/zap"
)

// heartbeatInterval keeps idle event streams open through proxies
const heartbeatInterval = 30 * time.Second

// SessionManager runs one reminder session per user
type SessionManager interface {
	Start(userID string) *reminder.Session
	Attach(userID string) (*reminder.Session, func())
	Session(userID string) (*reminder.Session, bool)
	Stop(userID string) bool
}

// ReminderHandler implements the reminder session and alert endpoints
type ReminderHandler struct {
	manager   SessionManager
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(manager SessionManager, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		manager:   manager,
		logger:    logger,
		heartbeat: heartbeatInterval,
	}
}

// PostApiV1RemindersSession starts the caller's reminder session
func (h *ReminderHandler) PostApiV1RemindersSession(c *gin.Context) {
	session := h.manager.Start(userID(c))
	c.JSON(http.StatusOK, api.SessionResponse{Active: true, State: string(session.State())})
}

// DeleteApiV1RemindersSession stops the caller's reminder session
func (h *ReminderHandler) DeleteApiV1RemindersSession(c *gin.Context) {
	h.manager.Stop(userID(c))
	c.Status(http.StatusNoContent)
}

// GetApiV1RemindersAlert returns the ringing alert, or 204 when there is none
func (h *ReminderHandler) GetApiV1RemindersAlert(c *gin.Context) {
	session, ok := h.manager.Session(userID(c))
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	alert := session.Alert()
	if alert == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// PostApiV1RemindersAlertTake marks the ringing dose as taken
func (h *ReminderHandler) PostApiV1RemindersAlertTake(c *gin.Context) {
	h.act(c, "Failed to mark dose as taken", (*reminder.Session).Take)
}

// PostApiV1RemindersAlertMiss marks the ringing dose as missed
func (h *ReminderHandler) PostApiV1RemindersAlertMiss(c *gin.Context) {
	h.act(c, "Failed to mark dose as missed", (*reminder.Session).Miss)
}

// PostApiV1RemindersAlertSnooze silences the ringing alert
func (h *ReminderHandler) PostApiV1RemindersAlertSnooze(c *gin.Context) {
	h.act(c, "Failed to snooze alert", func(s *reminder.Session, _ context.Context) error {
		return s.Snooze()
	})
}

func (h *ReminderHandler) act(c *gin.Context, message string, action func(*reminder.Session, context.Context) error) {
	session, ok := h.manager.Session(userID(c))
	if !ok {
		respondError(c, h.logger, reminder.ErrNoActiveAlert, message)
		return
	}

	if err := action(session, c.Request.Context()); err != nil {
		if !errors.Is(err, reminder.ErrNoActiveAlert) {
			err = fmt.Errorf("%w: %w", errStatusWriteFailed, err)
		}
		respondError(c, h.logger, err, message)
		return
	}

	c.JSON(http.StatusOK, api.SessionResponse{Active: true, State: string(session.State())})
}

// GetApiV1RemindersEvents streams alert events as server-sent events.
// The session is started if needed and the current alert is sent first as a "state" event.
// A session started by streams alone ends when the last of them closes.
func (h *ReminderHandler) GetApiV1RemindersEvents(c *gin.Context) {
	uid := userID(c)
	session, detach := h.manager.Attach(uid)
	defer detach()
	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.logger.Info("alert stream opened", zap.String("user_id", uid))
	defer h.logger.Info("alert stream closed", zap.String("user_id", uid))

	c.SSEvent(string(reminder.EventState), reminder.Event{Type: reminder.EventState, Alert: session.Alert(), At: time.Now()})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		}
	})
}
