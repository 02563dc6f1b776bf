// Package api holds the HTTP contract of the reminder backend: request and
// response bodies, the server interface and the embedded OpenAPI document.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// SessionResponse defines model for SessionResponse.
type SessionResponse struct {
	Active bool   `json:"active"`
	State  string `json:"state"`
}

// CreateMedicationRequest defines model for CreateMedicationRequest.
type CreateMedicationRequest struct {
	Name                    string              `json:"name" binding:"required"`
	Dosage                  string              `json:"dosage" binding:"required"`
	Frequency               string              `json:"frequency" binding:"required"`
	StartDate               openapi_types.Date  `json:"start_date"`
	EndDate                 *openapi_types.Date `json:"end_date,omitempty"`
	ReminderTimes           *[]string           `json:"reminder_times,omitempty"`
	Notes                   *string             `json:"notes,omitempty"`
	RemainingQuantity       *int                `json:"remaining_quantity,omitempty"`
	RefillReminderThreshold *int                `json:"refill_reminder_threshold,omitempty"`
}

// UpdateSettingsRequest defines model for UpdateSettingsRequest.
type UpdateSettingsRequest struct {
	DarkMode      *bool   `json:"dark_mode,omitempty"`
	SoundEnabled  *bool   `json:"sound_enabled,omitempty"`
	Ringtone      *string `json:"ringtone,omitempty"`
	SnoozeMinutes *int    `json:"snooze_minutes,omitempty"`
}

// GenerateReportRequest defines model for GenerateReportRequest.
// Both dates are inclusive calendar days.
type GenerateReportRequest struct {
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
}

// ReportResponse defines model for ReportResponse.
type ReportResponse struct {
	Id          *openapi_types.UUID `json:"id,omitempty"`
	StartDate   *openapi_types.Date `json:"start_date,omitempty"`
	EndDate     *openapi_types.Date `json:"end_date,omitempty"`
	GeneratedAt *time.Time          `json:"generated_at,omitempty"`
	DownloadUrl *string             `json:"download_url,omitempty"`
}

// PhotoResponse defines model for PhotoResponse.
type PhotoResponse struct {
	PhotoUrl string `json:"photo_url"`
}

// GetApiV1MedicationsParams defines parameters for GetApiV1Medications.
type GetApiV1MedicationsParams struct {
	// Active restricts the list to active medications, default true
	Active *bool `form:"active,omitempty" json:"active,omitempty"`
}

// GetApiV1MedicationsInfoParams defines parameters for GetApiV1MedicationsInfo.
type GetApiV1MedicationsInfoParams struct {
	Name string `form:"name" json:"name"`
}
