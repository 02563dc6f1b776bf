package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/v1/reminders/session)
	PostApiV1RemindersSession(c *gin.Context)
	// (DELETE /api/v1/reminders/session)
	DeleteApiV1RemindersSession(c *gin.Context)
	// (GET /api/v1/reminders/alert)
	GetApiV1RemindersAlert(c *gin.Context)
	// (POST /api/v1/reminders/alert/take)
	PostApiV1RemindersAlertTake(c *gin.Context)
	// (POST /api/v1/reminders/alert/miss)
	PostApiV1RemindersAlertMiss(c *gin.Context)
	// (POST /api/v1/reminders/alert/snooze)
	PostApiV1RemindersAlertSnooze(c *gin.Context)
	// (GET /api/v1/reminders/events)
	GetApiV1RemindersEvents(c *gin.Context)
	// (GET /api/v1/dashboard)
	GetApiV1Dashboard(c *gin.Context)
	// (GET /api/v1/settings)
	GetApiV1Settings(c *gin.Context)
	// (PUT /api/v1/settings)
	PutApiV1Settings(c *gin.Context)
	// (GET /api/v1/medications)
	GetApiV1Medications(c *gin.Context, params GetApiV1MedicationsParams)
	// (POST /api/v1/medications)
	PostApiV1Medications(c *gin.Context)
	// (GET /api/v1/medications/info)
	GetApiV1MedicationsInfo(c *gin.Context, params GetApiV1MedicationsInfoParams)
	// (POST /api/v1/medications/logs/{id}/skip)
	PostApiV1MedicationsLogsIdSkip(c *gin.Context, id openapi_types.UUID)
	// (DELETE /api/v1/medications/{id})
	DeleteApiV1MedicationsId(c *gin.Context, id openapi_types.UUID)
	// (POST /api/v1/medications/{id}/photo)
	PostApiV1MedicationsIdPhoto(c *gin.Context, id openapi_types.UUID)
	// (DELETE /api/v1/medications/{id}/photo)
	DeleteApiV1MedicationsIdPhoto(c *gin.Context, id openapi_types.UUID)
	// (POST /api/v1/reports)
	PostApiV1Reports(c *gin.Context)
	// (GET /api/v1/reports/{id})
	GetApiV1ReportsId(c *gin.Context, id openapi_types.UUID)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandler       func(*gin.Context, error, int)
}

// MiddlewareFunc runs before every API handler. Aborting the context skips the handler.
type MiddlewareFunc func(c *gin.Context)

func (siw *ServerInterfaceWrapper) runMiddlewares(c *gin.Context) bool {
	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return false
		}
	}
	return true
}

func (siw *ServerInterfaceWrapper) plain(h func(*gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !siw.runMiddlewares(c) {
			return
		}
		h(c)
	}
}

func (siw *ServerInterfaceWrapper) withID(h func(*gin.Context, openapi_types.UUID)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter id: %w", err), http.StatusBadRequest)
			return
		}
		if !siw.runMiddlewares(c) {
			return
		}
		h(c, id)
	}
}

// GetApiV1Medications operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1Medications(c *gin.Context) {
	var params GetApiV1MedicationsParams

	err := runtime.BindQueryParameter("form", true, false, "active", c.Request.URL.Query(), &params.Active)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter active: %w", err), http.StatusBadRequest)
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}
	siw.Handler.GetApiV1Medications(c, params)
}

// GetApiV1MedicationsInfo operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1MedicationsInfo(c *gin.Context) {
	var params GetApiV1MedicationsInfoParams

	err := runtime.BindQueryParameter("form", true, true, "name", c.Request.URL.Query(), &params.Name)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter name: %w", err), http.StatusBadRequest)
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}
	siw.Handler.GetApiV1MedicationsInfo(c, params)
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	Middlewares  []MiddlewareFunc
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, ErrorResponse{Code: "VALIDATION_ERROR", Message: err.Error()})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandler:       errorHandler,
	}

	base := options.BaseURL
	router.POST(base+"/api/v1/reminders/session", wrapper.plain(si.PostApiV1RemindersSession))
	router.DELETE(base+"/api/v1/reminders/session", wrapper.plain(si.DeleteApiV1RemindersSession))
	router.GET(base+"/api/v1/reminders/alert", wrapper.plain(si.GetApiV1RemindersAlert))
	router.POST(base+"/api/v1/reminders/alert/take", wrapper.plain(si.PostApiV1RemindersAlertTake))
	router.POST(base+"/api/v1/reminders/alert/miss", wrapper.plain(si.PostApiV1RemindersAlertMiss))
	router.POST(base+"/api/v1/reminders/alert/snooze", wrapper.plain(si.PostApiV1RemindersAlertSnooze))
	router.GET(base+"/api/v1/reminders/events", wrapper.plain(si.GetApiV1RemindersEvents))
	router.GET(base+"/api/v1/dashboard", wrapper.plain(si.GetApiV1Dashboard))
	router.GET(base+"/api/v1/settings", wrapper.plain(si.GetApiV1Settings))
	router.PUT(base+"/api/v1/settings", wrapper.plain(si.PutApiV1Settings))
	router.GET(base+"/api/v1/medications", wrapper.GetApiV1Medications)
	router.POST(base+"/api/v1/medications", wrapper.plain(si.PostApiV1Medications))
	router.GET(base+"/api/v1/medications/info", wrapper.GetApiV1MedicationsInfo)
	router.POST(base+"/api/v1/medications/logs/:id/skip", wrapper.withID(si.PostApiV1MedicationsLogsIdSkip))
	router.DELETE(base+"/api/v1/medications/:id", wrapper.withID(si.DeleteApiV1MedicationsId))
	router.POST(base+"/api/v1/medications/:id/photo", wrapper.withID(si.PostApiV1MedicationsIdPhoto))
	router.DELETE(base+"/api/v1/medications/:id/photo", wrapper.withID(si.DeleteApiV1MedicationsIdPhoto))
	router.POST(base+"/api/v1/reports", wrapper.plain(si.PostApiV1Reports))
	router.GET(base+"/api/v1/reports/:id", wrapper.withID(si.GetApiV1ReportsId))
}
