// Package api serves the record store over HTTP under /api.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailtriage/internal/auth"
	"mailtriage/internal/store"
)

// NewRouter wires every endpoint. All /api routes require a bearer token.
func NewRouter(rs store.RecordStore, authSvc *auth.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{store: rs}
	mw := NewMiddleware(authSvc)

	api := r.Group("/api")
	api.Use(mw.AuthRequired())
	{
		api.GET("/emails", h.listEmails)
		api.GET("/emails/:id", h.getEmail)
		api.POST("/emails/:id/read", h.markEmailRead)
		api.POST("/emails/:id/summary", h.summarizeEmail)

		api.GET("/tasks", h.listTasks)
		api.GET("/tasks/:id", h.getTask)
		api.POST("/tasks", h.createTask)
		api.PATCH("/tasks/:id", h.updateTask)
		api.DELETE("/tasks/:id", h.deleteTask)
	}

	return r
}
