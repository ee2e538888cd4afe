package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dropbuddy/dropbuddy/pkg/errors"
	"github.com/dropbuddy/dropbuddy/pkg/response"
)

// Health reports service liveness, including a database connectivity probe.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				response.Error(c, errors.ErrDatabase.WithInternal(err))
				return
			}
		}
		response.Success(c, http.StatusOK, gin.H{"status": "healthy"})
	}
}

// Hello is the root handler.
func Hello() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"message": "Hello, World!"})
	}
}
