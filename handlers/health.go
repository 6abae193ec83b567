package handlers

import (
	"github.com/Nek1s/VisualHub/utils"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "visualhub",
	})
}
