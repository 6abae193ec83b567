package handlers

import (
	"net/http"

	"github.com/Nek1s/VisualHub/services"
	"github.com/Nek1s/VisualHub/utils"

	"github.com/gin-gonic/gin"
)

var appServices *services.Container

func SetServices(container *services.Container) {
	appServices = container
}

func getServices() *services.Container {
	if appServices == nil {
		panic("services container is not initialized")
	}
	return appServices
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindInvalidState:
		return http.StatusConflict
	case services.KindDecodeFailure:
		return http.StatusUnprocessableEntity
	case services.KindIOFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*services.AppError); ok {
		utils.Error(c, statusForKind(appErr.Kind), appErr.Message)
		return true
	}
	utils.Error(c, http.StatusInternalServerError, "internal error")
	return true
}
