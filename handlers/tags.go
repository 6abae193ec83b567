package handlers

import (
	"net/http"
	"strconv"

	"github.com/Nek1s/VisualHub/utils"

	"github.com/gin-gonic/gin"
)

type TagImageRequest struct {
	Name string `json:"name" binding:"required"`
}

func ListTags(c *gin.Context) {
	tags, err := getServices().Tags.ListTags(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, tags)
}

func TagImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req TagImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	tag, err := getServices().Tags.TagImage(c.Request.Context(), id, req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, tag)
}

func UntagImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	tagID, err := strconv.ParseUint(c.Param("tagId"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := getServices().Tags.UntagImage(c.Request.Context(), id, uint(tagID)); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}
