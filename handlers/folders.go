package handlers

import (
	"net/http"
	"strconv"

	"github.com/Nek1s/VisualHub/repositories"
	"github.com/Nek1s/VisualHub/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

func folderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid folder id")
		return 0, false
	}
	return uint(id), true
}

func ListFolders(c *gin.Context) {
	sortBy := repositories.FolderSort(c.DefaultQuery("sort_by", string(repositories.FolderSortID)))
	switch sortBy {
	case repositories.FolderSortID, repositories.FolderSortName, repositories.FolderSortCreated:
	default:
		utils.Error(c, http.StatusBadRequest, "invalid sort_by")
		return
	}

	folders, err := getServices().Folders.ListFolders(c.Request.Context(), sortBy)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folders)
}

func CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folders.CreateFolder(c.Request.Context(), req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func RenameFolder(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folders.RenameFolder(c.Request.Context(), id, req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func DeleteFolder(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}

	if err := getServices().Folders.DeleteFolder(c.Request.Context(), id); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}
