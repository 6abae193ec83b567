package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/services"
	"github.com/Nek1s/VisualHub/utils"

	"github.com/gin-gonic/gin"
)

type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type MoveImageRequest struct {
	FolderID uint `json:"folder_id"`
}

type RestoreImageRequest struct {
	FolderID uint `json:"folder_id"`
}

type CropRequest struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}

type RotateRequest struct {
	Angle float64 `json:"angle"`
}

type ResizeRequest struct {
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}

type ExportRequest struct {
	DestPath string `json:"dest_path" binding:"required"`
}

func imageIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid image id")
		return 0, false
	}
	return uint(id), true
}

func ImportImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "missing file upload")
		return
	}

	folderID := uint(0)
	if raw := c.PostForm("folder_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid folder id")
			return
		}
		folderID = uint(parsed)
	}

	src, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "could not open upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "could not read upload")
		return
	}

	img, err := getServices().Images.Import(c.Request.Context(), data, fileHeader.Filename, folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, img)
}

func ListImages(c *gin.Context) {
	folderID := models.FolderAll
	if raw := c.Query("folder_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid folder id")
			return
		}
		folderID = uint(parsed)
	}

	images, err := getServices().Images.GetImages(c.Request.Context(), folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, images)
}

func GetImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	img, err := getServices().Images.GetImageByID(c.Request.Context(), id)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, img)
}

func UpdateImageField(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	field, err := services.ParseImageField(req.Field)
	if respondServiceError(c, err) {
		return
	}

	if err := getServices().Images.UpdateField(c.Request.Context(), id, field, req.Value); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}

func MoveImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req MoveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if err := getServices().Images.Move(c.Request.Context(), id, req.FolderID); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}

func TrashImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	if err := getServices().Images.MoveToTrash(c.Request.Context(), id); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}

func RestoreImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req RestoreImageRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if err := getServices().Images.RestoreFromTrash(c.Request.Context(), id, req.FolderID); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}

func DeleteImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	if err := getServices().Images.DeletePermanently(c.Request.Context(), id); respondServiceError(c, err) {
		return
	}
	utils.Success(c, nil)
}

func ListTrash(c *gin.Context) {
	images, err := getServices().Images.GetTrashImages(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, images)
}

func TrashCount(c *gin.Context) {
	count, err := getServices().Images.GetTrashCount(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"count": count})
}

func EmptyTrash(c *gin.Context) {
	deleted, err := getServices().Images.EmptyTrash(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"deleted": deleted})
}

func CropImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	img, err := getServices().Images.Crop(c.Request.Context(), id, services.CropRect{
		X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, img)
}

func RotateImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req RotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	img, err := getServices().Images.Rotate(c.Request.Context(), id, req.Angle)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, img)
}

func ResizeImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	img, err := getServices().Images.Resize(c.Request.Context(), id, req.Width, req.Height)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, img)
}

func ExportImage(c *gin.Context) {
	id, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	destPath, err := getServices().Images.Export(c.Request.Context(), id, req.DestPath)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"dest_path": destPath})
}

func PreviewURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		utils.Error(c, http.StatusBadRequest, "missing path")
		return
	}
	utils.Success(c, gin.H{"url": getServices().Images.ResolvePreviewURL(path)})
}

func RegenerateThumbnails(c *gin.Context) {
	created, err := getServices().Thumbnails.RegenerateAll(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"created": created})
}
