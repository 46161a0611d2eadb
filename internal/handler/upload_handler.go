package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/storage"
)

// UploadImage 处理图片上传请求。类型与大小校验在任何存储写入之前完成，
// 随后字节必须能按图片解码，最后才写入选定的后端。
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "image file is required").WithField("image"))
		return
	}

	contentType := file.Header.Get("Content-Type")
	if err := storage.ValidateImage(contentType, file.Size, a.maxUploadSize); err != nil {
		switch {
		case errors.Is(err, storage.ErrTypeNotAllowed):
			respondError(c, httperr.BadRequest("TYPE_NOT_ALLOWED", "only JPEG, PNG, WebP and GIF images are accepted").WithField("image"))
		case errors.Is(err, storage.ErrTooLarge):
			respondError(c, httperr.BadRequest("FILE_TOO_LARGE", "file exceeds the size limit").WithField("image"))
		default:
			respondInternal(c, err)
		}
		return
	}

	src, err := file.Open()
	if err != nil {
		respondInternal(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		respondInternal(c, err)
		return
	}

	if _, _, err := storage.ProbeImage(data); err != nil {
		respondError(c, httperr.BadRequest("TYPE_NOT_ALLOWED", "file content is not a decodable image").WithField("image"))
		return
	}

	image, err := a.uploads.Save(c.Request.Context(), file.Filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respondError(c, httperr.New(http.StatusInternalServerError, "UPLOAD_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": image})
}

// DeleteImage 按上传时返回的 path 删除对象，由路径形状推断所属后端
func (a *API) DeleteImage(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "path query parameter is required").WithField("path"))
		return
	}

	if err := a.uploads.Delete(c.Request.Context(), path); err != nil {
		respondError(c, httperr.New(http.StatusInternalServerError, "UPLOAD_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}
