package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

// ListTags 返回标签列表
func (a *API) ListTags(c *gin.Context) {
	tags, err := a.tags.List()
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// CreateTag 创建标签，slug 冲突返回 409
func (a *API) CreateTag(c *gin.Context) {
	var req taxonomyRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}

	tag, err := a.tags.Create(service.TagInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		a.respondTagError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// UpdateTag 更新标签
func (a *API) UpdateTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid tag id"))
		return
	}

	var req taxonomyRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}

	tag, err := a.tags.Update(id, service.TagInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		a.respondTagError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag 删除未被文章引用的标签
func (a *API) DeleteTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid tag id"))
		return
	}

	if err := a.tags.Delete(id); err != nil {
		a.respondTagError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tag deleted"})
}

func (a *API) respondTagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		respondError(c, httperr.NotFound("TAG_NOT_FOUND", "tag not found"))
	case errors.Is(err, service.ErrTagExists):
		respondError(c, httperr.Conflict("TAG_EXISTS", "tag slug is already in use").WithField("slug"))
	case errors.Is(err, service.ErrTagInUse):
		respondError(c, httperr.BadRequest("TAG_IN_USE", "tag is associated with posts"))
	case errors.Is(err, service.ErrNameRequired):
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "name is required").WithField("name"))
	default:
		respondInternal(c, err)
	}
}
