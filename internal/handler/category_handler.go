package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

type taxonomyRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// ListCategories 返回分类列表，走进程级 TTL 缓存
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.categories.List()
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory 创建分类，slug 冲突返回 409
func (a *API) CreateCategory(c *gin.Context) {
	var req taxonomyRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}

	category, err := a.categories.Create(service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		a.respondCategoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory 更新分类
func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid category id"))
		return
	}

	var req taxonomyRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}

	category, err := a.categories.Update(id, service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		a.respondCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory 删除未被文章引用的分类
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid category id"))
		return
	}

	if err := a.categories.Delete(id); err != nil {
		a.respondCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

func (a *API) respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, httperr.NotFound("CATEGORY_NOT_FOUND", "category not found"))
	case errors.Is(err, service.ErrCategoryExists):
		respondError(c, httperr.Conflict("CATEGORY_EXISTS", "category slug is already in use").WithField("slug"))
	case errors.Is(err, service.ErrCategoryInUse):
		respondError(c, httperr.BadRequest("CATEGORY_IN_USE", "category is associated with posts"))
	case errors.Is(err, service.ErrNameRequired):
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "name is required").WithField("name"))
	default:
		respondInternal(c, err)
	}
}
