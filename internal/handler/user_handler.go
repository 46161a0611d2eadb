package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

// ListUsers 返回全部用户，仅管理员可见
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List()
	if err != nil {
		respondInternal(c, err)
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": views})
}

// GetUser 返回单个用户
func (a *API) GetUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid user id"))
		return
	}

	user, err := a.users.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, httperr.NotFound("USER_NOT_FOUND", "user not found"))
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

type updateUserRequest struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified *bool  `json:"emailVerified"`
}

// UpdateUser 管理员编辑用户；降级最后一名管理员会被拒绝
func (a *API) UpdateUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid user id"))
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req, "request body is invalid") {
		return
	}

	user, err := a.users.Update(id, service.UpdateUserInput{
		Name:          req.Name,
		Role:          req.Role,
		EmailVerified: req.EmailVerified,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, httperr.NotFound("USER_NOT_FOUND", "user not found"))
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, httperr.BadRequest("VALIDATION_ERROR", "role is not a valid value").WithField("role"))
		case errors.Is(err, service.ErrLastAdmin):
			respondError(c, httperr.Forbidden("cannot demote the last administrator"))
		default:
			respondInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

// DeleteUser 删除用户及其全部关联数据；不允许删除自己
func (a *API) DeleteUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid user id"))
		return
	}

	caller, _ := CurrentUser(c)
	if err := a.users.Delete(id, caller.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, httperr.NotFound("USER_NOT_FOUND", "user not found"))
		case errors.Is(err, service.ErrSelfDelete):
			respondError(c, httperr.Forbidden("cannot delete own account"))
		default:
			respondInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
