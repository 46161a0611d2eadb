package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

// AccessTokenCookie 是携带访问令牌的 http-only Cookie 名称
const AccessTokenCookie = "access_token"

const currentUserContextKey = "__current_user"

// AuthRequired 是认证中间件：从 Cookie 提取令牌，依次校验签名与过期、
// 账号存在性、以及服务端会话行是否仍引用该令牌串。两层校验相互独立，
// 任何一层失败都视为未认证。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, herr := a.authenticate(c)
		if herr != nil {
			respondError(c, herr)
			c.Abort()
			return
		}

		c.Set(currentUserContextKey, user)
		c.Next()
	}
}

// RequireRole 是授权谓词：已认证用户的角色不符时返回 403。
// 必须挂在 AuthRequired 之后。
func (a *API) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respondError(c, httperr.Unauthorized("authentication required"))
			c.Abort()
			return
		}

		if user.Role != role {
			respondError(c, httperr.Forbidden("insufficient role"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser 从请求上下文取出已认证用户
func CurrentUser(c *gin.Context) (*db.User, bool) {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*db.User)
	return user, ok
}

func (a *API) authenticate(c *gin.Context) (*db.User, *httperr.Error) {
	token, err := c.Cookie(AccessTokenCookie)
	if err != nil || token == "" {
		return nil, httperr.Unauthorized("authentication required")
	}

	claims, err := a.jwt.VerifyToken(token)
	if err != nil {
		return nil, httperr.Unauthorized("token is invalid or expired")
	}

	// 账号可能在令牌有效期内被删除
	user, err := a.users.Get(claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, httperr.Unauthorized("account no longer exists")
		}
		log.Printf("auth: load user %d: %v", claims.UserID, err)
		return nil, httperr.Internal()
	}

	// 无状态令牌之外的吊销层：登出或强制下线会删除会话行
	if _, err := a.sessions.FindValid(token); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return nil, httperr.Unauthorized("session has been revoked")
		}
		return nil, httperr.Unauthorized("authentication required")
	}

	return user, nil
}
