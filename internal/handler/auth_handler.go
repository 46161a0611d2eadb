package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/auth"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

// userView 是对外暴露的账号视图，永远不包含密码哈希
type userView struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newUserView(user *db.User) userView {
	return userView{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// Register 处理注册请求：首位非种子注册者自动晋升为管理员并视为已验证
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, "email, password and name are required") {
		return
	}

	if check := auth.ValidatePassword(req.Password); !check.Valid {
		respondError(c, httperr.BadRequest("WEAK_PASSWORD", strings.Join(check.Errors, "; ")).WithField("password"))
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, httperr.Conflict("EMAIL_TAKEN", "email is already registered").WithField("email"))
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, httperr.BadRequest("WEAK_PASSWORD", "password does not meet strength rules").WithField("password"))
		default:
			respondInternal(c, err)
		}
		return
	}

	token, err := a.issueSession(c, user)
	if err != nil {
		respondInternal(c, err)
		return
	}

	// 未验证账号立即发送验证邮件，失败只记录日志
	if !user.EmailVerified {
		if err := a.sendVerificationMail(user); err != nil {
			log.Printf("register: issue verification for user %d: %v", user.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":        newUserView(user),
		"accessToken": token,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理登录请求：凭据错误时返回统一的提示，不区分邮箱与密码
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "email and password are required") {
		return
	}

	user, err := a.users.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, httperr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "email or password incorrect"))
			return
		}
		respondInternal(c, err)
		return
	}

	token, err := a.issueSession(c, user)
	if err != nil {
		respondInternal(c, err)
		return
	}

	if err := a.users.RecordLogin(user.ID, c.ClientIP(), time.Now()); err != nil {
		log.Printf("login: record metadata for user %d: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"user": newUserView(user),
		"session": gin.H{
			"token":     token,
			"expiresAt": time.Now().Add(auth.AccessTokenExpiry),
		},
	})
}

// Logout 删除当前令牌对应的会话行并清除 Cookie，重复调用同样返回成功
func (a *API) Logout(c *gin.Context) {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		if err := a.sessions.DeleteByToken(token); err != nil {
			log.Printf("logout: delete session: %v", err)
		}
	}

	a.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me 返回当前认证用户
func (a *API) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, httperr.Unauthorized("authentication required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmail 消费一次性验证令牌并标记账号已验证
func (a *API) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindJSON(c, &req, "token is required") {
		return
	}

	token, err := a.tokens.Consume(req.Token, db.TokenTypeEmailVerify)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, httperr.BadRequest("TOKEN_INVALID", "token is invalid or expired"))
			return
		}
		respondInternal(c, err)
		return
	}

	if err := a.users.MarkVerified(token.UserID); err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification 重新发送验证邮件。响应不泄露邮箱是否存在；
// 同一账号一小时内第四次请求返回 429。
func (a *API) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req, "email is required") {
		return
	}

	user, err := a.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "if the email exists, a verification link has been sent"})
			return
		}
		respondInternal(c, err)
		return
	}

	if user.EmailVerified {
		c.JSON(http.StatusOK, gin.H{"message": "if the email exists, a verification link has been sent"})
		return
	}

	if err := a.sendVerificationMail(user); err != nil {
		if errors.Is(err, service.ErrTokenRateLimit) {
			respondError(c, httperr.TooManyRequests("too many verification emails, try again later"))
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the email exists, a verification link has been sent"})
}

// RequestPasswordReset 发起密码重置。无论邮箱是否存在都返回相同的 200 响应。
func (a *API) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req, "email is required") {
		return
	}

	response := gin.H{"message": "if the email exists, a reset link has been sent"}

	user, err := a.users.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			respondInternal(c, err)
			return
		}
		c.JSON(http.StatusOK, response)
		return
	}

	token, err := a.tokens.IssuePasswordReset(user.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}

	if a.mailer.Enabled() {
		if err := a.mailer.SendPasswordReset(user.Email, token.Token); err != nil {
			log.Printf("reset: send mail to user %d: %v", user.ID, err)
		}
	}

	c.JSON(http.StatusOK, response)
}

type confirmResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ConfirmPasswordReset 消费重置令牌、更新密码哈希，并吊销该账号的全部会话
func (a *API) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if !bindJSON(c, &req, "token and newPassword are required") {
		return
	}

	if check := auth.ValidatePassword(req.NewPassword); !check.Valid {
		respondError(c, httperr.BadRequest("WEAK_PASSWORD", strings.Join(check.Errors, "; ")).WithField("newPassword"))
		return
	}

	token, err := a.tokens.Consume(req.Token, db.TokenTypePasswordReset)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, httperr.BadRequest("TOKEN_INVALID", "token is invalid or expired"))
			return
		}
		respondInternal(c, err)
		return
	}

	if err := a.users.UpdatePassword(token.UserID, req.NewPassword); err != nil {
		respondInternal(c, err)
		return
	}

	// 密码重置视同凭据泄露，吊销所有既存会话
	if err := a.sessions.RevokeAllForUser(token.UserID); err != nil {
		log.Printf("reset: revoke sessions for user %d: %v", token.UserID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// issueSession 签发访问令牌、落库会话行并设置 http-only Cookie
func (a *API) issueSession(c *gin.Context, user *db.User) (string, error) {
	token, err := a.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(auth.AccessTokenExpiry)
	if _, err := a.sessions.Create(user.ID, token, c.Request.UserAgent(), c.ClientIP(), expiresAt); err != nil {
		return "", err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, token, int(auth.AccessTokenExpiry.Seconds()), "/", "", a.cookieSecure, true)

	return token, nil
}

func (a *API) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", a.cookieSecure, true)
}

func (a *API) sendVerificationMail(user *db.User) error {
	token, err := a.tokens.IssueEmailVerification(user.ID)
	if err != nil {
		return err
	}

	if a.mailer.Enabled() {
		if err := a.mailer.SendVerification(user.Email, token.Token); err != nil {
			log.Printf("verify: send mail to user %d: %v", user.ID, err)
		}
	}
	return nil
}
