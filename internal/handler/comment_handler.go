package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

// commentView 是对外暴露的评论视图，正文同时给出 Markdown 原文与渲染结果
type commentView struct {
	ID        uint          `json:"id"`
	PostID    uint          `json:"postId"`
	ParentID  *uint         `json:"parentId,omitempty"`
	Content   string        `json:"content"`
	HTML      string        `json:"html"`
	Approved  bool          `json:"approved"`
	Author    *userView     `json:"author,omitempty"`
	Replies   []commentView `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newCommentView(comment *db.Comment) commentView {
	html, err := service.RenderMarkdown(comment.Content)
	if err != nil {
		log.Printf("comment %d: render markdown: %v", comment.ID, err)
		html = ""
	}

	view := commentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		HTML:      html,
		Approved:  comment.Approved,
		CreatedAt: comment.CreatedAt,
	}
	if comment.User.ID != 0 {
		author := newUserView(&comment.User)
		view.Author = &author
	}
	for i := range comment.Replies {
		view.Replies = append(view.Replies, newCommentView(&comment.Replies[i]))
	}
	return view
}

// ListComments 返回某篇文章下已批准的评论，含一层已批准的回复
func (a *API) ListComments(c *gin.Context) {
	postID := parseUintQuery(c, "postId")
	if postID == 0 {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "postId query parameter is required"))
		return
	}

	comments, err := a.comments.ListApproved(postID)
	if err != nil {
		respondInternal(c, err)
		return
	}

	views := make([]commentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	c.JSON(http.StatusOK, gin.H{"comments": views})
}

type createCommentRequest struct {
	PostID   uint   `json:"postId" binding:"required"`
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content" binding:"required"`
}

// CreateComment 创建评论；管理员的评论立即生效，其余角色进入待审核
func (a *API) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req, "postId and content are required") {
		return
	}

	user, _ := CurrentUser(c)
	comment, err := a.comments.Create(user.ID, user.Role, service.CommentInput{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, httperr.NotFound("POST_NOT_FOUND", "post not found"))
		case errors.Is(err, service.ErrParentNotFound):
			respondError(c, httperr.NotFound("COMMENT_NOT_FOUND", "parent comment not found"))
		case errors.Is(err, service.ErrParentMismatch):
			respondError(c, httperr.BadRequest("VALIDATION_ERROR", "parent comment belongs to another post or is itself a reply").WithField("parentId"))
		case errors.Is(err, service.ErrContentRequired):
			respondError(c, httperr.BadRequest("VALIDATION_ERROR", "content is required").WithField("content"))
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": newCommentView(comment)})
}

// ListPendingComments 返回待审核评论，仅管理员可见
func (a *API) ListPendingComments(c *gin.Context) {
	comments, err := a.comments.ListPending(parseUintQuery(c, "postId"))
	if err != nil {
		respondInternal(c, err)
		return
	}

	views := make([]commentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	c.JSON(http.StatusOK, gin.H{"comments": views})
}

// ApproveComment 批准评论
func (a *API) ApproveComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid comment id"))
		return
	}

	comment, err := a.comments.Approve(id)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			respondError(c, httperr.NotFound("COMMENT_NOT_FOUND", "comment not found"))
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": newCommentView(comment)})
}

// RejectComment 拒绝评论：直接硬删除，不保留任何被拒记录
func (a *API) RejectComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid comment id"))
		return
	}

	if err := a.comments.Reject(id); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			respondError(c, httperr.NotFound("COMMENT_NOT_FOUND", "comment not found"))
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment rejected"})
}
