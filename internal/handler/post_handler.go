package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/httperr"
	"github.com/inkwell/internal/service"
)

// postView 是对外暴露的文章视图
type postView struct {
	ID             uint          `json:"id"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Content        string        `json:"content,omitempty"`
	Excerpt        string        `json:"excerpt"`
	CoverURL       string        `json:"coverUrl,omitempty"`
	Published      bool          `json:"published"`
	PublishedAt    *time.Time    `json:"publishedAt,omitempty"`
	SortOrder      int           `json:"sortOrder"`
	ReadingTime    int           `json:"readingTime"`
	WordCount      int           `json:"wordCount"`
	SEOTitle       string        `json:"seoTitle,omitempty"`
	SEODescription string        `json:"seoDescription,omitempty"`
	Author         *userView     `json:"author,omitempty"`
	Categories     []db.Category `json:"categories"`
	Tags           []db.Tag      `json:"tags"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func newPostView(post *db.Post, includeContent bool) postView {
	view := postView{
		ID:             post.ID,
		Title:          post.Title,
		Slug:           post.Slug,
		Excerpt:        post.Excerpt,
		CoverURL:       post.CoverURL,
		Published:      post.Published,
		PublishedAt:    post.PublishedAt,
		SortOrder:      post.SortOrder,
		ReadingTime:    post.ReadingTime,
		WordCount:      post.WordCount,
		SEOTitle:       post.SEOTitle,
		SEODescription: post.SEODescription,
		Categories:     post.Categories,
		Tags:           post.Tags,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}
	if includeContent {
		view.Content = post.Content
	}
	if post.User.ID != 0 {
		author := newUserView(&post.User)
		view.Author = &author
	}
	return view
}

// ListPublishedPosts 返回已发布文章的分页列表，可按分类或标签筛选
func (a *API) ListPublishedPosts(c *gin.Context) {
	result, err := a.posts.ListPublished(service.PostFilter{
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Page:         parseIntQuery(c, "page"),
		PerPage:      parseIntQuery(c, "perPage"),
	})
	if err != nil {
		respondInternal(c, err)
		return
	}

	views := make([]postView, 0, len(result.Posts))
	for i := range result.Posts {
		views = append(views, newPostView(&result.Posts[i], false))
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      views,
		"total":      result.Total,
		"totalPages": result.TotalPages,
		"page":       result.Page,
		"perPage":    result.PerPage,
	})
}

// GetPublishedPost 按 slug 返回单篇已发布文章
func (a *API) GetPublishedPost(c *gin.Context) {
	post, err := a.posts.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, httperr.NotFound("POST_NOT_FOUND", "post not found"))
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": newPostView(post, true)})
}

type postRequest struct {
	Title          string `json:"title" binding:"required"`
	Slug           string `json:"slug"`
	Content        string `json:"content"`
	Excerpt        string `json:"excerpt"`
	CoverURL       string `json:"coverUrl"`
	SEOTitle       string `json:"seoTitle"`
	SEODescription string `json:"seoDescription"`
	CategoryIDs    []uint `json:"categoryIds"`
	TagIDs         []uint `json:"tagIds"`
}

// ListPosts 返回全部文章（含草稿），供后台使用
func (a *API) ListPosts(c *gin.Context) {
	posts, err := a.posts.ListAll()
	if err != nil {
		respondInternal(c, err)
		return
	}

	views := make([]postView, 0, len(posts))
	for i := range posts {
		views = append(views, newPostView(&posts[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}

// GetPost 返回单篇文章详情，供后台编辑
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid post id"))
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		a.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": newPostView(post, true)})
}

// CreatePost 创建文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "title is required") {
		return
	}

	user, _ := CurrentUser(c)
	post, err := a.posts.Create(service.PostInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Content:        req.Content,
		Excerpt:        req.Excerpt,
		CoverURL:       req.CoverURL,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		CategoryIDs:    req.CategoryIDs,
		TagIDs:         req.TagIDs,
		UserID:         user.ID,
	})
	if err != nil {
		a.respondPostError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": newPostView(post, true)})
}

// UpdatePost 更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid post id"))
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "title is required") {
		return
	}

	post, err := a.posts.Update(id, service.PostInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Content:        req.Content,
		Excerpt:        req.Excerpt,
		CoverURL:       req.CoverURL,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		CategoryIDs:    req.CategoryIDs,
		TagIDs:         req.TagIDs,
	})
	if err != nil {
		a.respondPostError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": newPostView(post, true)})
}

// PublishPost 发布文章；首次发布时记录时间戳，此后保持不变
func (a *API) PublishPost(c *gin.Context) {
	a.togglePublish(c, true)
}

// UnpublishPost 下线文章，保留原发布时间戳
func (a *API) UnpublishPost(c *gin.Context) {
	a.togglePublish(c, false)
}

func (a *API) togglePublish(c *gin.Context, publish bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid post id"))
		return
	}

	var post *db.Post
	if publish {
		post, err = a.posts.Publish(id)
	} else {
		post, err = a.posts.Unpublish(id)
	}
	if err != nil {
		a.respondPostError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": newPostView(post, false)})
}

// DeletePost 删除文章及其关联数据
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "invalid post id"))
		return
	}

	if err := a.posts.Delete(id); err != nil {
		a.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

type reorderRequest struct {
	PostOrders []service.PostOrder `json:"postOrders" binding:"required,min=1,dive"`
}

// ReorderPosts 在单个事务中批量更新排序；任何一条失败则全部回滚
func (a *API) ReorderPosts(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "postOrders is required") {
		return
	}

	if err := a.posts.Reorder(req.PostOrders); err != nil {
		a.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "posts reordered"})
}

func (a *API) respondPostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, httperr.NotFound("POST_NOT_FOUND", "post not found"))
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, httperr.Conflict("SLUG_TAKEN", "slug is already in use").WithField("slug"))
	case errors.Is(err, service.ErrSlugRequired):
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "slug could not be derived from title").WithField("slug"))
	case errors.Is(err, service.ErrTitleRequired):
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", "title is required").WithField("title"))
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, httperr.BadRequest("CATEGORY_NOT_FOUND", "a referenced category does not exist").WithField("categoryIds"))
	case errors.Is(err, service.ErrTagNotFound):
		respondError(c, httperr.BadRequest("TAG_NOT_FOUND", "a referenced tag does not exist").WithField("tagIds"))
	default:
		respondInternal(c, err)
	}
}
