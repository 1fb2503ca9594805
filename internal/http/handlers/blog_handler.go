package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/services"
	"github.com/vamgard/vamgard-backend/internal/utils"
)

// ListPosts godoc
// @ID          listPosts
// @Summary     Blog index
// @Description Published posts, newest first, paged. Supports a weak ETag.
// @Tags        Blog
// @Produce     json
// @Param       page           query   int     false  "1-based page"  minimum(1) default(1)
// @Param       category       query   string  false  "Category name"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  services.BlogListing
// @Success     304  "Not Modified"
// @Header      200  {string}  ETag  "Weak ETag for the current result"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Blog [get]
func (h *Handlers) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	category := c.Query("category")

	if n, newest, err := h.svc.Blog.Stats(ctx, category); err == nil {
		if notModified(c, weakETag("posts", category+"|"+strconv.Itoa(page), n, newest)) {
			return
		}
	}

	l, err := h.svc.Blog.List(ctx, page, category)
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

// PostDetail godoc
// @ID          postDetail
// @Summary     Blog post
// @Description Published post with sanitized content and related posts. The view
// @Description counter is bumped at most once per client IP per deduplication window.
// @Tags        Blog
// @Produce     json
// @Param       slug  path  string  true  "Post slug"
// @Success     200  {object}  services.BlogDetail
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /blog/{slug} [get]
func (h *Handlers) PostDetail(c *gin.Context) {
	d, err := h.svc.Blog.Detail(c.Request.Context(), c.Param("slug"), c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
			return
		}
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}
