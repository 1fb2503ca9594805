package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/services"
)

// SubscribeRequest is the newsletter form, posted as a form or as JSON.
type SubscribeRequest struct {
	Email string `form:"email" json:"email" example:"ali@example.com"`
	Name  string `form:"name"  json:"name"  example:"علی"`
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Newsletter sign-up
// @Description Registers an email for the newsletter. An already registered email
// @Description succeeds without changes. New subscribers get a welcome email.
// @Tags        Newsletter
// @Accept      x-www-form-urlencoded,json
// @Produce     json
// @Param       body  body  handlers.SubscribeRequest  true  "Email and optional name"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     429  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Home/Subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidEmail, msgInvalidEmail)
		return
	}

	res, err := h.svc.Newsletter.Subscribe(c.Request.Context(), req.Email, req.Name, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrInvalidEmail) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidEmail, msgInvalidEmail)
			return
		}
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, msgSubscribeFailed)
		return
	}
	if res.AlreadySubscribed {
		okMessage(c, msgAlreadySubscribed)
		return
	}
	okMessage(c, msgSubscribed)
}

// Sitemap godoc
// @ID          sitemap
// @Summary     sitemap.xml
// @Tags        Site
// @Produce     xml
// @Success     200  {string}  string  "urlset document"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /sitemap.xml [get]
func (h *Handlers) Sitemap(c *gin.Context) {
	body, err := h.svc.Sitemap.Build(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
