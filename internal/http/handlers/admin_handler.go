// Admin area handlers. Every route except the login endpoints sits behind
// middleware.AdminSession.
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/http/middleware"
	"github.com/vamgard/vamgard-backend/internal/services"
)

const defaultAdminLanding = "/Admin/Dashboard"

// LoginRequest is the admin login form.
type LoginRequest struct {
	Username   string `form:"username"    json:"username"    binding:"required" example:"admin"`
	Password   string `form:"password"    json:"password"    binding:"required"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
	ReturnURL  string `form:"return_url"  json:"return_url"  example:"/Admin/Subscribers"`
}

// LoginResponse reports a successful login and where to go next.
type LoginResponse struct {
	Success     bool   `json:"success" example:"true"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	RedirectTo  string `json:"redirect_to" example:"/Admin/Dashboard"`
}

// LoginStatusResponse is the login page model.
type LoginStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	ReturnURL     string `json:"return_url"`
}

// ChangePasswordRequest is the password change form.
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password"     json:"new_password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// DashboardResponse is the admin landing page model.
type DashboardResponse struct {
	Admin string `json:"admin"`
	*services.Dashboard
}

// SubscribersResponse lists newsletter subscribers.
type SubscribersResponse struct {
	Subscribers []domain.NewsletterSubscriber `json:"subscribers"`
	Count       int                           `json:"count"`
}

// localReturnURL accepts only same-site absolute paths.
func localReturnURL(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return defaultAdminLanding
	}
	return u
}

func (h *Handlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}

// LoginStatus godoc
// @ID          adminLoginStatus
// @Summary     Admin login page
// @Description Reports whether the caller already holds a valid session.
// @Tags        Admin
// @Produce     json
// @Param       returnUrl  query  string  false  "Local path to continue to"
// @Success     200  {object}  handlers.LoginStatusResponse
// @Router      /Admin/Auth/Login [get]
func (h *Handlers) LoginStatus(c *gin.Context) {
	resp := LoginStatusResponse{ReturnURL: localReturnURL(c.Query("returnUrl"))}
	if tok, err := c.Cookie(h.cookie.Name); err == nil && h.cookie.Sessions != nil {
		if cl, err := h.cookie.Sessions.Parse(tok); err == nil {
			resp.Authenticated = true
			resp.Username = cl.Username
		}
	}
	ok(c, http.StatusOK, resp)
}

// Login godoc
// @ID          adminLogin
// @Summary     Admin login
// @Description Verifies the credentials and sets the HttpOnly session cookie.
// @Tags        Admin
// @Accept      x-www-form-urlencoded,json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     429  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Auth/Login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidCredentials)
		return
	}

	a, err := h.svc.Admin.Authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			middleware.LoggerFrom(c).Warn().Str("username", req.Username).Msg("admin login failed")
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, msgInvalidCredentials)
			return
		}
		internalError(c, err)
		return
	}

	display := ""
	if a.DisplayName != nil {
		display = *a.DisplayName
	}
	tok, _, err := h.cookie.Sessions.Issue(a.ID, a.Username, display, req.RememberMe)
	if err != nil {
		internalError(c, err)
		return
	}
	maxAge := 0
	if req.RememberMe {
		maxAge = int(h.cookie.Sessions.Lifetime(true).Seconds())
	}
	h.setSessionCookie(c, tok, maxAge)

	middleware.LoggerFrom(c).Info().Str("username", a.Username).Bool("remember_me", req.RememberMe).Msg("admin logged in")
	ok(c, http.StatusOK, LoginResponse{
		Success:     true,
		Username:    a.Username,
		DisplayName: display,
		RedirectTo:  localReturnURL(req.ReturnURL),
	})
}

// Logout godoc
// @ID          adminLogout
// @Summary     Admin logout
// @Tags        Admin
// @Produce     json
// @Success     200  {object}  handlers.MessageResponse
// @Router      /Admin/Auth/Logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	okMessage(c, "")
}

// Dashboard godoc
// @ID          adminDashboard
// @Summary     Admin dashboard
// @Description Site totals, recently updated loans and the latest visits.
// @Tags        Admin
// @Produce     json
// @Success     200  {object}  handlers.DashboardResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Dashboard [get]
func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.svc.Admin.Dashboard(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	name := middleware.AdminUsername(c)
	if cl := middleware.AdminClaims(c); cl != nil && cl.DisplayName != "" {
		name = cl.DisplayName
	}
	ok(c, http.StatusOK, DashboardResponse{Admin: name, Dashboard: d})
}

// ChangePassword godoc
// @ID          adminChangePassword
// @Summary     Change the admin password
// @Tags        Admin
// @Accept      x-www-form-urlencoded,json
// @Produce     json
// @Param       body  body  handlers.ChangePasswordRequest  true  "Passwords"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Dashboard/ChangePassword [post]
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadRequest)
		return
	}

	err := h.svc.Admin.ChangePassword(c.Request.Context(), middleware.AdminUsername(c),
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		okMessage(c, msgPasswordChanged)
	case errors.Is(err, services.ErrPasswordMismatch):
		fail(c, http.StatusBadRequest, ErrCodePasswordPolicy, msgPasswordMismatch)
	case errors.Is(err, services.ErrPasswordTooShort):
		fail(c, http.StatusBadRequest, ErrCodePasswordPolicy, msgPasswordTooShort)
	case errors.Is(err, services.ErrWrongPassword):
		fail(c, http.StatusBadRequest, ErrCodeWrongPassword, msgWrongPassword)
	case errors.Is(err, services.ErrAdminNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
	default:
		internalError(c, err)
	}
}

// ListSubscribers godoc
// @ID          adminSubscribers
// @Summary     Newsletter subscribers
// @Description All subscribers, newest first.
// @Tags        Admin
// @Produce     json
// @Success     200  {object}  handlers.SubscribersResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Subscribers [get]
func (h *Handlers) ListSubscribers(c *gin.Context) {
	subs, err := h.svc.Admin.Subscribers(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, SubscribersResponse{Subscribers: subs, Count: len(subs)})
}

// DeleteSubscriber godoc
// @ID          adminDeleteSubscriber
// @Summary     Remove a subscriber
// @Tags        Admin
// @Produce     json
// @Param       id  path  int  true  "Subscriber id"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Subscribers/{id} [delete]
func (h *Handlers) DeleteSubscriber(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadRequest)
		return
	}
	if err := h.svc.Admin.DeleteSubscriber(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrSubscriberNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
			return
		}
		internalError(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().Uint64("subscriber_id", id).Msg("subscriber deleted")
	okMessage(c, msgSubscriberDeleted)
}

// ExportSubscribers godoc
// @ID          adminExportSubscribers
// @Summary     Export subscribers as CSV
// @Description Active subscribers as Email,Name,SubscribedAt (yyyy-MM-dd HH:mm, UTC).
// @Tags        Admin
// @Produce     text/csv
// @Success     200  {file}    file
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Subscribers/export.csv [get]
func (h *Handlers) ExportSubscribers(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Admin.ExportSubscribersCSV(c.Request.Context(), &buf); err != nil {
		internalError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="subscribers.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
