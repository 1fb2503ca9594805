// Admin content management: JSON CRUD for banks, loan types, loans and blog
// posts. Every route sits behind middleware.AdminSession.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/http/middleware"
	"github.com/vamgard/vamgard-backend/internal/services"
)

// AdminBanksResponse lists every bank, active or not.
type AdminBanksResponse struct {
	Banks []domain.Bank `json:"banks"`
	Count int           `json:"count"`
}

// AdminLoanTypesResponse lists every loan type, active or not.
type AdminLoanTypesResponse struct {
	LoanTypes []domain.LoanType `json:"loan_types"`
	Count     int               `json:"count"`
}

// AdminLoansResponse lists every loan with its bank and type.
type AdminLoansResponse struct {
	Loans []domain.Loan `json:"loans"`
	Count int           `json:"count"`
}

// AdminPostsResponse lists every blog post, published or not.
type AdminPostsResponse struct {
	Posts []domain.BlogPost `json:"posts"`
	Count int               `json:"count"`
}

func contentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadRequest)
		return 0, false
	}
	return uint(id), true
}

func bindContent[T any](c *gin.Context) (*T, bool) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadRequest)
		return nil, false
	}
	return &v, true
}

// contentFailed maps a ContentService error to the envelope.
func contentFailed(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeValidation, ve.Message)
	case errors.Is(err, services.ErrSlugTaken):
		fail(c, http.StatusConflict, ErrCodeSlugTaken, msgSlugTaken)
	case errors.Is(err, services.ErrContentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
	default:
		internalError(c, err)
	}
}

func logContent(c *gin.Context, kind, action string, id uint) {
	middleware.LoggerFrom(c).Info().
		Str("kind", kind).
		Str("action", action).
		Uint("id", id).
		Str("admin", middleware.AdminUsername(c)).
		Msg("content changed")
}

// ---- banks ----

// AdminListBanks godoc
// @ID          adminListBanks
// @Summary     All banks
// @Description Every bank, including inactive ones, by display order.
// @Tags        AdminContent
// @Produce     json
// @Success     200  {object}  handlers.AdminBanksResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Banks [get]
func (h *Handlers) AdminListBanks(c *gin.Context) {
	out, err := h.svc.Content.Banks(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, AdminBanksResponse{Banks: out, Count: len(out)})
}

// AdminGetBank godoc
// @ID          adminGetBank
// @Summary     Load a bank for editing
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Bank id"
// @Success     200  {object}  domain.Bank
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/Banks/{id} [get]
func (h *Handlers) AdminGetBank(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	b, err := h.svc.Content.Bank(c.Request.Context(), id)
	if err != nil {
		contentFailed(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// AdminCreateBank godoc
// @ID          adminCreateBank
// @Summary     Create a bank
// @Description A blank slug is derived from the name.
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       body  body  domain.Bank  true  "Bank"
// @Success     201  {object}  domain.Bank
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Banks [post]
func (h *Handlers) AdminCreateBank(c *gin.Context) {
	b, valid := bindContent[domain.Bank](c)
	if !valid {
		return
	}
	if err := h.svc.Content.CreateBank(c.Request.Context(), b); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "bank", "create", b.ID)
	ok(c, http.StatusCreated, b)
}

// AdminUpdateBank godoc
// @ID          adminUpdateBank
// @Summary     Update a bank
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       id    path  int          true  "Bank id"
// @Param       body  body  domain.Bank  true  "Bank"
// @Success     200  {object}  domain.Bank
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Banks/{id} [put]
func (h *Handlers) AdminUpdateBank(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	b, valid := bindContent[domain.Bank](c)
	if !valid {
		return
	}
	if err := h.svc.Content.UpdateBank(c.Request.Context(), id, b); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "bank", "update", id)
	ok(c, http.StatusOK, b)
}

// AdminDeleteBank godoc
// @ID          adminDeleteBank
// @Summary     Delete a bank
// @Description Removes the bank and every loan it offers.
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Bank id"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Banks/{id} [delete]
func (h *Handlers) AdminDeleteBank(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	if err := h.svc.Content.DeleteBank(c.Request.Context(), id); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "bank", "delete", id)
	okMessage(c, msgContentDeleted)
}

// ---- loan types ----

// AdminListLoanTypes godoc
// @ID          adminListLoanTypes
// @Summary     All loan types
// @Tags        AdminContent
// @Produce     json
// @Success     200  {object}  handlers.AdminLoanTypesResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/LoanTypes [get]
func (h *Handlers) AdminListLoanTypes(c *gin.Context) {
	out, err := h.svc.Content.LoanTypes(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, AdminLoanTypesResponse{LoanTypes: out, Count: len(out)})
}

// AdminGetLoanType godoc
// @ID          adminGetLoanType
// @Summary     Load a loan type for editing
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Loan type id"
// @Success     200  {object}  domain.LoanType
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/LoanTypes/{id} [get]
func (h *Handlers) AdminGetLoanType(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	lt, err := h.svc.Content.LoanType(c.Request.Context(), id)
	if err != nil {
		contentFailed(c, err)
		return
	}
	ok(c, http.StatusOK, lt)
}

// AdminCreateLoanType godoc
// @ID          adminCreateLoanType
// @Summary     Create a loan type
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       body  body  domain.LoanType  true  "Loan type"
// @Success     201  {object}  domain.LoanType
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /Admin/LoanTypes [post]
func (h *Handlers) AdminCreateLoanType(c *gin.Context) {
	lt, valid := bindContent[domain.LoanType](c)
	if !valid {
		return
	}
	if err := h.svc.Content.CreateLoanType(c.Request.Context(), lt); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "loan_type", "create", lt.ID)
	ok(c, http.StatusCreated, lt)
}

// AdminUpdateLoanType godoc
// @ID          adminUpdateLoanType
// @Summary     Update a loan type
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       id    path  int              true  "Loan type id"
// @Param       body  body  domain.LoanType  true  "Loan type"
// @Success     200  {object}  domain.LoanType
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /Admin/LoanTypes/{id} [put]
func (h *Handlers) AdminUpdateLoanType(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	lt, valid := bindContent[domain.LoanType](c)
	if !valid {
		return
	}
	if err := h.svc.Content.UpdateLoanType(c.Request.Context(), id, lt); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "loan_type", "update", id)
	ok(c, http.StatusOK, lt)
}

// AdminDeleteLoanType godoc
// @ID          adminDeleteLoanType
// @Summary     Delete a loan type
// @Description Removes the type and every loan of that type.
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Loan type id"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/LoanTypes/{id} [delete]
func (h *Handlers) AdminDeleteLoanType(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	if err := h.svc.Content.DeleteLoanType(c.Request.Context(), id); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "loan_type", "delete", id)
	okMessage(c, msgContentDeleted)
}

// ---- loans ----

// AdminListLoans godoc
// @ID          adminListLoans
// @Summary     All loans
// @Description Every loan, including inactive ones, most recently updated first.
// @Tags        AdminContent
// @Produce     json
// @Success     200  {object}  handlers.AdminLoansResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Loans [get]
func (h *Handlers) AdminListLoans(c *gin.Context) {
	out, err := h.svc.Content.Loans(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, AdminLoansResponse{Loans: out, Count: len(out)})
}

// AdminGetLoan godoc
// @ID          adminGetLoan
// @Summary     Load a loan for editing
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Loan id"
// @Success     200  {object}  domain.Loan
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/Loans/{id} [get]
func (h *Handlers) AdminGetLoan(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	l, err := h.svc.Content.Loan(c.Request.Context(), id)
	if err != nil {
		contentFailed(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

// AdminCreateLoan godoc
// @ID          adminCreateLoan
// @Summary     Create a loan
// @Description bank_id and loan_type_id must name existing rows. The view counter starts at zero.
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       body  body  domain.Loan  true  "Loan"
// @Success     201  {object}  domain.Loan
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /Admin/Loans [post]
func (h *Handlers) AdminCreateLoan(c *gin.Context) {
	l, valid := bindContent[domain.Loan](c)
	if !valid {
		return
	}
	if err := h.svc.Content.CreateLoan(c.Request.Context(), l); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "loan", "create", l.ID)
	ok(c, http.StatusCreated, l)
}

// AdminUpdateLoan godoc
// @ID          adminUpdateLoan
// @Summary     Update a loan
// @Description The view counter and creation time are kept.
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       id    path  int          true  "Loan id"
// @Param       body  body  domain.Loan  true  "Loan"
// @Success     200  {object}  domain.Loan
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /Admin/Loans/{id} [put]
func (h *Handlers) AdminUpdateLoan(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	l, valid := bindContent[domain.Loan](c)
	if !valid {
		return
	}
	if err := h.svc.Content.UpdateLoan(c.Request.Context(), id, l); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "loan", "update", id)
	ok(c, http.StatusOK, l)
}

// AdminDeleteLoan godoc
// @ID          adminDeleteLoan
// @Summary     Delete a loan
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Loan id"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/Loans/{id} [delete]
func (h *Handlers) AdminDeleteLoan(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	if err := h.svc.Content.DeleteLoan(c.Request.Context(), id); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "loan", "delete", id)
	okMessage(c, msgContentDeleted)
}

// ---- blog posts ----

// AdminListPosts godoc
// @ID          adminListPosts
// @Summary     All blog posts
// @Description Every post, drafts included, most recently updated first.
// @Tags        AdminContent
// @Produce     json
// @Success     200  {object}  handlers.AdminPostsResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Admin/Blog [get]
func (h *Handlers) AdminListPosts(c *gin.Context) {
	out, err := h.svc.Content.Posts(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, AdminPostsResponse{Posts: out, Count: len(out)})
}

// AdminGetPost godoc
// @ID          adminGetPost
// @Summary     Load a blog post for editing
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Post id"
// @Success     200  {object}  domain.BlogPost
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/Blog/{id} [get]
func (h *Handlers) AdminGetPost(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	p, err := h.svc.Content.Post(c.Request.Context(), id)
	if err != nil {
		contentFailed(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// AdminCreatePost godoc
// @ID          adminCreatePost
// @Summary     Create a blog post
// @Description A published post without published_at is stamped now.
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       body  body  domain.BlogPost  true  "Post"
// @Success     201  {object}  domain.BlogPost
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /Admin/Blog [post]
func (h *Handlers) AdminCreatePost(c *gin.Context) {
	p, valid := bindContent[domain.BlogPost](c)
	if !valid {
		return
	}
	if err := h.svc.Content.CreatePost(c.Request.Context(), p); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "post", "create", p.ID)
	ok(c, http.StatusCreated, p)
}

// AdminUpdatePost godoc
// @ID          adminUpdatePost
// @Summary     Update a blog post
// @Description The first publish time is kept; an empty cover_image_url keeps the current image.
// @Tags        AdminContent
// @Accept      json
// @Produce     json
// @Param       id    path  int              true  "Post id"
// @Param       body  body  domain.BlogPost  true  "Post"
// @Success     200  {object}  domain.BlogPost
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /Admin/Blog/{id} [put]
func (h *Handlers) AdminUpdatePost(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	p, valid := bindContent[domain.BlogPost](c)
	if !valid {
		return
	}
	if err := h.svc.Content.UpdatePost(c.Request.Context(), id, p); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "post", "update", id)
	ok(c, http.StatusOK, p)
}

// AdminDeletePost godoc
// @ID          adminDeletePost
// @Summary     Delete a blog post
// @Tags        AdminContent
// @Produce     json
// @Param       id  path  int  true  "Post id"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /Admin/Blog/{id} [delete]
func (h *Handlers) AdminDeletePost(c *gin.Context) {
	id, valid := contentID(c)
	if !valid {
		return
	}
	if err := h.svc.Content.DeletePost(c.Request.Context(), id); err != nil {
		contentFailed(c, err)
		return
	}
	logContent(c, "post", "delete", id)
	okMessage(c, msgContentDeleted)
}
