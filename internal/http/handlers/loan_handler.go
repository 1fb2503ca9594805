// Loan catalogue handlers.
//
//   - GET /              home page aggregates
//   - GET /Loans         filtered loan listing (weak ETag)
//   - GET /vam/{slug}    loan detail, deduplicated view counting
//   - GET /type/{slug}   loans of one loan type
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/services"
)

// Home godoc
// @ID          home
// @Summary     Home page
// @Description Featured, most viewed and latest loans, banks, loan types and totals.
// @Tags        Loans
// @Produce     json
// @Success     200  {object}  services.HomePage
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      / [get]
func (h *Handlers) Home(c *gin.Context) {
	p, err := h.svc.Loans.Home(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListLoans godoc
// @ID          listLoans
// @Summary     Loan listing
// @Description Active loans filtered by bank slug, loan type slug and a free-text query.
// @Description Supports a weak ETag via If-None-Match and may return 304.
// @Tags        Loans
// @Produce     json
// @Param       bank           query   string  false  "Bank slug"       example(bank-melli)
// @Param       type           query   string  false  "Loan type slug"  example(ezdevaj)
// @Param       q              query   string  false  "Search text"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  services.LoanListing
// @Success     304  "Not Modified"
// @Header      200  {string}  ETag  "Weak ETag for the current result"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Loans [get]
func (h *Handlers) ListLoans(c *gin.Context) {
	ctx := c.Request.Context()
	f := repo.LoanFilter{BankSlug: c.Query("bank"), TypeSlug: c.Query("type"), Query: c.Query("q")}

	// ETag pre-check (best effort).
	if n, newest, err := h.svc.Loans.ListStats(ctx, f); err == nil {
		if notModified(c, weakETag("loans", f.BankSlug+"|"+f.TypeSlug+"|"+f.Query, n, newest)) {
			return
		}
	}

	l, err := h.svc.Loans.List(ctx, f)
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

// LoanDetail godoc
// @ID          loanDetail
// @Summary     Loan page
// @Description Active loan with related loans and articles. The view counter is bumped
// @Description at most once per client IP per deduplication window.
// @Tags        Loans
// @Produce     json
// @Param       slug  path  string  true  "Loan slug"  example(vam-ezdevaj-bank-melli)
// @Success     200  {object}  services.LoanDetail
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /vam/{slug} [get]
func (h *Handlers) LoanDetail(c *gin.Context) {
	d, err := h.svc.Loans.Detail(c.Request.Context(), c.Param("slug"), c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
			return
		}
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// LoansByType godoc
// @ID          loansByType
// @Summary     Loan type page
// @Tags        Loans
// @Produce     json
// @Param       slug  path  string  true  "Loan type slug"  example(ezdevaj)
// @Success     200  {object}  services.LoanTypePage
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /type/{slug} [get]
func (h *Handlers) LoansByType(c *gin.Context) {
	p, err := h.svc.Loans.ByType(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrLoanTypeNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
			return
		}
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}
