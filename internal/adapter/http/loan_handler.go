package http

import (
	"net/http"

	"library-circulation/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req loan.CreateLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.UserID = userID(c)
	dto, err := h.uc.CreateLoan(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.GetLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListByUser(c echo.Context) error {
	list, err := h.uc.ListLoansByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	dto, err := h.uc.ApproveLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RejectLoan(c echo.Context) error {
	var req loan.RejectLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.LoanID = c.Param("loan_id")
	dto, err := h.uc.RejectLoan(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ApproveDetail(c echo.Context) error {
	dto, err := h.uc.ApproveLoanDetail(c.Request().Context(), c.Param("detail_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RejectDetail(c echo.Context) error {
	var req loan.RejectDetailInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.DetailID = c.Param("detail_id")
	dto, err := h.uc.RejectLoanDetail(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
