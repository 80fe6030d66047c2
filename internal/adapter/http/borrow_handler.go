package http

import (
	"net/http"

	"library-circulation/internal/usecase/borrow"
	"library-circulation/internal/usecase/fine"
	"library-circulation/internal/usecase/returns"

	"github.com/labstack/echo/v4"
)

type BorrowHandler struct {
	borrows *borrow.Usecase
	returns *returns.Usecase
	fines   *fine.Usecase
}

func NewBorrowHandler(b *borrow.Usecase, r *returns.Usecase, f *fine.Usecase) *BorrowHandler {
	return &BorrowHandler{borrows: b, returns: r, fines: f}
}

func (h *BorrowHandler) MarkBorrowed(c echo.Context) error {
	dto, err := h.borrows.MarkAsBorrowed(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BorrowHandler) Get(c echo.Context) error {
	dto, err := h.borrows.GetBorrow(c.Request().Context(), c.Param("borrow_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) GetByCode(c echo.Context) error {
	dto, err := h.borrows.GetBorrowByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) RequestReturn(c echo.Context) error {
	var req returns.ReturnInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.BorrowID = c.Param("borrow_id")
	dto, err := h.returns.RequestReturn(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) ReportLost(c echo.Context) error {
	var req returns.LostInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.BorrowID = c.Param("borrow_id")
	dto, err := h.returns.ReportLost(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowHandler) ListFines(c echo.Context) error {
	list, err := h.fines.ListByBorrow(c.Request().Context(), c.Param("borrow_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
