package http

import (
	"net/http"

	"library-circulation/internal/usecase/fine"

	"github.com/labstack/echo/v4"
)

type FineHandler struct{ uc *fine.Usecase }

func NewFineHandler(uc *fine.Usecase) *FineHandler { return &FineHandler{uc: uc} }

func (h *FineHandler) Assess(c echo.Context) error {
	var req fine.AssessInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Assess(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *FineHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("fine_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FineHandler) Pay(c echo.Context) error {
	dto, err := h.uc.MarkAsPaid(c.Request().Context(), c.Param("fine_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FineHandler) Waive(c echo.Context) error {
	dto, err := h.uc.Waive(c.Request().Context(), c.Param("fine_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FineHandler) Delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), c.Param("fine_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FineHandler) CreateType(c echo.Context) error {
	var req fine.FineTypeInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateFineType(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *FineHandler) ListTypes(c echo.Context) error {
	list, err := h.uc.ListFineTypes(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FineHandler) GetType(c echo.Context) error {
	dto, err := h.uc.GetFineType(c.Request().Context(), c.Param("fine_type_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FineHandler) UpdateType(c echo.Context) error {
	var req fine.FineTypeInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateFineType(c.Request().Context(), c.Param("fine_type_id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FineHandler) DeleteType(c echo.Context) error {
	if err := h.uc.DeleteFineType(c.Request().Context(), c.Param("fine_type_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
