package http

import (
	"net/http"

	"library-circulation/internal/usecase/registry"

	"github.com/labstack/echo/v4"
)

type CopyHandler struct{ uc *registry.Usecase }

func NewCopyHandler(uc *registry.Usecase) *CopyHandler { return &CopyHandler{uc: uc} }

func (h *CopyHandler) Register(c echo.Context) error {
	var req registry.RegisterCopyInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *CopyHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("copy_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *CopyHandler) MarkDamaged(c echo.Context) error {
	dto, err := h.uc.MarkDamaged(c.Request().Context(), c.Param("copy_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *CopyHandler) Reset(c echo.Context) error {
	dto, err := h.uc.Reset(c.Request().Context(), c.Param("copy_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
