package http

import (
	"net/http"
	"strings"

	"library-circulation/pkg/apperr"

	"github.com/labstack/echo/v4"
)

const HeaderUserID = "X-User-Id"

// bindAndValidate writes 400 on malformed JSON and 422 on rule violations. When ok is false the
// response is already written and the handler returns err as is.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    string(apperr.CodeValidation),
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// writeError renders an engine error with the status carried by its code.
func writeError(c echo.Context, err error) error {
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "internal error")
	}
	meta := apperr.MetadataFor(typed.Code())
	msg := typed.Message()
	if typed.Code() == apperr.CodeInternal {
		msg = meta.PublicMessage
	}
	return c.JSON(meta.HTTPStatus, ErrorResponse{Error: msg, Code: string(typed.Code()), Details: typed.Details()})
}

func userID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
}
