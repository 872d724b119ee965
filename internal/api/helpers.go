package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeUndecodable(c *echo.Context, msg string) error {
	return writeError(c, http.StatusUnprocessableEntity, "decode_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorInfo{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// queryInt parses an integer query parameter, returning def when the
// parameter is absent.
func queryInt(c *echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
