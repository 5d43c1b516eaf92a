package rest

import "github.com/labstack/echo/v4"

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// WarningResponse is returned when a request succeeded in memory but a side
// effect, such as persisting the profile, did not.
type WarningResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning"`
}

func userIDFrom(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok && id != 0
}
