package middleware

import (
	"stylShop/business/personalize"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or mints one, echoes it on the
// response and carries it in the request context as the trace id.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}

			c.Response().Header().Set(HeaderRequestID, id)
			ctx := personalize.WithTraceID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
