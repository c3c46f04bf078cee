package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	applogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// stackSize bounds the captured goroutine stack.
const stackSize = 8 << 10

// Recover turns a handler panic into a logged 500 in the API envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if e, ok := r.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(r)
				}
				stack := make([]byte, stackSize)
				stack = stack[:runtime.Stack(stack, false)]
				l.Error("panic recovered",
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("method", c.Request().Method),
					applogger.String("path", c.Path()),
					applogger.String("stack", string(stack)),
				)
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": "internal error",
					"data":    []map[string]string{{"code": "ERR_INTERNAL", "message": "unexpected server error"}},
				})
			}()
			return next(c)
		}
	}
}
