package http_server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/danthegoodman1/tinyrdb/executor"
	"github.com/danthegoodman1/tinyrdb/gologger"
)

type CustomContext struct {
	echo.Context
	RequestID string
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func CreateReqContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := uuid.NewString()
		ctx := context.WithValue(c.Request().Context(), gologger.ReqIDKey, reqID)
		ctx = logger.WithContext(ctx)
		c.SetRequest(c.Request().WithContext(ctx))
		logger := zerolog.Ctx(ctx)
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("reqID", reqID)
		})
		cc := &CustomContext{
			Context:   c,
			RequestID: reqID,
		}
		return next(cc)
	}
}

// Casts to custom context for the handler, so this doesn't have to be done per handler
func ccHandler(h func(*CustomContext) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c.(*CustomContext))
	}
}

func (c *CustomContext) internalErrorMessage() string {
	return "internal error, request id: " + c.RequestID
}

func (c *CustomContext) InternalError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		zerolog.Ctx(c.Request().Context()).Warn().CallerSkipFrame(1).Msg(err.Error())
	} else {
		zerolog.Ctx(c.Request().Context()).Error().CallerSkipFrame(1).Err(err).Msg(msg)
	}
	return c.String(http.StatusInternalServerError, c.internalErrorMessage())
}

func (c *CustomContext) ErrorJSON(status int, err error) error {
	return c.JSON(status, errorResponse{Error: err.Error()})
}

// StatementError responds to a failed statement with the status its error
// class maps to.
func (c *CustomContext) StatementError(err error, msg string) error {
	switch executor.Classify(err) {
	case executor.StatusBadRequest:
		return c.ErrorJSON(http.StatusBadRequest, err)
	case executor.StatusNotFound:
		return c.ErrorJSON(http.StatusNotFound, err)
	default:
		return c.InternalError(err, msg)
	}
}
