package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/danthegoodman1/tinyrdb/audit_log"
	"github.com/danthegoodman1/tinyrdb/executor"
	"github.com/danthegoodman1/tinyrdb/gologger"
	"github.com/danthegoodman1/tinyrdb/utils"
	"github.com/danthegoodman1/tinyrdb/wallet"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo    *echo.Echo
	Exec    *executor.Executor
	Wallets *wallet.Service
	Audit   *audit_log.Logger
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer builds the echo instance and its routes without listening.
func NewHTTPServer(exec *executor.Executor, wallets *wallet.Service, audit *audit_log.Logger) *HTTPServer {
	s := &HTTPServer{
		Echo:    echo.New(),
		Exec:    exec,
		Wallets: wallets,
		Audit:   audit,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = &utils.NoEscapeJSONSerializer{}

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	s.Echo.POST("/sql", ccHandler(s.SQLHandler))

	tablesGroup := s.Echo.Group("/tables")
	tablesGroup.GET("", ccHandler(s.ListTables))
	tablesGroup.GET("/:table/rows", ccHandler(s.GetRows))
	tablesGroup.POST("/:table/rows", ccHandler(s.InsertRow))
	tablesGroup.GET("/:table/export", ccHandler(s.ExportTable))

	walletsGroup := s.Echo.Group("/wallets")
	walletsGroup.POST("", ccHandler(s.CreateWallet))
	walletsGroup.PUT("/:id", ccHandler(s.EditWallet))
	walletsGroup.DELETE("/:id", ccHandler(s.DeactivateWallet))
	walletsGroup.POST("/:id/pay", ccHandler(s.PayWallet))

	s.Echo.GET("/dashboard", ccHandler(s.Dashboard))

	return s
}

func StartHTTPServer(exec *executor.Executor, wallets *wallet.Service, audit *audit_log.Logger) *HTTPServer {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.GetEnvOrDefault("HTTP_PORT", "8080")))
	if err != nil {
		logger.Error().Err(err).Msg("error creating tcp listener, exiting")
		os.Exit(1)
	}
	s := NewHTTPServer(exec, wallets, audit)

	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start h2c server, exiting")
			os.Exit(1)
		}
	}()

	return s
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req recived")
		return nil
	}
}
