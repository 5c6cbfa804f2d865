package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	indentationChar = "  "
	metricsPath     = "/metrics/"
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// CreateRestService creates the REST API for the given motor.
// Request metrics are registered with the given registerer, if any.
func CreateRestService(motor MotorService, registerer prometheus.Registerer) (*echo.Echo, error) {
	echoRest := CreateWebserver()
	echoRest.Use(middleware.Logger())

	if registerer != nil {
		metricsMiddleware, err := echoprometheus.MiddlewareConfig{
			Namespace:  "motor2go",
			Subsystem:  "api",
			Registerer: registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/alive/"
			},
		}.ToMiddleware()
		if err != nil {
			return nil, err
		}
		echoRest.Use(metricsMiddleware)
	}

	echoRest.GET("/alive/", isAlive)
	registerMotorEndpoints(echoRest, motor)

	return echoRest, nil
}

// CreateMetricsServer creates a webserver exposing the metrics of the given gatherer
func CreateMetricsServer(gatherer prometheus.Gatherer) *echo.Echo {
	webserver := CreateWebserver()
	webserver.GET(metricsPath, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))
	return webserver
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, message string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: message,
	}, indentationChar)
}

func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
		Message: e.Error(),
	}, indentationChar)
}

func returnConflict(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusConflict, &Result{
		Name:    "Conflict",
		Message: e.Error(),
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
