package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlParamId      = "id"
	urlParamIndex   = "index"
	urlParamLane    = "lane"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// Services are the runtime objects exposed by the REST api
type Services struct {
	Groups  []*controller.Group
	Gains   map[string]*gains.Registry
	Sensors *sensors.Registry

	// optional
	Telemetry *telemetry.Buffer
	Layout    telemetry.Layout
}

func (s Services) group(id string) (*controller.Group, bool) {
	for _, group := range s.Groups {
		if group.GetId() == id {
			return group, true
		}
	}
	return nil, false
}

// CreateRestService creates the echo instance serving the api.
// Request metrics are registered with the given registerer, nil disables them.
func CreateRestService(services Services, registerer prometheus.Registerer) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())

	echoRest.Use(middleware.Logger())
	echoRest.Use(middleware.Recover())

	if registerer != nil {
		echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "api",
			Registerer: registerer,
		}))
	}

	echoRest.GET("/alive/", isAlive)

	registerControllerEndpoints(echoRest, services)
	registerSensorEndpoints(echoRest, services)
	registerTelemetryEndpoints(echoRest, services)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

// return a "bad request" message
func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
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
