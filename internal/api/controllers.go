package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/gains"
)

type controllerDto struct {
	Id        string             `json:"id"`
	TickRate  time.Duration      `json:"tickRate"`
	Instances []controller.State `json:"instances"`
}

type instanceFlagsDto struct {
	Inverted *bool `json:"inverted,omitempty"`
	Enabled  *bool `json:"enabled,omitempty"`
}

func registerControllerEndpoints(rest *echo.Echo, services Services) {
	group := rest.Group("/controller")

	group.GET("/", func(c echo.Context) error {
		return getControllers(c, services)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		return getController(c, services)
	})
	group.GET("/:"+urlParamId+"/:"+urlParamIndex+"/gains/", func(c echo.Context) error {
		return getInstanceGains(c, services)
	})
	group.PUT("/:"+urlParamId+"/lane/:"+urlParamLane+"/gains/", func(c echo.Context) error {
		return setLaneGains(c, services)
	})
	group.PUT("/:"+urlParamId+"/:"+urlParamIndex+"/", func(c echo.Context) error {
		return setInstanceFlags(c, services)
	})
}

func newControllerDto(group *controller.Group) controllerDto {
	return controllerDto{
		Id:        group.GetId(),
		TickRate:  group.TickRate(),
		Instances: group.States(),
	}
}

// returns a list of all configured controllers with the state of their instances
func getControllers(c echo.Context, services Services) error {
	data := make([]controllerDto, 0, len(services.Groups))
	for _, group := range services.Groups {
		data = append(data, newControllerDto(group))
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getController(c echo.Context, services Services) error {
	id := c.Param(urlParamId)
	group, exists := services.group(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, newControllerDto(group), indentationChar)
}

// returns the effective tuning of a single instance
func getInstanceGains(c echo.Context, services Services) error {
	id := c.Param(urlParamId)
	registry, exists := services.Gains[id]
	if !exists {
		return returnNotFound(c, id)
	}
	index, err := strconv.Atoi(c.Param(urlParamIndex))
	if err != nil || index < 0 || index >= registry.InstanceCount() {
		return returnNotFound(c, fmt.Sprintf("%s/%s", id, c.Param(urlParamIndex)))
	}
	return c.JSONPretty(http.StatusOK, registry.Get(index), indentationChar)
}

func setLaneGains(c echo.Context, services Services) error {
	id := c.Param(urlParamId)
	registry, exists := services.Gains[id]
	if !exists {
		return returnNotFound(c, id)
	}
	lane, err := strconv.Atoi(c.Param(urlParamLane))
	if err != nil || lane < 0 || lane >= registry.LanesPerBank() {
		return returnNotFound(c, fmt.Sprintf("%s/lane/%s", id, c.Param(urlParamLane)))
	}

	// fields missing in the request keep their current value
	g, _ := registry.Lane(lane)
	if err := c.Bind(&g); err != nil {
		return returnBadRequest(c, err)
	}
	if err := registry.SetGains(lane, g); err != nil {
		if errors.Is(err, gains.ErrInvalidGains) {
			return returnBadRequest(c, err)
		}
		return returnError(c, err)
	}

	result, _ := registry.Lane(lane)
	return c.JSONPretty(http.StatusOK, result, indentationChar)
}

func setInstanceFlags(c echo.Context, services Services) error {
	id := c.Param(urlParamId)
	registry, exists := services.Gains[id]
	if !exists {
		return returnNotFound(c, id)
	}
	index, err := strconv.Atoi(c.Param(urlParamIndex))
	if err != nil {
		return returnNotFound(c, fmt.Sprintf("%s/%s", id, c.Param(urlParamIndex)))
	}
	flags, exists := registry.Instance(index)
	if !exists {
		return returnNotFound(c, fmt.Sprintf("%s/%d", id, index))
	}

	var request instanceFlagsDto
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}
	if request.Inverted == nil && request.Enabled == nil {
		return returnBadRequest(c, errors.New("expected at least one of 'inverted' or 'enabled'"))
	}
	if request.Inverted != nil {
		flags.Inverted = *request.Inverted
	}
	if request.Enabled != nil {
		flags.Enabled = *request.Enabled
	}
	if err := registry.SetInstanceFlags(index, flags); err != nil {
		if errors.Is(err, gains.ErrNotFound) {
			return returnNotFound(c, fmt.Sprintf("%s/%d", id, index))
		}
		return returnError(c, err)
	}

	return c.JSONPretty(http.StatusOK, registry.Get(index), indentationChar)
}
