package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/qdm12/reprint"
)

type sensorDto struct {
	Config configuration.SensorConfig `json:"config"`
	Status sensors.Status             `json:"status"`
}

type sensorValueDto struct {
	Value *float64 `json:"value"`
}

func registerSensorEndpoints(rest *echo.Echo, services Services) {
	group := rest.Group("/sensor")

	group.GET("/", func(c echo.Context) error {
		return getSensors(c, services)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		return getSensor(c, services)
	})
	group.PUT("/:"+urlParamId+"/", func(c echo.Context) error {
		return setSensorValue(c, services)
	})
}

func newSensorDto(registry *sensors.Registry, sensor sensors.Sensor) sensorDto {
	status, _ := registry.Status(sensor.GetId())
	return sensorDto{
		Config: reprint.This(sensor.GetConfig()).(configuration.SensorConfig),
		Status: status,
	}
}

func getSensors(c echo.Context, services Services) error {
	list := services.Sensors.Sensors()
	data := make([]sensorDto, 0, len(list))
	for _, sensor := range list {
		data = append(data, newSensorDto(services.Sensors, sensor))
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getSensor(c echo.Context, services Services) error {
	id := c.Param(urlParamId)
	sensor, exists := services.Sensors.GetSensor(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, newSensorDto(services.Sensors, sensor), indentationChar)
}

// sets the value of a virtual sensor
func setSensorValue(c echo.Context, services Services) error {
	id := c.Param(urlParamId)
	sensor, exists := services.Sensors.GetSensor(id)
	if !exists {
		return returnNotFound(c, id)
	}
	virtual, ok := sensor.(*sensors.VirtualSensor)
	if !ok {
		return returnBadRequest(c, fmt.Errorf("sensor '%s' is not a virtual sensor", id))
	}

	var request sensorValueDto
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}
	if request.Value == nil {
		return returnBadRequest(c, errors.New("missing 'value'"))
	}

	virtual.SetValue(*request.Value)
	if err := services.Sensors.Update(id); err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, newSensorDto(services.Sensors, sensor), indentationChar)
}
