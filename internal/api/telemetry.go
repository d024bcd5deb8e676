package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/act2go/internal/telemetry"
)

type telemetrySlotDto struct {
	telemetry.Slot
	Records []telemetry.Record `json:"records"`
}

func registerTelemetryEndpoints(rest *echo.Echo, services Services) {
	rest.GET("/telemetry/", func(c echo.Context) error {
		return getTelemetry(c, services)
	})
}

// returns the decoded content of the telemetry image, grouped by controller
func getTelemetry(c echo.Context, services Services) error {
	if services.Telemetry == nil {
		return returnNotFound(c, "telemetry")
	}
	data := make([]telemetrySlotDto, 0, len(services.Layout.Slots))
	for _, slot := range services.Layout.Slots {
		dto := telemetrySlotDto{Slot: slot}
		for index := 0; index < slot.Count; index++ {
			record, err := services.Telemetry.Read(slot.Base, index)
			if err != nil {
				return returnError(c, err)
			}
			dto.Records = append(dto.Records, record)
		}
		data = append(data, dto)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
