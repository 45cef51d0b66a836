package http

import (
	"crypto/subtle"
	"net/http"

	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/common"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/utils"

	"github.com/labstack/echo/v4"
)

// TriggerAuth checks the shared trigger key from the X-API-Key header or the api_key
// query parameter. An unconfigured key rejects every request as a server error.
func TriggerAuth(apiKey string, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				log.Error("Trigger API key is not configured")
				return c.JSON(http.StatusInternalServerError, dto.TriggerResponse{
					Success:   false,
					Error:     "server misconfigured",
					Timestamp: utils.FormatISOTimestamp(utils.TimeNowUTC()),
				})
			}

			provided := c.Request().Header.Get(common.HeaderAPIKey)
			if provided == "" {
				provided = c.QueryParam(common.QueryAPIKey)
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				return c.JSON(http.StatusUnauthorized, dto.TriggerResponse{
					Success:   false,
					Error:     "unauthorized",
					Timestamp: utils.FormatISOTimestamp(utils.TimeNowUTC()),
				})
			}
			return next(c)
		}
	}
}
