package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root answers the bare liveness probe at /.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Tito Ride API is running",
	})
}

// HealthCheck reports service liveness
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Tito Ride API is healthy",
	})
}
