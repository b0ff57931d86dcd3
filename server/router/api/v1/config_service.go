package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
	"github.com/peswahq/ussd-simulator/server/service/simulator"
)

// ConfigResponse is the runtime configuration plus the closed set of
// selectable networks.
type ConfigResponse struct {
	simulator.Config
	Networks []string `json:"networks"`
}

// GetConfig returns the current runtime configuration.
func (s *APIV1Service) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, ConfigResponse{
		Config:   s.Simulator.Config(),
		Networks: ussd.Networks,
	})
}

// UpdateConfig merges the given fields into the runtime configuration.
func (s *APIV1Service) UpdateConfig(c echo.Context) error {
	update := &simulator.UpdateConfig{}
	if err := c.Bind(update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	config, err := s.Simulator.UpdateConfig(update)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ConfigResponse{Config: config, Networks: ussd.Networks})
}
