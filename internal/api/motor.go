package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/motor2go/internal/controller"
	"github.com/qdm12/reprint"
)

type MotorService interface {
	Status() controller.Status
	Setpoint() float64
	SetSetpoint(rpm float64) error
	Toggle() float64
	UpdateGains(update controller.GainsUpdate) (controller.Gains, error)
}

type SetpointBody struct {
	Value *float64 `json:"value"`
}

type SetpointResult struct {
	Value float64 `json:"value"`
}

type motorHandler struct {
	motor MotorService
}

func registerMotorEndpoints(rest *echo.Echo, motor MotorService) {
	handler := &motorHandler{motor: motor}
	group := rest.Group("/motor")

	group.GET("/", handler.getStatus)
	group.GET("/setpoint/", handler.getSetpoint)
	group.POST("/setpoint/", handler.setSetpoint)
	group.POST("/toggle/", handler.toggle)
	group.GET("/gains/", handler.getGains)
	group.PUT("/gains/", handler.setGains)
}

// returns the status of the controller after the last tick
func (h *motorHandler) getStatus(c echo.Context) error {
	data := reprint.This(h.motor.Status())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

// returns the most recently requested setpoint
func (h *motorHandler) getSetpoint(c echo.Context) error {
	return c.JSONPretty(http.StatusOK, SetpointResult{Value: h.motor.Setpoint()}, indentationChar)
}

func (h *motorHandler) setSetpoint(c echo.Context) error {
	var body SetpointBody
	if err := c.Bind(&body); err != nil {
		return returnBadRequest(c, fmt.Errorf("invalid body: %v", err))
	}
	if body.Value == nil {
		return returnBadRequest(c, errors.New("missing field: value"))
	}

	err := h.motor.SetSetpoint(*body.Value)
	if err != nil {
		return returnBadRequest(c, err)
	}
	return c.JSONPretty(http.StatusOK, SetpointResult{Value: *body.Value}, indentationChar)
}

func (h *motorHandler) toggle(c echo.Context) error {
	setpoint := h.motor.Toggle()
	return c.JSONPretty(http.StatusOK, SetpointResult{Value: setpoint}, indentationChar)
}

func (h *motorHandler) getGains(c echo.Context) error {
	gains := h.motor.Status().Gains
	if gains == nil {
		return returnNotFound(c, controller.ErrNotTunable.Error())
	}
	return c.JSONPretty(http.StatusOK, gains, indentationChar)
}

// updates the given gains, omitted gains keep their current value
func (h *motorHandler) setGains(c echo.Context) error {
	var update controller.GainsUpdate
	if err := c.Bind(&update); err != nil {
		return returnBadRequest(c, fmt.Errorf("invalid body: %v", err))
	}

	gains, err := h.motor.UpdateGains(update)
	switch {
	case err == nil:
		return c.JSONPretty(http.StatusOK, gains, indentationChar)
	case errors.Is(err, controller.ErrNotTunable):
		return returnConflict(c, err)
	case errors.Is(err, controller.ErrInvalidValue):
		return returnBadRequest(c, err)
	default:
		return returnError(c, err)
	}
}
