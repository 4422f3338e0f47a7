package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/geoelev/geoelev/math/interpolate"
	"github.com/geoelev/geoelev/tabular"
)

// Handler answers undulation and elevation queries against a loaded geoid
// model. The model is read-only, so a Handler may serve concurrent requests.
type Handler struct {
	intr interpolate.BiInterpolator
}

func NewHandler(intr interpolate.BiInterpolator) *Handler {
	return &Handler{intr: intr}
}

// New returns an echo instance with the lookup API registered.
func New(intr interpolate.BiInterpolator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	NewHandler(intr).RegisterRoutes(e)
	return e
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/undulation", h.GetUndulation)
	api.GET("/elevation", h.GetElevation)
}

type UndulationResponse struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Undulation float64 `json:"undulation"`
	Covered    bool    `json:"covered"`
}

type ElevationResponse struct {
	UndulationResponse
	Height float64 `json:"height"`
	// Elevation is formatted exactly as in converted tables.
	Elevation string `json:"elevation"`
}

func floatParam(c echo.Context, name string) (float64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest,
			"missing parameter '"+name+"'")
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, echo.NewHTTPError(http.StatusBadRequest,
			"parameter '"+name+"' is not a finite number")
	}
	return x, nil
}

func (h *Handler) undulation(c echo.Context) (*UndulationResponse, error) {
	lat, err := floatParam(c, "lat")
	if err != nil {
		return nil, err
	}
	lon, err := floatParam(c, "lon")
	if err != nil {
		return nil, err
	}
	v, ok := h.intr.Eval(lat, lon)
	return &UndulationResponse{
		Lat: lat, Lon: lon, Undulation: v, Covered: ok,
	}, nil
}

// --- HANDLERS ---

// GetUndulation returns the geoid undulation at ?lat=&lon=.
func (h *Handler) GetUndulation(c echo.Context) error {
	resp, err := h.undulation(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetElevation converts the ellipsoidal ?height= at ?lat=&lon= into an
// elevation.
func (h *Handler) GetElevation(c echo.Context) error {
	height, err := floatParam(c, "height")
	if err != nil {
		return err
	}
	und, err := h.undulation(c)
	if err != nil {
		return err
	}

	resp := &ElevationResponse{UndulationResponse: *und, Height: height}
	if und.Covered {
		resp.Elevation = strconv.FormatFloat(
			height-und.Undulation, 'f', tabular.ElevationDigits, 64,
		)
	} else {
		resp.Elevation = tabular.InvalidElevation
	}
	return c.JSON(http.StatusOK, resp)
}
