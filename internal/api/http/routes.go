package httpapi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-consensus/internal/observability"
	"github.com/i474232898/weather-consensus/internal/store"
	"github.com/i474232898/weather-consensus/internal/weather"
)

const (
	msgEmptyQuery = "Provide location as query"
	msgNotFound   = "Location not found"
	msgFailed     = "Something went wrong"
)

const indexHTML = `<html>
<body>
examples:<br/>
<a href='/current?tomsk'>current weather in tomsk</a><br/>
<a href='/forecast?perm'>5 days forecast for perm</a>
</body>
</html>`

var validate = validator.New()

// Aggregator answers merged weather queries.
type Aggregator interface {
	GetCurrent(loc weather.Location) weather.AggregateResult
	GetForecast(loc weather.Location) weather.AggregateForecast
}

// ReportReader reads provider probe reports.
type ReportReader interface {
	GetLatest(location string) (store.Report, error)
	GetRange(location string, from, to time.Time) ([]store.Report, error)
}

type handlers struct {
	service Aggregator
	reports ReportReader
	logger  *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Aggregator, reports ReportReader, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{service: service, reports: reports, logger: logger}

	app.Use(requestID())

	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(indexHTML)
	})
	app.Get("/metrics", adaptor.HTTPHandler(observability.MetricsHandler()))

	// Plaintext routes: the location is the whole query string, e.g. /current?tomsk.
	app.Get("/current", h.currentText)
	app.Get("/forecast", h.forecastText)

	v1 := app.Group("/api/v1")
	v1.Get("/weather/current", h.currentJSON)
	v1.Get("/weather/forecast", h.forecastJSON)
	v1.Get("/probes/latest", h.probeLatest)
	v1.Get("/probes/history", h.probeHistory)
}

// ErrorHandler renders errors as a JSON body with the matching status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Centralized error response
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("requestId", id)
		return c.Next()
	}
}

func (h *handlers) log(c *fiber.Ctx) *zap.Logger {
	id, _ := c.Locals("requestId").(string)
	return h.logger.With(zap.String("requestId", id), zap.String("route", c.Path()))
}

// --- plaintext ---

func (h *handlers) currentText(c *fiber.Ctx) error {
	loc, err := parseLocation(c, true)
	if err != nil {
		return sendText(c, fiber.StatusUnprocessableEntity, msgEmptyQuery)
	}

	res := h.service.GetCurrent(loc)
	h.log(c).Info("current weather query",
		zap.String("location", string(loc)),
		zap.Stringer("result", res.Failure),
	)

	if status, msg, failed := failureText(res.Failure); failed {
		return sendText(c, status, msg)
	}
	return sendText(c, fiber.StatusOK, fmt.Sprintf("avg: %.1f°C\n", weather.Round1(res.Temperature)))
}

func (h *handlers) forecastText(c *fiber.Ctx) error {
	loc, err := parseLocation(c, true)
	if err != nil {
		return sendText(c, fiber.StatusUnprocessableEntity, msgEmptyQuery)
	}

	res := h.service.GetForecast(loc)
	h.log(c).Info("forecast query",
		zap.String("location", string(loc)),
		zap.Stringer("result", res.Failure),
	)

	if status, msg, failed := failureText(res.Failure); failed {
		return sendText(c, status, msg)
	}
	return sendText(c, fiber.StatusOK, FormatForecast(res.Days))
}

// FormatForecast renders one line per day, 1-based.
func FormatForecast(days weather.Forecast) string {
	lines := make([]string, 0, len(days))
	for i, d := range days {
		if d.Valid {
			lines = append(lines, fmt.Sprintf("day%d temp = %.1f°C", i+1, weather.Round1(d.Celsius)))
		} else {
			lines = append(lines, fmt.Sprintf("day%d temp is unknown°C", i+1))
		}
	}
	return strings.Join(lines, "\n")
}

func failureText(f weather.Failure) (int, string, bool) {
	switch f {
	case weather.FailureAllNotFound:
		return fiber.StatusNotFound, msgNotFound, true
	case weather.FailureAllOther:
		return fiber.StatusInternalServerError, msgFailed, true
	default:
		return fiber.StatusOK, "", false
	}
}

func sendText(c *fiber.Ctx, status int, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(status).SendString(body)
}

// --- JSON ---

type providerOutcome struct {
	Provider     string   `json:"provider"`
	Status       string   `json:"status"`
	TemperatureC *float64 `json:"temperatureC,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type currentResponse struct {
	Location     string            `json:"location"`
	TemperatureC float64           `json:"temperatureC"`
	Providers    []providerOutcome `json:"providers"`
}

type forecastDay struct {
	Day          int             `json:"day"`
	TemperatureC weather.DayTemp `json:"temperatureC"`
}

type forecastResponse struct {
	Location  string            `json:"location"`
	Days      []forecastDay     `json:"days"`
	Providers []providerOutcome `json:"providers"`
}

func (h *handlers) currentJSON(c *fiber.Ctx) error {
	loc, err := parseLocation(c, false)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	res := h.service.GetCurrent(loc)
	h.log(c).Info("current weather query",
		zap.String("location", string(loc)),
		zap.Stringer("result", res.Failure),
	)
	if err := failureError(res.Failure); err != nil {
		return err
	}

	resp := currentResponse{
		Location:     string(loc),
		TemperatureC: weather.Round1(res.Temperature),
		Providers:    make([]providerOutcome, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		po := providerOutcome{Provider: o.Provider, Status: o.Kind().String()}
		if o.OK() {
			t := o.Temperature
			po.TemperatureC = &t
		} else {
			po.Error = o.Err.Error()
		}
		resp.Providers = append(resp.Providers, po)
	}
	return c.JSON(resp)
}

func (h *handlers) forecastJSON(c *fiber.Ctx) error {
	loc, err := parseLocation(c, false)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	res := h.service.GetForecast(loc)
	h.log(c).Info("forecast query",
		zap.String("location", string(loc)),
		zap.Stringer("result", res.Failure),
	)
	if err := failureError(res.Failure); err != nil {
		return err
	}

	resp := forecastResponse{
		Location:  string(loc),
		Days:      make([]forecastDay, 0, weather.ForecastDays),
		Providers: make([]providerOutcome, 0, len(res.Outcomes)),
	}
	for i, d := range res.Days {
		if d.Valid {
			d.Celsius = weather.Round1(d.Celsius)
		}
		resp.Days = append(resp.Days, forecastDay{Day: i + 1, TemperatureC: d})
	}
	for _, o := range res.Outcomes {
		po := providerOutcome{Provider: o.Provider, Status: o.Kind().String()}
		if !o.OK() {
			po.Error = o.Err.Error()
		}
		resp.Providers = append(resp.Providers, po)
	}
	return c.JSON(resp)
}

func failureError(f weather.Failure) error {
	switch f {
	case weather.FailureAllNotFound:
		return fiber.NewError(fiber.StatusNotFound, "location not found by any provider")
	case weather.FailureAllOther:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	default:
		return nil
	}
}

// --- probes ---

func (h *handlers) probeLatest(c *fiber.Ctx) error {
	loc, err := parseLocation(c, false)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := h.reports.GetLatest(string(loc))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no probe reports for requested location")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch probe reports")
	}
	return c.JSON(report)
}

func (h *handlers) probeHistory(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	reports, err := h.reports.GetRange(req.Location.Q, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no probe reports for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch probe reports")
	}

	return c.JSON(fiber.Map{
		"location": req.Location.Q,
		"from":     req.From,
		"to":       req.To,
		"reports":  reports,
	})
}

// --- query parsing ---

// locationQuery holds the location a request asks about.
type locationQuery struct {
	Q string `validate:"required"`
}

// parseLocation reads the q parameter. With rawFallback the whole URL-decoded
// query string is used when q is absent.
func parseLocation(c *fiber.Ctx, rawFallback bool) (weather.Location, error) {
	var q locationQuery

	args := c.Request().URI().QueryArgs()
	switch {
	case args.Has("q"):
		q.Q = strings.TrimSpace(c.Query("q"))
	case rawFallback:
		raw := string(c.Request().URI().QueryString())
		if decoded, err := url.QueryUnescape(raw); err == nil {
			raw = decoded
		}
		q.Q = strings.TrimSpace(raw)
	}

	if err := validate.Struct(q); err != nil {
		return "", err
	}
	return weather.Location(q.Q), nil
}

// historyQuery holds query parameters for the probe history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocation(c, false)
	if err != nil {
		return err
	}
	h.Location = locationQuery{Q: string(loc)}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
