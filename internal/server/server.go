package server

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pathakanu/nudge/internal/escalation"
	"github.com/pathakanu/nudge/internal/twilio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const missingSender = "I need a message to work with. Please try again."

// Replier answers one inbound chat message.
type Replier interface {
	Reply(ctx context.Context, from, body string) (string, error)
}

// Sweeper runs one escalation sweep.
type Sweeper interface {
	Sweep(ctx context.Context) (escalation.Report, error)
}

// Config holds the dependencies for the router.
type Config struct {
	Bot      Replier
	Sweeper  Sweeper
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

type handler struct {
	cfg *Config
}

// NewRouter creates and configures the Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Printf("http: method=%s uri=%s status=%d latency=%s req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	h := &handler{cfg: cfg}
	e.POST("/twilio/webhook", h.webhook)
	e.POST("/sweep", h.sweep)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return e
}

// webhook handles Twilio's inbound message callback.
func (h *handler) webhook(c echo.Context) error {
	from := twilio.NormalizeWhatsAppAddress(c.FormValue("From"))
	if from == "" {
		return h.writeTwiML(c, missingSender)
	}

	reply, err := h.cfg.Bot.Reply(c.Request().Context(), from, c.FormValue("Body"))
	if err != nil {
		h.cfg.Logger.Printf("webhook: reply to %s: %v", from, err)
		return c.String(http.StatusInternalServerError, "internal error")
	}
	return h.writeTwiML(c, reply)
}

// writeTwiML answers with a TwiML message Twilio relays back to the sender.
func (h *handler) writeTwiML(c echo.Context, message string) error {
	doc, err := twilio.MessageTwiML(message)
	if err != nil {
		h.cfg.Logger.Printf("webhook: encode twiml: %v", err)
		return c.String(http.StatusInternalServerError, "internal error")
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, []byte(doc))
}

// sweep runs the escalation passes once, for external schedulers.
func (h *handler) sweep(c echo.Context) error {
	if _, err := h.cfg.Sweeper.Sweep(c.Request().Context()); err != nil {
		h.cfg.Logger.Printf("sweep: %v", err)
		return c.String(http.StatusInternalServerError, "sweep failed")
	}
	return c.String(http.StatusOK, "OK")
}
