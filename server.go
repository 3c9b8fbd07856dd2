package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"i4.energy/across/hm10/at"
	"i4.energy/across/hm10/hm10"
)

const requestIDHeader = "X-Request-ID"

// Server handles incoming HTTP requests for interacting with the
// configured HM-10 module
type Server struct {
	Logger logrus.FieldLogger
	Device *hm10.Device
	// Gatherer is exposed on /metrics when set
	Gatherer prometheus.Gatherer
	// OTATimeout bounds each packet written by /ota/send
	OTATimeout time.Duration

	once   sync.Once
	engine *gin.Engine
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(s.setup)
	s.engine.ServeHTTP(w, r)
}

func (s *Server) setup() {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	r.GET("/healthz", s.handleHealth)
	r.POST("/reset", s.handleAction(s.Device.Reset))
	r.POST("/renew", s.handleAction(s.Device.Renew))

	r.GET("/name", getValue(s, s.Device.Name))
	r.PUT("/name", putValue(s, s.Device.SetName))
	r.GET("/pin", getValue(s, s.Device.Pin))
	r.PUT("/pin", putValue(s, s.Device.SetPin))
	r.GET("/role", getValue(s, s.Device.Role))
	r.PUT("/role", putValue(s, s.Device.SetRole))
	r.GET("/pin-mode", getValue(s, s.Device.PinCodeMode))
	r.PUT("/pin-mode", putValue(s, s.Device.SetPinCodeMode))
	r.GET("/work-mode", getValue(s, s.Device.WorkMode))
	r.PUT("/work-mode", putValue(s, s.Device.SetWorkMode))
	r.GET("/work-type", getValue(s, s.Device.WorkType))
	r.PUT("/work-type", putValue(s, s.Device.SetWorkType))
	r.GET("/notify", getValue(s, s.Device.NotifyMode))
	r.PUT("/notify", putValue(s, s.Device.SetNotifyMode))

	r.POST("/connect", s.handleConnect)
	r.POST("/disconnect", s.handleDisconnect)
	r.POST("/ota/send", s.handleSendOTA)
	r.POST("/ota/receive", s.handleReceiveOTA)

	r.GET("/profile", s.handleGetProfile)
	r.PUT("/profile", s.handlePutProfile)

	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
	s.engine = r
}

// requestID tags every request with an id, reusing the caller's one if
// present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log(c).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Info("Request handled")
	}
}

func (s *Server) log(c *gin.Context) logrus.FieldLogger {
	return s.Logger.WithField("request_id", c.GetString("request_id"))
}

func (s *Server) sendError(c *gin.Context, message string, statusCode int) {
	c.AbortWithStatusJSON(statusCode, gin.H{"message": message})
}

// fail maps a device error to an HTTP status. Invalid values are only
// the client's fault on requests that carried them; on reads they mean the
// module answered garbage.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, hm10.ErrAlreadyClosed), errors.Is(err, hm10.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case c.Request.Method != http.MethodGet &&
		(errors.Is(err, hm10.ErrInvalidValue) || errors.Is(err, hm10.ErrNameTooLong)):
		status = http.StatusBadRequest
	case hm10.StatusOf(err) == hm10.StatusNoResponse:
		status = http.StatusGatewayTimeout
	}

	if status != http.StatusBadRequest {
		s.log(c).WithError(err).Warn("Device operation failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"message": err.Error(),
		"status":  hm10.StatusOf(err).String(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.Device.Test(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": hm10.StatusOK.String()})
}

func (s *Server) handleAction(action func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := action(c.Request.Context()); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": hm10.StatusOK.String()})
	}
}

func getValue[T any](s *Server, get func(context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := get(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"value": v})
	}
}

func putValue[T any](s *Server, set func(context.Context, T) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Value *T `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			s.sendError(c, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Value == nil {
			s.sendError(c, "'value' field is required", http.StatusBadRequest)
			return
		}
		if err := set(c.Request.Context(), *req.Value); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"value": *req.Value})
	}
}

func (s *Server) handleConnect(c *gin.Context) {
	type ConnectRequest struct {
		AddressType hm10.AddressType `json:"address_type"`
		Address     string           `json:"address"`
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.AddressType == 0 {
		req.AddressType = hm10.AddressNormal
	}
	addr, err := hm10.ParseAddress(req.Address)
	if err != nil {
		s.sendError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Device.Connect(c.Request.Context(), req.AddressType, addr); err != nil {
		s.fail(c, err)
		return
	}
	s.log(c).WithField("address", addr).Info("Connected")
	c.JSON(http.StatusOK, gin.H{"address": addr, "address_type": req.AddressType})
}

func (s *Server) handleDisconnect(c *gin.Context) {
	status, err := s.Device.Disconnect(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// handleSendOTA relays the raw request body to the connected peer in
// packets of at most 19 bytes.
func (s *Server) handleSendOTA(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.sendError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		s.sendError(c, "empty body", http.StatusBadRequest)
		return
	}

	sent := 0
	for sent < len(body) {
		end := min(sent+at.MaxPacketSize, len(body))
		if err := s.Device.SendOTA(c.Request.Context(), body[sent:end], s.OTATimeout); err != nil {
			s.fail(c, err)
			return
		}
		sent = end
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

func (s *Server) handleReceiveOTA(c *gin.Context) {
	type ReceiveRequest struct {
		Size      int `json:"size"`
		TimeoutMS int `json:"timeout_ms"`
	}

	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Size < 1 || req.Size > at.MaxPacketSize {
		s.sendError(c, "'size' must be between 1 and 19", http.StatusBadRequest)
		return
	}
	timeout := s.OTATimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	buf := make([]byte, req.Size)
	if err := s.Device.ReceiveOTA(c.Request.Context(), buf, timeout); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", buf)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.Device.ReadProfile(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/yaml", out)
}

func (s *Server) handlePutProfile(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.sendError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var p hm10.Profile
	if err := yaml.Unmarshal(body, &p); err != nil {
		s.sendError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Device.ApplyProfile(c.Request.Context(), p); err != nil {
		s.fail(c, err)
		return
	}
	s.log(c).Info("Profile applied")
	c.Status(http.StatusNoContent)
}
