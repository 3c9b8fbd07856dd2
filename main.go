package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"i4.energy/across/hm10/hm10"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML, TOML or JSON config file")
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port the HM-10 is attached to")
	flag.Int("baud-rate", hm10.DefaultBaudRate, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flag.String("log-format", "text", "Log format (text, json)")
	flag.String("log-file", "", "Write logs to this file with rotation instead of stderr")
	flag.Duration("timeout", hm10.DefaultTimeout, "Timeout for each AT command transfer")
	flag.Duration("settle-delay", hm10.DefaultSettleDelay, "Wait after reset and renew")
	flag.Duration("connect-timeout", hm10.DefaultConnectTimeout, "Wait for an established connection")
	flag.Bool("trace", false, "Log every transaction step at debug level")
	flag.Bool("simulate", false, "Use an in-memory module instead of the serial port")
	flag.String("profile", "", "YAML file with module settings applied at startup")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(config, os.Stderr)
	defer closeLogger(logger)

	var dialer hm10.Dialer = hm10.SerialDialer{
		PortName: config.SerialPort,
		BaudRate: config.BaudRate,
	}
	if config.Simulate {
		logger.Warn("Using a simulated module, no serial port is opened")
		dialer = hm10.NewSimulator()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deviceConfig, err := hm10.NewConfigBuilder().
		WithDialer(dialer).
		WithTimeout(config.Timeout).
		WithSettleDelay(config.SettleDelay).
		WithConnectTimeout(config.ConnectTimeout).
		WithLogger(logger.WithField("component", "hm10")).
		WithTrace(config.Trace).
		WithMetrics(hm10.NewMetrics(registry)).
		Build()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create device config")
	}

	d, err := hm10.New(context.Background(), deviceConfig)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open device")
	}

	if config.Profile != "" {
		if err := applyProfileFile(context.Background(), d, config.Profile); err != nil {
			logger.WithError(err).Fatal("Failed to apply profile")
		}
		logger.WithField("profile", config.Profile).Info("Profile applied")
	}

	logger.WithFields(logrus.Fields{
		"serial_port": config.SerialPort,
		"baud_rate":   config.BaudRate,
		"simulate":    config.Simulate,
	}).Info("Starting HM-10 control daemon")

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:     logger.WithField("component", "server"),
			Device:     d,
			Gatherer:   registry,
			OTATimeout: config.Timeout,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithField("address", httpServer.Addr).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sig := <-sigChan
	logger.WithField("signal", sig).Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Failed to gracefully shutdown server")
	}

	logger.Info("Closing device connection")
	if err := d.Close(); err != nil {
		logger.WithError(err).Error("Failed to close device")
	}
}

// applyProfileFile loads a YAML profile and writes it to the module.
func applyProfileFile(ctx context.Context, d *hm10.Device, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var p hm10.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return d.ApplyProfile(ctx, p)
}
