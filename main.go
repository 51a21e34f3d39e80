package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/M1HNE41/Solar-Sense-App/controller"
	"github.com/M1HNE41/Solar-Sense-App/gateway"
	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/michibiki-io/goutils"
)

func main() {

	var logger *zap.Logger = nil

	location := time.Local
	if tz := goutils.GetEnv("LOG_TIMEZONE", ""); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			location = loc
		}
	}

	if strings.ToLower(goutils.GetEnv("MODE", "release")) == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
			const layout = "2006-01-02 15:04:05 MST"
			pae.AppendString(t.In(location).Format(layout))
		}
		logger, _ = logCfg.Build()
		gin.SetMode(gin.ReleaseMode)
	}

	defer logger.Sync()

	// gateway server
	serverURL := goutils.GetEnv("SERVER_URL", constant.DefaultServerURL)

	retryCount := goutils.GetIntEnv("CONNECT_RETRY_COUNT", constant.DefaultConnectRetryCount)
	reconnectWait := time.Duration(constant.DefaultReconnectWaitSeconds) * time.Second
	waiting := time.Duration(goutils.GetIntEnv("WAITING_SECONDS", constant.DefaultWaitingSeconds)) * time.Second

	// transport
	var transport gateway.Transport
	switch strings.ToLower(goutils.GetEnv("TRANSPORT", "websocket")) {
	case "serial":
		transport = gateway.NewSerialSource(logger,
			goutils.GetEnv("SERIAL_DEVICE", ""),
			goutils.GetIntEnv("SERIAL_BAUDRATE", constant.DefaultSerialBaudrate),
			retryCount, reconnectWait, waiting)
	default:
		socketURL := goutils.GetEnv("SOCKET_URL", "")
		if socketURL == "" {
			u, err := gateway.SocketURL(serverURL)
			if err != nil {
				logger.Fatal("invalid SERVER_URL", zap.String("url", serverURL), zap.Error(err))
			}
			socketURL = u
		}
		transport = gateway.NewSocketSource(logger, socketURL, retryCount, reconnectWait, waiting)
	}

	history := gateway.NewHistoryClient(logger, serverURL,
		time.Duration(goutils.GetIntEnv("FETCH_TIMEOUT_SECONDS", constant.DefaultFetchTimeoutSeconds))*time.Second)

	// controller
	liveController := controller.CreateLiveController(logger)
	analyticsController := controller.CreateAnalyticsController(logger, location,
		goutils.GetEnv("HISTORY_REFRESH_CRON_EXPR_STRING", constant.DefaultHistoryRefreshCron))

	// metrics server
	metricsController := controller.CreateMetricsController(logger, prometheus.DefaultRegisterer)

	// set handler
	liveController.RegistHandler(metricsController.Update)
	analyticsController.RegistHandler(metricsController.UpdateAnalytics)

	if err := liveController.Open(transport); err != nil {
		logger.Fatal("open live session is failed", zap.Error(err))
	}
	defer liveController.Close()

	// context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Main routine for receive live data
	go func() {
		for ctx.Err() == nil {
			if transport.Init(ctx) == nil {
				if err := transport.Serve(ctx); err != nil {
					logger.Warn("gateway link is down", zap.Error(err))
				}
				transport.Disconnect()
			}
			select {
			case <-ctx.Done():
			case <-time.After(reconnectWait):
			}
		}
	}()

	// history refresh routine
	go analyticsController.Run(ctx, history)

	engine := gin.Default()
	controller.CreateApiController(logger, liveController, analyticsController).RegistRoutes(engine)
	engine.GET("/metrics", controller.CreatePrometheusHandler())

	go func() {
		if err := engine.Run(goutils.GetEnv("LISTEN_ADDRESS", constant.DefaultListenAddress)); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
}
