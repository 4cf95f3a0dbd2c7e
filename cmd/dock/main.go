// Package main runs leave-and-return docking cycles against a simulated robot.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"go.viam.com/utils"

	"go.viam.com/dock/config"
	"go.viam.com/dock/logging"
	"go.viam.com/dock/robot/fake"
	"go.viam.com/dock/services/docking"
)

var logger = logging.NewLogger("dock")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile      string `flag:"config,usage=robot and docking config file"`
	Cycles          int    `flag:"cycles,default=1,usage=number of leave and return cycles"`
	LeaveDistanceMm int    `flag:"leave_distance_mm,default=300,usage=how far to drive away from the charger"`
	Delocalize      bool   `flag:"delocalize,usage=pick the robot up before each return"`
	Debug           bool   `flag:"debug,usage=enable debug logging"`
	MetricsAddress  string `flag:"metrics_address,usage=address to serve prometheus metrics on"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := &config.Config{}
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(ctx, argsParsed.ConfigFile, logger)
		if err != nil {
			return err
		}
	} else {
		cfg.RobotConfig.StartOnCharger = true
	}
	if argsParsed.Debug || cfg.Debug {
		logger.SetLevel(zapcore.DebugLevel)
	}
	if argsParsed.MetricsAddress != "" {
		cfg.MetricsAddress = argsParsed.MetricsAddress
	}

	return runCycles(ctx, cfg, argsParsed, logger)
}

func runCycles(ctx context.Context, cfg *config.Config, argsParsed Arguments, logger logging.Logger) (err error) {
	r, err := fake.NewRobot(cfg.RobotConfig, clock.New(), logger.Sublogger("robot"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := docking.NewMetrics(reg)
	if cfg.MetricsAddress != "" {
		stop, err := serveMetrics(cfg.MetricsAddress, reg, logger)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, stop())
		}()
	}

	svc, err := docking.NewService(r, cfg.DockingConfig, logger.Sublogger("docking"), docking.WithMetrics(metrics))
	if err != nil {
		return err
	}

	for i := 0; i < argsParsed.Cycles; i++ {
		if err := svc.LeaveCharger(ctx, float64(argsParsed.LeaveDistanceMm), 0); err != nil {
			return err
		}
		if argsParsed.Delocalize {
			r.Delocalize()
		}
		res, err := svc.ReturnToCharger(ctx)
		if err != nil {
			return err
		}
		logger.Infow("cycle finished",
			"cycle", i+1,
			"outcome", res.Outcome,
			"searches", len(res.Searches),
			"fallback_approach", res.UsedFallbackApproach,
			"world_pose", r.WorldPose(),
		)
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

func serveMetrics(address string, reg *prometheus.Registry, logger logging.Logger) (func() error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	utils.PanicCapturingGo(func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("metrics server stopped", "error", err)
		}
	})
	logger.Infow("serving metrics", "address", listener.Addr().String())
	return func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}, nil
}
