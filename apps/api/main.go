package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	echoapi "github.com/Frictionalfor/codeFORGE-sub002/apps/api/echo"
	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	logsvc "github.com/Frictionalfor/codeFORGE-sub002/services/logger"
	"github.com/Frictionalfor/codeFORGE-sub002/services/platform"
	"github.com/Frictionalfor/codeFORGE-sub002/storage/inmem"
)

// latestResultMaxAge bounds how long a stored dashboard answers the assignment views.
const latestResultMaxAge = 10 * time.Minute

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	platformLogger := logsvc.NewStdLogger(
		log.New(os.Stdout, "PLATFORM : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf.Debug,
	)

	// set up services
	client, err := platform.NewClientFromConfig(conf, platformLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up platform client: %v", err), err)
	}
	classroomSvc := classroom.NewService(client, logger, classroom.Options{
		MaxConcurrentRequests: conf.Platform.MaxConcurrentRequests,
		ParallelClasses:       conf.Platform.ParallelClasses,
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("platform").Set(conf.Platform.BaseURL)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			ClassroomSvc: classroomSvc,
			Store:        inmem.NewStore(latestResultMaxAge),
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
