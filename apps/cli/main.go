package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	appfs "github.com/Frictionalfor/codeFORGE-sub002/fs"
	emailsvc "github.com/Frictionalfor/codeFORGE-sub002/services/email"
	logsvc "github.com/Frictionalfor/codeFORGE-sub002/services/logger"
	"github.com/Frictionalfor/codeFORGE-sub002/services/platform"
)

var logger *logsvc.StdLogger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewStdLogger(log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lshortfile), conf.Debug)

	client, err := platform.NewClientFromConfig(conf, logger)
	errAndDie(err)

	ctx := context.Background()
	if conf.Platform.Token == "" && term.IsTerminal(int(syscall.Stdin)) {
		token, err := promptCredential()
		errAndDie(err)
		ctx = platform.WithCredential(ctx, token)
	}

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf.TestMode, logger)
	mailSvc := emailsvc.NewService(conf, logger)

	classroomSvc := classroom.NewService(client, logger, classroom.Options{
		MaxConcurrentRequests: conf.Platform.MaxConcurrentRequests,
		ParallelClasses:       conf.Platform.ParallelClasses,
	})

	// start CLI
	cli := commandLine{
		conf:    conf,
		logger:  logger,
		svc:     classroomSvc,
		mailSvc: mailSvc,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	err = cli.run(ctx, os.Args)
	if w, ok := mailSvc.(interface{ Wait() }); ok {
		w.Wait()
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
