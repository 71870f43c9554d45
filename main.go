package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aryanA101a/lulu/vm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	logLevel := flag.String("log-level", "warn", "log level: trace, debug, info, warn or error")
	logFile := flag.String("log-file", "", "append logs to this file instead of stderr")
	dump := flag.Bool("dump", false, "print the register state to stderr after the run")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image-file ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid -log-level: %v", err)
	}
	log.SetLevel(level)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	machine := vm.New(vm.WithLogger(log))
	for _, path := range flag.Args() {
		if err := machine.LoadFile(path); err != nil {
			log.Fatalf("failed to load image: %v", err)
		}
	}

	if err := run(machine, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	if *dump {
		if err := machine.Dump(os.Stderr, term.IsTerminal(int(os.Stderr.Fd()))); err != nil {
			log.Errorf("dump: %v", err)
		}
	}
}

// runner is the part of *vm.VM that run drives.
type runner interface {
	Run() error
	Abort()
}

// run executes the machine, aborting it on SIGINT or SIGTERM.
func run(machine runner, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runUntil(ctx, stop, machine, log)
}

// runUntil aborts machine when ctx is done. stop is called first so that default signal
// handling is back in place: a second interrupt then kills a run blocked on input.
func runUntil(ctx context.Context, stop context.CancelFunc, machine runner, log *logrus.Logger) error {
	var g errgroup.Group
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		return machine.Run()
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			stop()
			log.Info("interrupted")
			machine.Abort()
		case <-done:
		}
		return nil
	})

	return g.Wait()
}
