package main

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// blockingMachine runs until aborted, like a program waiting in a keyboard loop.
type blockingMachine struct {
	aborted chan struct{}
	err     error
}

func (m *blockingMachine) Run() error {
	<-m.aborted
	return m.err
}

func (m *blockingMachine) Abort() {
	close(m.aborted)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunUntilInterruptRestoresSignals(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stopped atomic.Int32
	stop := func() {
		stopped.Add(1)
	}
	m := &blockingMachine{aborted: make(chan struct{})}

	errc := make(chan error, 1)
	go func() {
		errc <- runUntil(ctx, stop, m, quietLogger())
	}()
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("runUntil: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("machine was not aborted after the interrupt")
	}
	if stopped.Load() != 1 {
		t.Errorf("signal handling restored %d times, want 1", stopped.Load())
	}
}

// haltingMachine returns from Run on its own.
type haltingMachine struct {
	err     error
	aborted bool
}

func (m *haltingMachine) Run() error { return m.err }
func (m *haltingMachine) Abort() { m.aborted = true }

func TestRunUntilHalt(t *testing.T) {
	boom := errors.New("illegal opcode")
	tests := []struct {
		name string
		err  error
	}{
		{"halted", nil},
		{"fatal", boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stopped := false
			m := &haltingMachine{err: tt.err}
			err := runUntil(context.Background(), func() { stopped = true }, m, quietLogger())
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if stopped || m.aborted {
				t.Errorf("stopped=%v aborted=%v without an interrupt", stopped, m.aborted)
			}
		})
	}
}
