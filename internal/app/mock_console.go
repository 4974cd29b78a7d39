// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
	"github.com/relabs-tech/gesture_computer/internal/sensors"
)

// RunMockConsole drives the mock sensor in-process and prints each gesture,
// without MQTT.
func RunMockConsole() error {
	cfg := config.Default()
	cfg.MockSensor = true

	mgr := sensors.GetGestureManager()
	if err := mgr.InitWithPort(sensors.NewMockPort(2*time.Second), "mock", nil, cfg); err != nil {
		return err
	}

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	return runGestureLoop(mgr, stop, func(ev gesture.Event) error {
		_, err := fmt.Printf("GESTURE=%-5s  SEQ=%d\n", ev.Gesture, ev.Seq)
		return err
	})
}
