// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
	"github.com/relabs-tech/gesture_computer/internal/sensors"
)

// edgeTimeout bounds each wait on the INT line so the loop can notice
// shutdown and catch data whose edge was missed.
const edgeTimeout = 500 * time.Millisecond

// gestureSource is the part of sensors.GestureManager the producer needs.
type gestureSource interface {
	WaitForData(timeout time.Duration) bool
	Advance() (gesture.Direction, bool, error)
	Source() string
}

// maxConsecutiveErrors stops the producer when the sensor keeps failing.
const maxConsecutiveErrors = 10

// runGestureLoop drains the sensor until stop is closed and hands every
// recognized gesture to emit.
func runGestureLoop(src gestureSource, stop <-chan struct{}, emit func(gesture.Event) error) error {
	var seq uint64
	failures := 0

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		src.WaitForData(edgeTimeout)

		dir, ok, err := src.Advance()
		if err != nil {
			failures++
			log.Printf("gesture: advance error (%d/%d): %v", failures, maxConsecutiveErrors, err)
			if failures >= maxConsecutiveErrors {
				return fmt.Errorf("gesture: sensor failing: %w", err)
			}
			continue
		}
		failures = 0
		if !ok {
			continue
		}

		seq++
		ev := gesture.NewEvent(dir, seq, src.Source(), time.Now())
		if err := emit(ev); err != nil {
			log.Printf("gesture: publish error (seq=%d): %v", seq, err)
			continue
		}
		log.Printf("gesture: %s (seq=%d)", ev.Gesture, seq)
	}
}

func RunGestureProducer() error {
	log.Println("starting gesture-computer producer")

	cfg := config.Get()

	mgr := sensors.GetGestureManager()
	if err := mgr.Init(); err != nil {
		return fmt.Errorf("failed to initialize gesture sensor: %w", err)
	}
	defer mgr.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Printf("connected to MQTT, publishing gestures on %s", cfg.TopicGesture)

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("gesture: shutting down")
		close(stop)
	}()

	return runGestureLoop(mgr, stop, func(ev gesture.Event) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		// Not retained: a late subscriber must not replay an old gesture.
		token := client.Publish(cfg.TopicGesture, 0, false, payload)
		token.Wait()
		return token.Error()
	})
}
