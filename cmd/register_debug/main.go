// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/gesture_computer/internal/app"
	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./gesture_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting APDS-9960 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	mgr := sensors.GetGestureManager()
	if err := mgr.Init(); err != nil {
		log.Fatalf("failed to initialize gesture sensor: %v", err)
	}
	defer mgr.Close()
	log.Printf("Gesture sensor available (%s)", mgr.Source())

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)

	// One FIFO drain per request; stop the producer first.
	http.HandleFunc("/api/gesture", app.HandleGestureData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", config.Get().RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
