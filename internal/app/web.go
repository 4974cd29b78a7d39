// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

const (
	wsWriteWait  = 2 * time.Second
	wsClientSend = 16
)

// gestureHub keeps the latest gesture and fans every new one out to the
// connected websocket clients.
type gestureHub struct {
	mu       sync.RWMutex
	last     gesture.Event
	haveLast bool
	clients  map[chan gesture.Event]struct{}
}

func newGestureHub() *gestureHub {
	return &gestureHub{clients: make(map[chan gesture.Event]struct{})}
}

// publish records ev and queues it for every client. A client whose queue
// is full misses the event.
func (h *gestureHub) publish(ev gesture.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = ev
	h.haveLast = true
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *gestureHub) latest() (gesture.Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.haveLast
}

func (h *gestureHub) subscribe() chan gesture.Event {
	ch := make(chan gesture.Event, wsClientSend)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *gestureHub) unsubscribe(ch chan gesture.Event) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// handleLatest serves the latest gesture as JSON.
func (h *gestureHub) handleLatest(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ev); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// handleStream upgrades to a websocket and pushes each gesture as a JSON
// message until the client goes away.
func (h *gestureHub) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// The reader only exists to notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-ch:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("web: websocket write error: %v", err)
				}
				return
			}
		}
	}
}

func RunWeb() error {
	cfg := config.Get()
	hub := newGestureHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicGesture, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev gesture.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		hub.publish(ev)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicGesture)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(hub, "web"))
}

// newWebMux routes the gesture API, the live stream and the pages in
// staticDir.
func newWebMux(hub *gestureHub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gesture", hub.handleLatest)
	mux.HandleFunc("/ws/gestures", hub.handleStream)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}
