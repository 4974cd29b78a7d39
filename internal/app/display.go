// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

const (
	displayWidth  = 128
	displayHeight = 64
)

// DisplayData holds the latest gesture for display
type DisplayData struct {
	mu sync.RWMutex

	last     gesture.Event
	haveLast bool
	count    int
}

func (d *DisplayData) update(ev gesture.Event) {
	d.mu.Lock()
	d.last = ev
	d.haveLast = true
	d.count++
	d.mu.Unlock()
}

func (d *DisplayData) snapshot() (gesture.Event, bool, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last, d.haveLast, d.count
}

func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// The SSD1306 driver always addresses 0x3C.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized on %s", bus)

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicGesture, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev gesture.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("display: gesture unmarshal error: %v", err)
			return
		}
		data.update(ev)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicGesture)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	lastDrawn := -1
	for range ticker.C {
		ev, ok, count := data.snapshot()
		if count == lastDrawn {
			continue
		}
		if err := dev.Draw(dev.Bounds(), renderGesture(ev, ok, count), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
			continue
		}
		lastDrawn = count
	}

	return nil
}

func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newFrame()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Gesture Pi"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Wave a hand"))

	return img
}

// renderGesture draws the last gesture with an arrow pointing its way.
func renderGesture(ev gesture.Event, haveData bool, count int) *image1bit.VerticalLSB {
	img, drawer := newFrame()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Gesture"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return img
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(strings.ToUpper(ev.Gesture)))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("#%d", ev.Seq)))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(fmt.Sprintf("seen %d", count)))

	if d, err := gesture.ParseDirection(ev.Gesture); err == nil {
		drawArrow(img, d, image.Pt(96, 32), 20)
	}
	return img
}

// drawArrow draws a shaft of length 2*r through c and a head at the end
// pointing in direction d.
func drawArrow(img *image1bit.VerticalLSB, d gesture.Direction, c image.Point, r int) {
	var dx, dy int
	switch d {
	case gesture.Up:
		dy = -1
	case gesture.Down:
		dy = 1
	case gesture.Left:
		dx = -1
	case gesture.Right:
		dx = 1
	default:
		return
	}

	for i := -r; i <= r; i++ {
		img.SetBit(c.X+i*dx, c.Y+i*dy, image1bit.On)
	}

	tip := image.Pt(c.X+r*dx, c.Y+r*dy)
	for i := 1; i <= r/2; i++ {
		// Back along the shaft, spread on both sides of it.
		bx, by := tip.X-i*dx, tip.Y-i*dy
		img.SetBit(bx+i*dy, by+i*dx, image1bit.On)
		img.SetBit(bx-i*dy, by-i*dx, image1bit.On)
	}
}
