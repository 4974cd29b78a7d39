// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/sensors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local tool, served from the same Pi.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	mgr  registerDevice
}

// registerDevice is the part of sensors.GestureManager the debug tool uses.
type registerDevice interface {
	ReadRegister(addr byte) (byte, error)
	WriteRegister(addr, value byte) error
	ReadAllRegisters() (map[byte]byte, error)
	ExportRegisterConfig() (map[byte]byte, error)
	Reinitialize() error
	GetRegisterMap() []sensors.RegisterInfo
	Source() string
}

// RegisterCmd is a command from the browser.
type RegisterCmd struct {
	Action  string `json:"action"` // "get_map", "read", "read_all", "write", "init", "export_config"
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// HandleRegisterDebugWS handles the WebSocket connection for register debugging
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &RegisterDebugSession{Conn: conn, mgr: sensors.GetGestureManager()}

	if err := session.sendRegisterMap(); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}
		session.handle(cmd)
	}
}

func (s *RegisterDebugSession) handle(cmd RegisterCmd) {
	switch cmd.Action {
	case "get_map":
		s.sendRegisterMap()
	case "read":
		s.handleRead(cmd)
	case "read_all":
		s.handleReadAll()
	case "write":
		s.handleWrite(cmd)
	case "init":
		s.handleInit()
	case "export_config":
		s.handleExportConfig()
	case "":
		s.sendError("missing or invalid action field")
	default:
		s.sendError(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func (s *RegisterDebugSession) handleRead(cmd RegisterCmd) {
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
		return
	}

	value, err := s.mgr.ReadRegister(addr)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    s.mgr.Source(),
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleReadAll() {
	registers, err := s.mgr.ReadAllRegisters()
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    s.mgr.Source(),
		Registers: hexRegisters(registers),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleWrite(cmd RegisterCmd) {
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
		return
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", cmd.Value))
		return
	}

	allowed, err := isRegisterWritable(addr, config.Get().RegisterDebugAllowedWrites)
	if err != nil {
		s.sendError(fmt.Sprintf("REGISTER_DEBUG_ALLOWED_WRITES: %v", err))
		return
	}
	if !allowed {
		s.sendError(fmt.Sprintf("register 0x%02X not in allowed write ranges", addr))
		return
	}

	if err := s.mgr.WriteRegister(addr, value); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    s.mgr.Source(),
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	})
}

func (s *RegisterDebugSession) handleInit() {
	if err := s.mgr.Reinitialize(); err != nil {
		s.sendError(fmt.Sprintf("reinit error: %v", err))
		return
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:    "status",
		Device:  s.mgr.Source(),
		Status:  "initialized",
		Message: "sensor reinitialized from config",
	})
}

func (s *RegisterDebugSession) handleExportConfig() {
	registers, err := s.mgr.ExportRegisterConfig()
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	now := time.Now()
	configJSON, err := json.Marshal(RegisterConfigFile{
		Version:   1,
		Device:    s.mgr.Source(),
		Timestamp: now.Format(time.RFC3339),
		Registers: hexRegisters(registers),
	})
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	s.Conn.WriteJSON(map[string]interface{}{
		"type":     "export_config",
		"message":  "config exported",
		"config":   string(configJSON),
		"filename": fmt.Sprintf("apds9960_%s_registers.json", now.Format("20060102_150405")),
	})
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      "apds9960",
		RegisterMap: s.mgr.GetRegisterMap(),
	})
}

func (s *RegisterDebugSession) sendError(message string) {
	s.Conn.WriteJSON(RegisterResponse{
		Type:    "error",
		Message: message,
	})
}

// HandleGestureData runs one FIFO drain and reports the outcome via REST.
// It competes with a running producer for FIFO data, so use it only when
// the producer is stopped.
func HandleGestureData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	mgr := sensors.GetGestureManager()
	dir, ok, err := mgr.Advance()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]interface{}{"gesture": nil, "source": mgr.Source()}
	if ok {
		resp["gesture"] = dir.String()
	}
	json.NewEncoder(w).Encode(resp)
}

func hexRegisters(registers map[byte]byte) map[string]string {
	out := make(map[string]string, len(registers))
	for addr, value := range registers {
		out[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", value)
	}
	return out
}

// parseHexByte accepts "0x1F", "0X1f" or "1F".
func parseHexByte(s string) (byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// isRegisterWritable checks addr against a list of ranges such as
// "0x80-0x8F,0xAB". An empty list allows no writes.
func isRegisterWritable(addr byte, allowedRanges string) (bool, error) {
	if strings.TrimSpace(allowedRanges) == "" {
		return false, nil
	}
	for _, part := range strings.Split(allowedRanges, ",") {
		lo, hi, found := strings.Cut(part, "-")
		first, err := parseHexByte(lo)
		if err != nil {
			return false, fmt.Errorf("invalid range %q: %w", part, err)
		}
		last := first
		if found {
			if last, err = parseHexByte(hi); err != nil {
				return false, fmt.Errorf("invalid range %q: %w", part, err)
			}
		}
		if first > last {
			return false, fmt.Errorf("invalid range %q: start above end", part)
		}
		if addr >= first && addr <= last {
			return true, nil
		}
	}
	return false, nil
}
