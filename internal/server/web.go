package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebServer exposes a JSON status snapshot and Prometheus metrics.
type WebServer struct {
	ircServer  *Server
	httpServer *http.Server
}

type StatusData struct {
	Users    []UserInfo    `json:"users"`
	Channels []ChannelInfo `json:"channels"`
}

type UserInfo struct {
	Nickname string   `json:"nickname"`
	Username string   `json:"username"`
	Channels []string `json:"channels"`
	IdleSec  int      `json:"idleSec"`
}

type ChannelInfo struct {
	Name      string   `json:"name"`
	UserCount int      `json:"userCount"`
	Users     []string `json:"users"`
}

// NewWebServer creates the status server for an IRC server.
func NewWebServer(ircServer *Server, addr string) *WebServer {
	ws := &WebServer{ircServer: ircServer}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(ircServer.promReg, promhttp.HandlerOpts{}))

	ws.httpServer = &http.Server{Addr: addr, Handler: mux}
	return ws
}

// Start blocks serving HTTP until Shutdown.
func (ws *WebServer) Start() error {
	log.Printf("INFO: Status server listening on %s", ws.httpServer.Addr)
	if err := ws.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	return ws.httpServer.Shutdown(ctx)
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	data := ws.collectStatusData()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: Failed to encode status data: %v", err)
	}
}

func (ws *WebServer) collectStatusData() StatusData {
	reg := ws.ircServer.registry
	reg.mu.Lock()
	defer reg.mu.Unlock()

	data := StatusData{
		Users:    make([]UserInfo, 0, len(reg.byNick)),
		Channels: make([]ChannelInfo, 0, len(reg.channels)),
	}

	for _, sess := range reg.byNick {
		channels := make([]string, 0, len(sess.channels))
		for ch := range sess.channels {
			channels = append(channels, ch.name)
		}
		data.Users = append(data.Users, UserInfo{
			Nickname: sess.nick,
			Username: sess.username,
			Channels: channels,
			IdleSec:  sess.idleSeconds(),
		})
	}

	for _, ch := range reg.channels {
		data.Channels = append(data.Channels, ChannelInfo{
			Name:      ch.name,
			UserCount: ch.size(),
			Users:     ch.nickList(),
		})
	}

	return data
}
