// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viewer serves a live view of a running simulation: a status JSON,
// a websocket frame stream and Prometheus metrics. It never blocks the
// simulation; slow consumers miss frames or get dropped.
package viewer

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"galax/sim/world"
)

// maxConnections caps concurrent viewer connections so a scrape storm or a
// pile of stale browser tabs cannot starve the simulation host.
const maxConnections = 32

type Viewer struct {
	clients    map[*socketClient]struct{}
	register   chan *socketClient
	unregister chan *socketClient
	frames     chan []byte
	statusJSON atomic.Value
}

// New starts the viewer on the given port. Endpoints: / (status JSON),
// /ws (frame stream), /metrics (Prometheus).
func New(port int) *Viewer {
	v := &Viewer{
		clients:    make(map[*socketClient]struct{}),
		register:   make(chan *socketClient),
		unregister: make(chan *socketClient),
		frames:     make(chan []byte, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", v.serveIndex)
	mux.HandleFunc("/ws", v.serveWs)
	mux.Handle("/metrics", promhttp.Handler())

	go v.run()
	go func() {
		listener, err := net.Listen("tcp", fmt.Sprint(":", port))
		if err != nil {
			log.Println("viewer:", err)
			return
		}
		log.Println("viewer listening on", listener.Addr())
		log.Println("viewer:", http.Serve(netutil.LimitListener(listener, maxConnections), mux))
	}()

	return v
}

func (v *Viewer) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	buf, ok := v.statusJSON.Load().([]byte)
	if ok {
		_, _ = w.Write(buf)
	}
}

func (v *Viewer) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error", err)
		return
	}

	client := newSocketClient(v, conn)
	v.register <- client
	client.init()
}

// run owns the client set. Frames arrive pre-encoded; delivery to each
// client is non-blocking and unresponsive clients destroy themselves.
func (v *Viewer) run() {
	for {
		select {
		case client := <-v.register:
			v.clients[client] = struct{}{}
			clientsGauge.Inc()
		case client := <-v.unregister:
			if _, ok := v.clients[client]; ok {
				delete(v.clients, client)
				client.close()
				clientsGauge.Dec()
			}
		case frame := <-v.frames:
			for client := range v.clients {
				client.send(frame)
			}
		}
	}
}

// Broadcast publishes one iteration to all websocket clients and refreshes
// the status JSON and metrics. Called once per iteration from the hub
// goroutine; if the previous frame is still queued it is replaced.
func (v *Viewer) Broadcast(iteration int, bodies []world.Body, boundary world.Boundary) {
	iterationsTotal.Inc()
	bodiesGauge.Set(float64(len(bodies)))

	v.statusJSON.Store(encodeStatus(iteration, len(bodies), boundary))

	frame := encodeFrame(iteration, bodies, boundary)
	for {
		select {
		case v.frames <- frame:
			return
		default:
			// Drop the stale frame.
			select {
			case <-v.frames:
			default:
			}
		}
	}
}

// ObservePhase records a phase timing.
func (v *Viewer) ObservePhase(name string, duration time.Duration) {
	phaseDuration.WithLabelValues(name).Observe(duration.Seconds())
}
