// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 5 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Viewers only send control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// socketClient is a write-mostly middleman between one websocket connection
// and the Viewer.
type socketClient struct {
	viewer *Viewer
	conn   *websocket.Conn
	frames chan []byte
	once   sync.Once
}

func newSocketClient(v *Viewer, conn *websocket.Conn) *socketClient {
	return &socketClient{
		viewer: v,
		conn:   conn,
		frames: make(chan []byte, 4), // A few iterations of backup before close
	}
}

func (client *socketClient) init() {
	go client.writePump()
	go client.readPump()
}

// send enqueues a frame without blocking. A full queue means the peer
// cannot keep up; it gets destroyed rather than stalling the broadcast.
func (client *socketClient) send(frame []byte) {
	select {
	case client.frames <- frame:
	default:
		client.destroy()
	}
}

func (client *socketClient) close() {
	close(client.frames)
}

func (client *socketClient) destroy() {
	client.once.Do(func() {
		select {
		case client.viewer.unregister <- client:
		default:
			go func() {
				client.viewer.unregister <- client
			}()
		}

		_ = client.conn.Close()
	})
}

// readPump only consumes control frames; any data from the peer is
// discarded.
func (client *socketClient) readPump() {
	defer client.destroy()
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("close error:", err)
			}
			return
		}
	}
}

func (client *socketClient) writePump() {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		pingTicker.Stop()
		client.destroy()
	}()

	for {
		select {
		case frame, ok := <-client.frames:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The viewer closed the channel.
				_ = client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
