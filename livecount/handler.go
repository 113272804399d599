package livecount

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mealsphere/enrollment"
	"mealsphere/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// snapshot is the first frame sent to a freshly connected dashboard so it can
// render current totals without waiting for the next counter event.
type snapshot struct {
	MessID         string `json:"messid"`
	AttendingDay   int    `json:"attendingTodayDay"`
	AttendingNight int    `json:"attendingTodayNight"`
}

// Attach upgrades an owner dashboard connection and subscribes it to the
// mess's counter feed. Only the owner of the mess may watch it.
func Attach(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		messID := ps.ByName("messId")
		ownerID := utils.GetOwnerIDFromRequest(r)
		if ownerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		mess, status, msg := enrollment.OwnedMess(ctx, messID, ownerID)
		cancel()
		if mess == nil {
			http.Error(w, msg, status)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("livecount upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 64),
			MessID: messID,
		}

		if data, err := json.Marshal(snapshot{
			MessID:         mess.MessID,
			AttendingDay:   mess.AttendingTodayDay,
			AttendingNight: mess.AttendingTodayNight,
		}); err == nil {
			client.Send <- data
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump discards inbound frames; the feed is one-way. Its job is to notice
// the close handshake and unregister the client.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
