package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/network"
)

const usage = `commands:
  create <name> <manual|random|randomCategory> [category|word] [impostors]
  join <code> <name>
  start | rematch | accept | decline | leave | quit`

type client struct {
	conn      *websocket.Conn
	writeLock sync.Mutex
	code      string
	codeLock  sync.Mutex
}

// send formats and sends a message to the WebSocket server.
func (c *client) send(msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func (c *client) room() string {
	c.codeLock.Lock()
	defer c.codeLock.Unlock()
	return c.code
}

func (c *client) setRoom(code string) {
	c.codeLock.Lock()
	c.code = code
	c.codeLock.Unlock()
}

func (c *client) readLoop(done chan struct{}) {
	defer close(done)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Println("Read error:", err)
			return
		}
		packet, err := network.Decode(message)
		if err != nil {
			log.Printf("Received invalid packet of size %d", len(message))
			continue
		}
		if packet.MsgID == network.MsgTypeRoomConfigured {
			var rc models.RoomConfigured
			if json.Unmarshal(packet.Data, &rc) == nil {
				c.setRoom(rc.Code)
			}
		}
		log.Printf("<- %s: %s", network.EventName(packet.MsgID), string(packet.Data))
	}
}

// command turns one input line into an outbound packet.
func (c *client) command(fields []string) error {
	code := c.room()
	switch fields[0] {
	case "create":
		if len(fields) < 3 {
			log.Println(usage)
			return nil
		}
		req := models.ConfigureRoomRequest{HostName: fields[1], Mode: fields[2], ImpostorCount: 1}
		if len(fields) > 3 {
			if req.Mode == "manual" {
				req.ManualWord = fields[3]
			} else {
				req.Category = fields[3]
			}
		}
		if len(fields) > 4 {
			if n, err := strconv.Atoi(fields[4]); err == nil {
				req.ImpostorCount = n
			}
		}
		return c.send(network.MsgTypeConfigureRoom, req)
	case "join":
		if len(fields) < 3 {
			log.Println(usage)
			return nil
		}
		return c.send(network.MsgTypeJoinRoom, models.JoinRoomRequest{Code: fields[1], Name: strings.Join(fields[2:], " ")})
	case "start":
		return c.send(network.MsgTypeStartRound, models.RoomRequest{Code: code})
	case "rematch":
		return c.send(network.MsgTypeRequestRematch, models.RoomRequest{Code: code})
	case "accept", "decline":
		return c.send(network.MsgTypeRespondRematch, models.RespondRematchRequest{Code: code, Accepted: fields[0] == "accept"})
	case "leave":
		c.setRoom("")
		return c.send(network.MsgTypeLeaveRoom, models.RoomRequest{Code: code})
	default:
		log.Println(usage)
	}
	return nil
}

func main() {
	addr := flag.String("addr", "localhost:8080", "game server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	c := &client{conn: conn}

	done := make(chan struct{})
	go c.readLoop(done)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	log.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := c.send(network.MsgTypeHeartbeat, struct{}{}); err != nil {
				log.Println("Write error:", err)
				return
			}
		case line, ok := <-lines:
			fields := strings.Fields(line)
			if !ok || (len(fields) > 0 && fields[0] == "quit") {
				lines = nil
				select {
				case interrupt <- os.Interrupt:
				default:
				}
				continue
			}
			if len(fields) == 0 {
				continue
			}
			if err := c.command(fields); err != nil {
				log.Println("Write error:", err)
				return
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			c.writeLock.Lock()
			err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.writeLock.Unlock()
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
