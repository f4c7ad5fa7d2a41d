// Command fakescan stands in for a scanning agent. It dials the viewer, sends
// a scan of generated terrain, and answers each command with an ack or a
// failure followed by a fresh scan.
package main

import (
	"flag"
	"os"

	"github.com/gorilla/websocket"
	"github.com/xlab/closer"

	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

func main() {
	url := flag.String("url", "ws://localhost:1234/", "viewer endpoint")
	radius := flag.Int("radius", 8, "scan radius, must match the viewer's")
	seed := flag.Int64("seed", 1, "terrain seed")
	flag.Parse()

	log := logging.New(os.Stdout, "[fakescan] ", logging.INFO)

	volume, err := world.NewVolume(*radius)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Errorf("dial %s: %v", *url, err)
		os.Exit(1)
	}
	closer.Bind(func() {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	log.Infof("connected to %s, radius %d", *url, volume.Radius)

	go serve(conn, newAgent(volume, *seed), log)
	closer.Hold()
}

func serve(conn *websocket.Conn, a *agent, log *logging.Logger) {
	defer closer.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(a.Scan())); err != nil {
		log.Errorf("send scan: %v", err)
		return
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Errorf("read: %v", err)
			}
			return
		}
		cmd := string(msg)
		reply := a.Apply(cmd)
		log.Infof("%q -> %q", cmd, reply[:1])

		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			log.Errorf("send reply: %v", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(a.Scan())); err != nil {
			log.Errorf("send scan: %v", err)
			return
		}
	}
}
