package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/fatih/color"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const help = `commands:
  /join                 join the public room
  /leave                leave the public room
  /who                  list users in the public room
  /private <user-id>    open a private chat
  /pm <user-id> <text>  send a private message
  /read <chat-id>       mark a private chat read
  /quit
anything else is sent to the public room`

func main() {
	server := flag.String("url", "ws://localhost:5000/api/ws", "websocket endpoint")
	token := flag.String("token", "", "access token, empty connects anonymously")
	flag.Parse()

	u, err := url.Parse(*server)
	if err != nil {
		color.Red("invalid url: %v", err)
		os.Exit(1)
	}
	if *token != "" {
		q := u.Query()
		q.Set("token", *token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			color.Red("handshake failed: %s", resp.Status)
		} else {
			color.Red("dial failed: %v", err)
		}
		os.Exit(1)
	}
	defer conn.Close()

	go readLoop(conn)

	color.Cyan(help)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		event, data, ok := parseCommand(line)
		if !ok {
			color.Yellow("unknown command, try:\n%s", help)
			continue
		}
		payload, _ := json.Marshal(data)
		raw, _ := json.Marshal(frame{Event: event, Data: payload})
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			color.Red("write failed: %v", err)
			return
		}
	}
}

func parseCommand(line string) (string, map[string]interface{}, bool) {
	if !strings.HasPrefix(line, "/") {
		return "send_public_message", map[string]interface{}{"content": line}, true
	}

	parts := strings.SplitN(line, " ", 3)
	switch parts[0] {
	case "/join":
		return "join_public", nil, true
	case "/leave":
		return "leave_public", nil, true
	case "/who":
		return "get_online_users", nil, true
	case "/private":
		if len(parts) < 2 {
			return "", nil, false
		}
		return "join_private", map[string]interface{}{"other_user_id": parts[1]}, true
	case "/pm":
		if len(parts) < 3 {
			return "", nil, false
		}
		return "send_private_message", map[string]interface{}{"other_user_id": parts[1], "content": parts[2]}, true
	case "/read":
		if len(parts) < 2 {
			return "", nil, false
		}
		return "mark_chat_read", map[string]interface{}{"chat_id": parts[1]}, true
	}
	return "", nil, false
}

func readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			color.Red("connection closed: %v", err)
			os.Exit(0)
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			color.Red("bad frame: %s", raw)
			continue
		}
		printFrame(f)
	}
}

func printFrame(f frame) {
	var data map[string]interface{}
	_ = json.Unmarshal(f.Data, &data)

	switch f.Event {
	case "error":
		color.Red("! %v", data["message"])
	case "new_public_message", "new_public_file_message":
		color.Green("[public] %v: %v", data["username"], describe(data))
	case "new_private_message", "new_private_file_message":
		color.Magenta("[private %v] %v: %v", data["chat_id"], data["username"], describe(data))
	case "user_joined", "user_left", "connected":
		color.Cyan("* %v", data["message"])
	case "unread_count_update":
		color.Yellow("(%v unread from %v, chat %v)", data["count"], data["other_username"], data["chat_id"])
	case "public_message_notification":
		color.Yellow("(public) %v: %v", data["sender_name"], data["preview"])
	default:
		fmt.Printf("%s %s\n", color.BlueString(f.Event), string(f.Data))
	}
}

func describe(data map[string]interface{}) string {
	content, _ := data["content"].(string)
	if file, ok := data["file"].(map[string]interface{}); ok {
		return strings.TrimSpace(fmt.Sprintf("%s [file %v %v]", content, file["filename"], file["file_url"]))
	}
	return content
}
