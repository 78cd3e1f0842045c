package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/lesson_ledger/middleware"
	"github.com/anjiri1684/lesson_ledger/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocketcontrib.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ServeWs expects {"type":"auth","token":"..."} as the first frame, then
// streams lesson events to the user until the socket closes. Incoming frames
// after auth are ignored.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	identity, err := parseToken(authMsg.Token, h.JWTSecret)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: identity.UserID, Conn: c}
	h.Hub.Register(client)
	log.Printf("WebSocket client authenticated and registered: %s", identity.UserID)
	defer func() {
		h.Hub.Unregister(client)
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Printf("WebSocket closed for client %s", identity.UserID)
			} else {
				log.Printf("WebSocket read error for client %s: %v", identity.UserID, err)
			}
			return
		}
	}
}

func parseToken(tokenString, secret string) (middleware.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return middleware.Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return middleware.Identity{}, errors.New("invalid token")
	}
	return middleware.IdentityFromClaims(claims)
}
