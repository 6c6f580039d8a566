package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
)

//go:embed static/rigbot-widget.js
var widgetSource string

// renderWidget fills the endpoint and WhatsApp placeholders with JSON string
// literals so any value is safe inside the script.
func renderWidget(baseURL, whatsAppPhone string) ([]byte, error) {
	endpoint, err := json.Marshal(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server: encode widget endpoint: %w", err)
	}
	phone, err := json.Marshal(whatsAppPhone)
	if err != nil {
		return nil, fmt.Errorf("server: encode whatsapp phone: %w", err)
	}

	return []byte(strings.NewReplacer(
		"__RIGBOT_ENDPOINT__", string(endpoint),
		"__RIGBOT_WHATSAPP__", string(phone),
	).Replace(widgetSource)), nil
}

func (s *Server) widgetHandler(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/javascript; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.Send(s.widget)
}
