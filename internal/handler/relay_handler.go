package handler

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RelayHandler passes requests through to the external collaborators: the
// OCR import service, the chatbot, and the production ("make bread")
// pipeline. None of these touch the stock invariants directly; stock changes
// they cause arrive back through the change feed.
type RelayHandler struct {
	client               *http.Client
	ocrURL               string
	chatbotURL           string
	productionWebhookURL string
}

func NewRelayHandler(ocrURL, chatbotURL, productionWebhookURL string) *RelayHandler {
	return &RelayHandler{
		client:               &http.Client{Timeout: 30 * time.Second},
		ocrURL:               ocrURL,
		chatbotURL:           chatbotURL,
		productionWebhookURL: productionWebhookURL,
	}
}

// PostOcrMenuImage forwards an uploaded menu photo to the OCR service. The
// response tells the dashboard how many menus were inserted/updated; the
// dashboard refetches its lists on success.
func (h *RelayHandler) PostOcrMenuImage(c *fiber.Ctx) error {
	if h.ocrURL == "" {
		return c.Status(503).JSON(fiber.Map{"error": "OCR service not configured"})
	}
	return h.forwardBody(c, h.ocrURL+"/menu-image")
}

// PostOcrMenuRecipe forwards a recipe sheet for structured extraction.
func (h *RelayHandler) PostOcrMenuRecipe(c *fiber.Ctx) error {
	if h.ocrURL == "" {
		return c.Status(503).JSON(fiber.Map{"error": "OCR service not configured"})
	}
	return h.forwardBody(c, h.ocrURL+"/menu-recipe")
}

// Chatbot relays a Q&A request verbatim. No state impact.
func (h *RelayHandler) Chatbot(c *fiber.Ctx) error {
	if h.chatbotURL == "" {
		return c.Status(503).JSON(fiber.Map{"error": "Chatbot not configured"})
	}
	return h.forwardBody(c, h.chatbotURL)
}

// MakeBread triggers the external production pipeline. Accepted means the
// bake was queued; the resulting stock increment shows up later via the
// change feed, this handler never writes stock itself.
func (h *RelayHandler) MakeBread(c *fiber.Ctx) error {
	if h.productionWebhookURL == "" {
		return c.Status(503).JSON(fiber.Map{"error": "Production pipeline not configured"})
	}

	req, err := http.NewRequestWithContext(c.Context(), http.MethodPost, h.productionWebhookURL, nil)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build request"})
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Production pipeline unreachable"})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.Status(502).JSON(fiber.Map{"error": "Production pipeline rejected the request"})
	}
	return c.SendStatus(202)
}

func (h *RelayHandler) forwardBody(c *fiber.Ctx, url string) error {
	req, err := http.NewRequestWithContext(c.Context(), http.MethodPost, url, bytes.NewReader(c.Body()))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build request"})
	}
	req.Header.Set("Content-Type", c.Get("Content-Type"))

	resp, err := h.client.Do(req)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Upstream service unreachable"})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Failed to read upstream response"})
	}

	c.Set("Content-Type", resp.Header.Get("Content-Type"))
	return c.Status(resp.StatusCode).Send(body)
}
