package config

import (
	"log"
	"os"

	"github.com/google/uuid"
)

// Config carries every deployment knob. Store identity is configuration, not
// a literal in code: multi-store support is a config change.
type Config struct {
	Port string

	// StoreID scopes every query and mutation to one bakery location.
	StoreID uuid.UUID

	// ReceiptQtyMode selects whether a purchase receipt applies requested
	// or received quantities to ingredient stock.
	ReceiptQtyMode string

	OCRServiceURL        string
	ChatbotURL           string
	ProductionWebhookURL string
}

func Load() *Config {
	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		ReceiptQtyMode:       getEnv("RECEIPT_QTY_MODE", "requested"),
		OCRServiceURL:        os.Getenv("OCR_SERVICE_URL"),
		ChatbotURL:           os.Getenv("CHATBOT_URL"),
		ProductionWebhookURL: os.Getenv("PRODUCTION_WEBHOOK_URL"),
	}

	if raw := os.Getenv("STORE_ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Fatalf("STORE_ID must be a UUID, got %q", raw)
		}
		cfg.StoreID = id
	}

	if cfg.ReceiptQtyMode != "requested" && cfg.ReceiptQtyMode != "received" {
		log.Fatalf("RECEIPT_QTY_MODE must be 'requested' or 'received', got %q", cfg.ReceiptQtyMode)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
