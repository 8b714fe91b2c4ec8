package api

import (
	"time"

	"github.com/ssargent/stgyboard/pkg/stgy"
	"github.com/ssargent/stgyboard/pkg/storage"
)

const (
	// ContentTypeJSON is the default response encoding.
	ContentTypeJSON = "application/json"
	// ContentTypeCBOR is offered by the decode endpoint.
	ContentTypeCBOR = "application/cbor"
	// ContentTypeText is used for raw tokens on share links.
	ContentTypeText = "text/plain; charset=utf-8"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TokenRequest carries a token to decode, inspect or store
type TokenRequest struct {
	Token string `json:"token"`
}

// TokenResponse carries an encoded token
type TokenResponse struct {
	Token string `json:"token"`
}

// BoardResponse is a stored board as returned by the boards endpoints
type BoardResponse struct {
	storage.StoredBoard
	ShareURL string          `json:"share_url"`
	Board    *stgy.BoardData `json:"board,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	MaxBodyBytes int64
	// BaseURL prefixes share links, e.g. https://stgy.example.com
	BaseURL  string
	CacheTTL time.Duration
}
