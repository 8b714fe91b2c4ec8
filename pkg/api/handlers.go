package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/stgyboard/pkg/cache"
	"github.com/ssargent/stgyboard/pkg/stgy"
	"github.com/ssargent/stgyboard/pkg/storage"
)

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode godoc
//
//	@Summary		Encode a board
//	@Description	Serialize a board into a stgy token
//	@Tags			codec
//	@Accept			json
//	@Produce		json
//	@Param			board	body		stgy.BoardData	true	"Board"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/encode [post]
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var board stgy.BoardData
	if err := decodeJSONBody(r, &board); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := s.codec.Encode(&board)
	s.metrics.RecordCodecOperation("encode", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("invalid board: %v", err), http.StatusBadRequest)
		return
	}

	s.metrics.RecordTokenLength(len(token))
	sendSuccess(w, TokenResponse{Token: token})
}

// handleDecode godoc
//
//	@Summary		Decode a token
//	@Description	Parse a stgy token back into a board. Send Accept: application/cbor for a CBOR body.
//	@Tags			codec
//	@Accept			json
//	@Produce		json,application/cbor
//	@Param			token	body		TokenRequest	true	"Token"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	token, ok := readToken(w, r)
	if !ok {
		return
	}

	board, err := s.codec.Decode(token)
	s.metrics.RecordCodecOperation("decode", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("invalid code: %v", err), http.StatusBadRequest)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), ContentTypeCBOR) {
		data, err := cbor.Marshal(board)
		if err != nil {
			sendError(w, "Failed to encode board", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentTypeCBOR)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	sendSuccess(w, board)
}

// handleInspect godoc
//
//	@Summary		Inspect a token
//	@Description	Validate a token and report its key, checksum and lengths
//	@Tags			codec
//	@Accept			json
//	@Produce		json
//	@Param			token	body		TokenRequest	true	"Token"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/inspect [post]
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	token, ok := readToken(w, r)
	if !ok {
		return
	}

	info, err := s.codec.Inspect(token)
	s.metrics.RecordCodecOperation("inspect", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("invalid code: %v", err), http.StatusBadRequest)
		return
	}
	sendSuccess(w, info)
}

// handleCreateBoard godoc
//
//	@Summary		Store a board
//	@Description	Store a token and return its share link
//	@Tags			boards
//	@Accept			json
//	@Produce		json
//	@Param			token	body		TokenRequest	true	"Token"
//	@Success		201		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/boards [post]
func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	token, ok := readToken(w, r)
	if !ok {
		return
	}

	start := time.Now()
	stored, err := s.store.Create(token)
	s.metrics.RecordStorageOperation("create", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	s.cacheToken(r, stored.ID, stored.Token)
	sendJSON(w, http.StatusCreated, s.boardResponse(stored, nil))
}

// handleListBoards godoc
//
//	@Summary		List boards
//	@Description	List every stored board in creation order
//	@Tags			boards
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/boards [get]
func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	boards, err := s.store.List()
	s.metrics.RecordStorageOperation("list", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	responses := make([]BoardResponse, 0, len(boards))
	for i := range boards {
		responses = append(responses, s.boardResponse(&boards[i], nil))
	}
	sendSuccess(w, responses)
}

// handleGetBoard godoc
//
//	@Summary		Get a board
//	@Description	Get a stored board together with its decoded content
//	@Tags			boards
//	@Produce		json
//	@Param			id	path		string	true	"Board ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/boards/{id} [get]
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	stored, err := s.store.Read(id)
	s.metrics.RecordStorageOperation("read", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	board, err := s.codec.Decode(stored.Token)
	s.metrics.RecordCodecOperation("decode", err == nil)
	if err != nil {
		s.logger.Error("stored board no longer decodes", "id", stored.ID, "error", err)
		sendError(w, fmt.Sprintf("invalid code: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, s.boardResponse(stored, board))
}

// handleUpdateBoard godoc
//
//	@Summary		Update a board
//	@Description	Replace the token of a stored board
//	@Tags			boards
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Board ID"
//	@Param			token	body		TokenRequest	true	"Token"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/boards/{id} [put]
func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}
	token, ok := readToken(w, r)
	if !ok {
		return
	}

	start := time.Now()
	stored, err := s.store.Update(id, token)
	s.metrics.RecordStorageOperation("update", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	s.cacheToken(r, stored.ID, stored.Token)
	sendSuccess(w, s.boardResponse(stored, nil))
}

// handleDeleteBoard godoc
//
//	@Summary		Delete a board
//	@Description	Delete a stored board and its share link
//	@Tags			boards
//	@Produce		json
//	@Param			id	path		string	true	"Board ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/boards/{id} [delete]
func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := s.store.Delete(id)
	s.metrics.RecordStorageOperation("delete", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Delete(r.Context(), id.String()); err != nil {
			s.logger.Warn("failed to evict cached token", "id", id.String(), "error", err)
		}
	}
	sendSuccess(w, map[string]string{"status": "deleted"})
}

// handleShare serves the raw token behind a share link.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}

	if s.cache != nil {
		token, err := s.cache.Get(r.Context(), id.String())
		switch {
		case err == nil:
			s.metrics.RecordCacheLookup(cacheHit)
			writeToken(w, token)
			return
		case errors.Is(err, cache.ErrMiss):
			s.metrics.RecordCacheLookup(cacheMiss)
		default:
			s.metrics.RecordCacheLookup(cacheError)
			s.logger.Warn("token cache lookup failed", "id", id.String(), "error", err)
		}
	}

	start := time.Now()
	stored, err := s.store.Read(id)
	s.metrics.RecordStorageOperation("read", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	s.cacheToken(r, stored.ID, stored.Token)
	writeToken(w, stored.Token)
}

func (s *Server) cacheToken(r *http.Request, id, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(r.Context(), id, token, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache token", "id", id, "error", err)
	}
}

func (s *Server) boardResponse(stored *storage.StoredBoard, board *stgy.BoardData) BoardResponse {
	return BoardResponse{
		StoredBoard: *stored,
		ShareURL:    s.shareURL(stored.ID),
		Board:       board,
	}
}

func (s *Server) shareURL(id string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/s/" + id
}

// sendStoreError maps storage and codec failures onto HTTP statuses.
func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendError(w, "Board not found", http.StatusNotFound)
	case isCodecError(err):
		sendError(w, fmt.Sprintf("invalid code: %v", err), http.StatusBadRequest)
	default:
		s.logger.Error("board storage failed", "error", err)
		sendError(w, "Board storage failed", http.StatusInternalServerError)
	}
}

func isCodecError(err error) bool {
	for _, target := range []error{
		stgy.ErrMalformedToken,
		stgy.ErrInvalidKeyCharacter,
		stgy.ErrInvalidCipherCharacter,
		stgy.ErrChecksumMismatch,
		stgy.ErrDecompressedLengthMismatch,
		stgy.ErrInflate,
		stgy.ErrMalformedRecord,
		stgy.ErrValueOutOfRange,
		stgy.ErrRecordTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeJSONBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return errors.New("failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.New("invalid JSON in request body")
	}
	return nil
}

func readToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TokenRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	if req.Token == "" {
		sendError(w, "Token is required", http.StatusBadRequest)
		return "", false
	}
	return strings.TrimSpace(req.Token), true
}

func readID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid board id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func writeToken(w http.ResponseWriter, token string) {
	w.Header().Set("Content-Type", ContentTypeText)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, token)
}
