// Package storage keeps encoded boards in a pebble database, keyed by ksuid.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/stgyboard/pkg/stgy"
)

// ErrNotFound is returned when no board is stored under an ID.
var ErrNotFound = errors.New("board not found")

// TokenDecoder decodes a token into a board. *stgy.Codec satisfies it.
type TokenDecoder interface {
	Decode(token string) (*stgy.BoardData, error)
}

// StoredBoard is the persisted form of a board.
type StoredBoard struct {
	ID          string    `json:"id" yaml:"id" cbor:"id"`
	Token       string    `json:"token" yaml:"token" cbor:"token"`
	Name        string    `json:"name" yaml:"name" cbor:"name"`
	ObjectCount int       `json:"object_count" yaml:"object_count" cbor:"object_count"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" cbor:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at" cbor:"updated_at"`
}

// Options configures a BoardStorage.
type Options struct {
	// Decoder validates tokens before they are stored. Defaults to stgy.NewCodec().
	Decoder TokenDecoder
	Logger  *slog.Logger
	// Sync forces an fsync on every write.
	Sync bool
	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// BoardStorage is a pebble-backed board store.
type BoardStorage struct {
	db        *pebble.DB
	decoder   TokenDecoder
	logger    *slog.Logger
	writeOpts *pebble.WriteOptions
	now       func() time.Time
	encMode   cbor.EncMode

	mu     sync.Mutex
	lastID ksuid.KSUID
}

// NewBoardStorage opens (or creates) the board database at path.
func NewBoardStorage(path string, opts Options) (*BoardStorage, error) {
	if opts.Decoder == nil {
		opts.Decoder = stgy.NewCodec(stgy.WithLogger(opts.Logger))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	encMode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open board storage at %s: %w", path, err)
	}

	writeOpts := pebble.NoSync
	if opts.Sync {
		writeOpts = pebble.Sync
	}

	s := &BoardStorage{
		db:        db,
		decoder:   opts.Decoder,
		logger:    opts.Logger,
		writeOpts: writeOpts,
		now:       opts.Now,
		encMode:   encMode,
	}
	if err := s.loadLastID(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// ParseID parses the string form of a board ID.
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("invalid board id %q: %w", s, err)
	}
	return id, nil
}

// Create validates the token and stores it under a new ID.
func (s *BoardStorage) Create(token string) (*StoredBoard, error) {
	board, err := s.decoder.Decode(token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id, err := s.nextID(now)
	if err != nil {
		return nil, err
	}
	stored := &StoredBoard{
		ID:          id.String(),
		Token:       token,
		Name:        board.Name,
		ObjectCount: len(board.Objects),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.put(id, stored); err != nil {
		return nil, err
	}

	s.logger.Debug("board created", "id", stored.ID, "objects", stored.ObjectCount)
	return stored, nil
}

// Read returns the board stored under id.
func (s *BoardStorage) Read(id ksuid.KSUID) (*StoredBoard, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read board %s: %w", id, err)
	}
	defer closer.Close()

	var stored StoredBoard
	if err := cbor.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode board %s: %w", id, err)
	}
	return &stored, nil
}

// Update replaces the token of an existing board.
func (s *BoardStorage) Update(id ksuid.KSUID, token string) (*StoredBoard, error) {
	stored, err := s.Read(id)
	if err != nil {
		return nil, err
	}

	board, err := s.decoder.Decode(token)
	if err != nil {
		return nil, err
	}

	stored.Token = token
	stored.Name = board.Name
	stored.ObjectCount = len(board.Objects)
	stored.UpdatedAt = s.now().UTC()
	if err := s.put(id, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes a board. Deleting a missing board returns ErrNotFound.
func (s *BoardStorage) Delete(id ksuid.KSUID) error {
	if _, err := s.Read(id); err != nil {
		return err
	}
	if err := s.db.Delete(id.Bytes(), s.writeOpts); err != nil {
		return fmt.Errorf("failed to delete board %s: %w", id, err)
	}
	return nil
}

// List returns every stored board in creation order.
func (s *BoardStorage) List() ([]StoredBoard, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}

	boards := []StoredBoard{}
	for iter.First(); iter.Valid(); iter.Next() {
		var stored StoredBoard
		if err := cbor.Unmarshal(iter.Value(), &stored); err != nil {
			iter.Close()
			return nil, fmt.Errorf("failed to decode board %x: %w", iter.Key(), err)
		}
		boards = append(boards, stored)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to iterate boards: %w", err)
	}
	return boards, nil
}

// Close closes the underlying database.
func (s *BoardStorage) Close() error {
	return s.db.Close()
}

func (s *BoardStorage) put(id ksuid.KSUID, stored *StoredBoard) error {
	data, err := s.encMode.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode board %s: %w", id, err)
	}
	if err := s.db.Set(id.Bytes(), data, s.writeOpts); err != nil {
		return fmt.Errorf("failed to write board %s: %w", id, err)
	}
	return nil
}

// nextID returns an ID strictly greater than every ID handed out before, so
// key order matches creation order even within one second.
func (s *BoardStorage) nextID(now time.Time) (ksuid.KSUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ksuid.NewRandomWithTime(now)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to generate board id: %w", err)
	}
	if ksuid.Compare(id, s.lastID) <= 0 {
		id = s.lastID.Next()
	}
	s.lastID = id
	return id, nil
}

func (s *BoardStorage) loadLastID() error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("failed to open iterator: %w", err)
	}
	if iter.Last() {
		id, err := ksuid.FromBytes(iter.Key())
		if err == nil {
			s.lastID = id
		}
	}
	return iter.Close()
}
