package vstp

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// StoredMessage is one received VSTP message plus the bookkeeping needed to
// replay it at startup: spec.md §6 requires VSTP state to survive a
// restart, since the structured feed carries no bulk-file equivalent to
// fall back to.
type StoredMessage struct {
	SnapshotID string   `json:"snapshot_id"`
	Message    *Message `json:"message"`
}

// State is the persisted set of VSTP messages received so far, written to
// disk as a JSON array. Writes go to "<filename>.bak" then rename onto
// filename, so a crash mid-write never leaves a truncated file in place of
// the prior good one.
type State struct {
	mu       sync.RWMutex
	filename string
	received []StoredMessage
	log      zerolog.Logger
}

// LoadState reads previously persisted messages from filename, if it
// exists. A missing or unreadable file is not fatal — VSTP state is a
// best-effort cache, not the system of record — and is logged as a
// warning, mirroring the original importer's "failed to load previous
// VSTP workings" behaviour.
func LoadState(filename string, log zerolog.Logger) *State {
	s := &State{filename: filename, log: log}
	if filename == "" {
		return s
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", filename).Msg("failed to load previous VSTP workings")
		}
		return s
	}
	var received []StoredMessage
	if err := json.Unmarshal(data, &received); err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("failed to parse previous VSTP workings")
		return s
	}
	s.received = received
	return s
}

// Record appends a newly applied message to the in-memory set. It does not
// write to disk; call Persist once the caller is ready to flush.
func (s *State) Record(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, StoredMessage{SnapshotID: model.NewSnapshotID(), Message: msg})
}

// All returns a snapshot of every stored message, in receipt order, for
// replay against a freshly built schedule.
func (s *State) All() []StoredMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredMessage, len(s.received))
	copy(out, s.received)
	return out
}

// Replace swaps the stored set wholesale for the messages given. It does
// not itself check which messages still change the schedule; the caller's
// subset is stored as is.
func (s *State) Replace(messages []StoredMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = messages
}

// Persist writes the current state to disk via the "<filename>.bak" then
// rename dance. A State created without a filename (in-memory only, e.g.
// tests) persists as a no-op.
func (s *State) Persist() error {
	if s.filename == "" {
		return nil
	}
	s.mu.RLock()
	data, err := json.Marshal(s.received)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	tmp := s.filename + ".bak"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filename)
}
