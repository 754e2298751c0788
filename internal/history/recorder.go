package history

import (
	"errors"
	"sync"
)

// Recorder writes runs to the store at Path. The database is opened for each
// write and closed again, so other processes can read the log in between.
type Recorder struct {
	Path string

	mu sync.Mutex
}

// NewRecorder returns a Recorder for the store at path.
func NewRecorder(path string) *Recorder {
	return &Recorder{Path: path}
}

// Record opens the store, stores rec and closes the store.
func (r *Recorder) Record(rec RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := Open(r.Path)
	if err != nil {
		return err
	}
	err = store.Record(rec)
	return errors.Join(err, store.Close())
}
