// Package session persists the current pressure and volume between runs.
// Accumulated work is not part of a session and restarts at zero.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/san-kum/pvsim/internal/thermo"
)

// ErrNoSession is returned by Load when nothing has been saved yet.
var ErrNoSession = errors.New("no saved session")

const (
	bucketSession = "session"
	keyPressure   = "pressure"
	keyVolume     = "volume"
)

type Session struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens or creates the session database at path.
func Open(path string, logger *slog.Logger) (*Session, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSession))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Session{db: db, logger: logger}, nil
}

func (s *Session) Close() error {
	return s.db.Close()
}

// Save stores the pressure and volume of st.
func (s *Session) Save(st thermo.State) error {
	if !st.Query().IsValid() {
		return thermo.ErrNonFinite
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSession))
		if err := b.Put([]byte(keyPressure), formatFloat(st.Pressure)); err != nil {
			return err
		}
		return b.Put([]byte(keyVolume), formatFloat(st.Volume))
	})
	if err != nil {
		return err
	}
	s.logger.Debug("session saved", "pressure", st.Pressure, "volume", st.Volume)
	return nil
}

// Load returns the saved state with zero work.
func (s *Session) Load() (thermo.State, error) {
	var st thermo.State
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSession))
		p, v := b.Get([]byte(keyPressure)), b.Get([]byte(keyVolume))
		if p == nil || v == nil {
			return ErrNoSession
		}
		var err error
		if st.Pressure, err = strconv.ParseFloat(string(p), 64); err != nil {
			return fmt.Errorf("corrupt %s: %w", keyPressure, err)
		}
		if st.Volume, err = strconv.ParseFloat(string(v), 64); err != nil {
			return fmt.Errorf("corrupt %s: %w", keyVolume, err)
		}
		return nil
	})
	return st, err
}

// Clear forgets the saved state.
func (s *Session) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSession))
		if err := b.Delete([]byte(keyPressure)); err != nil {
			return err
		}
		return b.Delete([]byte(keyVolume))
	})
}

func formatFloat(f float64) []byte {
	return []byte(strconv.FormatFloat(f, 'g', -1, 64))
}
