// Package journal persists error and partial-fill records to disk so that
// operational incidents survive process restarts.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"go.uber.org/zap"
)

const (
	// KindError a failed operation inside a cycle.
	KindError = "error"
	// KindLose a detected partial fill.
	KindLose = "lose"

	errorKeyPrefix = "error_"
	loseKeyPrefix  = "lose_"
)

// Record is one persisted incident.
type Record struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
}

// Journal is an append-only store of incident records backed by a WAL.
type Journal struct {
	wal *gowal.Wal
	log *zap.Logger
}

// New opens (or creates) the journal in dir.
func New(dir string, log *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "ensure journal directory %s", dir)
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: 1000,
		MaxSegments:      100,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open journal wal")
	}

	return &Journal{wal: wal, log: log}, nil
}

// Error persists a timestamped error record. Persistence failures are
// logged, never propagated: the journal must not take down the trade loop.
func (j *Journal) Error(stage string, opErr error) {
	j.append(Record{
		Time:    time.Now().UTC(),
		Kind:    KindError,
		Stage:   stage,
		Message: opErr.Error(),
	}, errorKeyPrefix)
}

// Lose persists a partial-fill record for the offer whose leg never executed.
func (j *Journal) Lose(offerID string) {
	j.append(Record{
		Time:    time.Now().UTC(),
		Kind:    KindLose,
		Stage:   "trade",
		Message: fmt.Sprintf("only the first leg executed, second offer %s not found in trade history", offerID),
	}, loseKeyPrefix)
}

func (j *Journal) append(rec Record, keyPrefix string) {
	data, err := json.Marshal(rec)
	if err != nil {
		j.log.Error("failed to marshal journal record", zap.Error(err))
		return
	}

	index := j.wal.CurrentIndex() + 1
	if err := j.wal.Write(index, fmt.Sprintf("%s%d", keyPrefix, index), data); err != nil {
		j.log.Error("failed to persist journal record", zap.Error(err))
	}
}

// Records returns every persisted record in write order.
func (j *Journal) Records() ([]Record, error) {
	var records []Record
	for msg := range j.wal.Iterator() {
		var rec Record
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode journal record %s", msg.Key)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close flushes and closes the underlying WAL.
func (j *Journal) Close() error {
	return j.wal.Close()
}
