package persistence

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/markusressel/motor2go/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketRuns      = "runs"
	BucketTelemetry = "telemetry"
)

type Persistence interface {
	Init() error

	SaveTelemetry(runId string, records []telemetry.Record) error
	LoadTelemetry(runId string) ([]telemetry.Record, error)
	ListRuns() ([]RunInfo, error)
	DeleteRun(runId string) error
}

// RunInfo describes a single daemon or simulation run
type RunInfo struct {
	Id      string    `json:"id"`
	Started time.Time `json:"started"`
	Updated time.Time `json:"updated"`
	Records int       `json:"records"`
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveTelemetry appends the given records to the run with the given id
func (p persistence) SaveTelemetry(runId string, records []telemetry.Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(BucketTelemetry))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		b, err := root.CreateBucketIfNotExists([]byte(runId))
		if err != nil {
			return fmt.Errorf("create run bucket: %s", err)
		}

		for _, record := range records {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if err = b.Put(sequenceKey(seq), data); err != nil {
				return err
			}
		}

		runs, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		info := RunInfo{Id: runId, Started: records[0].Timestamp}
		if existing := runs.Get([]byte(runId)); existing != nil {
			if err := json.Unmarshal(existing, &info); err != nil {
				ui.Warning("Unable to unmarshal run info of %s, recreating it: %v", runId, err)
				info = RunInfo{Id: runId, Started: records[0].Timestamp}
			}
		}
		info.Records += len(records)
		info.Updated = records[len(records)-1].Timestamp

		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		return runs.Put([]byte(runId), data)
	})
}

// LoadTelemetry loads all records of the given run, in the order they were saved
func (p persistence) LoadTelemetry(runId string) ([]telemetry.Record, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var records []telemetry.Record
	err = db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(BucketTelemetry))
		if root == nil {
			return os.ErrNotExist
		}
		b := root.Bucket([]byte(runId))
		if b == nil {
			return os.ErrNotExist
		}

		return b.ForEach(func(k, v []byte) error {
			var record telemetry.Record
			if err := json.Unmarshal(v, &record); err != nil {
				ui.Warning("Skipping corrupt telemetry record %d of run %s: %v", binary.BigEndian.Uint64(k), runId, err)
				return nil
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListRuns returns all known runs, oldest first
func (p persistence) ListRuns() ([]RunInfo, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var result []RunInfo
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var info RunInfo
			if err := json.Unmarshal(v, &info); err != nil {
				ui.Warning("Unable to unmarshal run info of %s: %v", string(k), err)
				return nil
			}
			result = append(result, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Started.Before(result[j].Started)
	})
	return result, nil
}

func (p persistence) DeleteRun(runId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(BucketRuns))
		if runs == nil || runs.Get([]byte(runId)) == nil {
			return os.ErrNotExist
		}
		if err := runs.Delete([]byte(runId)); err != nil {
			return err
		}

		root := tx.Bucket([]byte(BucketTelemetry))
		if root == nil || root.Bucket([]byte(runId)) == nil {
			return nil
		}
		return root.DeleteBucket([]byte(runId))
	})
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
