package storage

import (
	"encoding/json"
	"time"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Record is a successful vehicle enquiry
type Record struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Vehicle   string    `gorm:"index" json:"vehicle"`
	Created   time.Time `gorm:"index" json:"created"`
	TaxStatus string    `json:"taxStatus"`
	MotStatus string    `json:"motStatus"`
	Payload   string    `json:"-"`
}

// Data returns the stored vehicle record
func (r Record) Data() (api.Record, error) {
	var res api.Record
	err := json.Unmarshal([]byte(r.Payload), &res)
	return res, err
}

// DB stores the vehicle enquiry history
type DB struct {
	db  *gorm.DB
	log *util.Logger
}

// New opens the sqlite database at the given path
func New(file string) (*DB, error) {
	log := util.NewLogger("db")

	instance, err := gorm.Open(sqlite.Open(file), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, err
	}

	if err := instance.AutoMigrate(new(Record)); err != nil {
		return nil, err
	}

	return &DB{db: instance, log: log}, nil
}

// Store adds a vehicle record to the history. Empty records are not stored.
func (s *DB) Store(vehicle string, data api.Record, created time.Time) error {
	if data.Empty() {
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	rec := Record{
		Vehicle: vehicle,
		Created: created,
		Payload: string(b),
	}
	rec.TaxStatus, _ = data.String("taxStatus")
	rec.MotStatus, _ = data.String("motStatus")

	return s.db.Create(&rec).Error
}

// History returns the latest records of the vehicle, newest first
func (s *DB) History(vehicle string, limit int) ([]Record, error) {
	var res []Record

	tx := s.db.Where(&Record{Vehicle: vehicle}).Order("created desc, id desc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	err := tx.Find(&res).Error
	return res, err
}

// Listener returns a function storing records of the given vehicle
func (s *DB) Listener(vehicle string) func(api.Record) {
	return func(data api.Record) {
		if err := s.Store(vehicle, data, time.Now()); err != nil {
			s.log.ERROR.Printf("%s: %v", vehicle, err)
		}
	}
}
