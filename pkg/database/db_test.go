package database

import (
	"os"
	"testing"
	"time"

	"github.com/k9fne/fned/pkg/logger"
)

func TestNewDB(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_fned.db"
	defer func() { _ = os.Remove(dbPath) }()

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.db == nil {
		t.Error("Expected non-nil database connection")
	}
}

func TestNewDB_DefaultPath(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	defer func() { _ = os.Remove("fned.db") }()

	cfg := Config{}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database with default path: %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.db == nil {
		t.Error("Expected non-nil database connection")
	}
}

func TestCallRecord_BeforeCreate(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_call_record_create.db"
	defer func() { _ = os.Remove(dbPath) }()

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rec := &CallRecord{
		System:      "NET1",
		Protocol:    "DMR",
		RadioID:     1234567,
		TalkgroupID: 91,
		Slot:        1,
		Duration:    5.5,
		StreamID:    999,
		PeerID:      3001,
	}

	repo := NewCallRecordRepository(db.GetDB())
	if err := repo.Create(rec); err != nil {
		t.Fatalf("Failed to create call record: %v", err)
	}

	if rec.ID == 0 {
		t.Error("Expected non-zero ID after creation")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set by hook")
	}
	if rec.StartTime.IsZero() {
		t.Error("Expected StartTime to be set by hook")
	}
	if rec.EndTime.IsZero() {
		t.Error("Expected EndTime to be set by hook")
	}
}

func TestCallRecordRepository_Create(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_repo_create.db"
	defer func() { _ = os.Remove(dbPath) }()

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewCallRecordRepository(db.GetDB())

	now := time.Now()
	rec := &CallRecord{
		System:      "NET1",
		Protocol:    "DMR",
		RadioID:     1234567,
		TalkgroupID: 91,
		Slot:        1,
		Duration:    5.5,
		StreamID:    12345,
		StartTime:   now,
		EndTime:     now.Add(5 * time.Second),
		PeerID:      3001,
	}

	if err := repo.Create(rec); err != nil {
		t.Fatalf("Failed to create call record: %v", err)
	}
	if rec.ID == 0 {
		t.Error("Expected non-zero ID after creation")
	}
}

func TestCallRecordRepository_GetRecent(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_get_recent.db"
	defer os.Remove(dbPath)

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewCallRecordRepository(db.GetDB())

	now := time.Now()
	for i := 0; i < 5; i++ {
		rec := &CallRecord{
			System:      "NET1",
			Protocol:    "DMR",
			RadioID:     uint32(1234560 + i),
			TalkgroupID: 91,
			Slot:        1,
			Duration:    float64(i),
			StreamID:    uint32(1000 + i),
			StartTime:   now.Add(time.Duration(i) * time.Minute),
			EndTime:     now.Add(time.Duration(i)*time.Minute + 5*time.Second),
			PeerID:      3001,
		}
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Failed to create call record %d: %v", i, err)
		}
	}

	records, err := repo.GetRecent(3)
	if err != nil {
		t.Fatalf("Failed to get recent call records: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 call records, got %d", len(records))
	}
	if len(records) >= 2 {
		if records[0].StartTime.Before(records[1].StartTime) {
			t.Error("Expected call records to be ordered by start_time DESC")
		}
	}
}

func TestCallRecordRepository_GetByRadioID(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_by_radio.db"
	defer os.Remove(dbPath)

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewCallRecordRepository(db.GetDB())
	now := time.Now()
	targetRadioID := uint32(1234567)

	for i := 0; i < 3; i++ {
		rec := &CallRecord{
			System:      "NET1",
			Protocol:    "DMR",
			RadioID:     targetRadioID,
			TalkgroupID: 91,
			Slot:        1,
			Duration:    float64(i),
			StreamID:    uint32(1000 + i),
			StartTime:   now.Add(time.Duration(i) * time.Minute),
			EndTime:     now.Add(time.Duration(i)*time.Minute + 5*time.Second),
			PeerID:      3001,
		}
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Failed to create call record %d: %v", i, err)
		}
	}

	otherRec := &CallRecord{
		System:      "NET1",
		Protocol:    "DMR",
		RadioID:     9999999,
		TalkgroupID: 91,
		Slot:        1,
		Duration:    1.0,
		StreamID:    9999,
		StartTime:   now,
		EndTime:     now.Add(5 * time.Second),
		PeerID:      3001,
	}
	if err := repo.Create(otherRec); err != nil {
		t.Fatalf("Failed to create other call record: %v", err)
	}

	records, err := repo.GetByRadioID(targetRadioID, 10)
	if err != nil {
		t.Fatalf("Failed to get call records by radio ID: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 call records for radio %d, got %d", targetRadioID, len(records))
	}
	for _, rec := range records {
		if rec.RadioID != targetRadioID {
			t.Errorf("Expected radio ID %d, got %d", targetRadioID, rec.RadioID)
		}
	}
}

func TestCallRecordRepository_DeleteOlderThan(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_delete_old.db"
	defer os.Remove(dbPath)

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewCallRecordRepository(db.GetDB())
	now := time.Now()

	oldRec := &CallRecord{
		System:      "NET1",
		Protocol:    "DMR",
		RadioID:     1234567,
		TalkgroupID: 91,
		Slot:        1,
		Duration:    1.0,
		StreamID:    1000,
		StartTime:   now.Add(-48 * time.Hour),
		EndTime:     now.Add(-48*time.Hour + 5*time.Second),
		PeerID:      3001,
	}
	if err := repo.Create(oldRec); err != nil {
		t.Fatalf("Failed to create old call record: %v", err)
	}

	recentRec := &CallRecord{
		System:      "NET1",
		Protocol:    "DMR",
		RadioID:     1234568,
		TalkgroupID: 91,
		Slot:        1,
		Duration:    1.0,
		StreamID:    1001,
		StartTime:   now.Add(-1 * time.Hour),
		EndTime:     now.Add(-1*time.Hour + 5*time.Second),
		PeerID:      3001,
	}
	if err := repo.Create(recentRec); err != nil {
		t.Fatalf("Failed to create recent call record: %v", err)
	}

	deleted, err := repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete old call records: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deletion, got %d", deleted)
	}

	records, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("Failed to get remaining call records: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 remaining call record, got %d", len(records))
	}
}
