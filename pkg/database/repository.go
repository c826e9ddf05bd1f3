package database

import (
	"time"

	"gorm.io/gorm"
)

// CallRecordRepository handles call-record database operations.
type CallRecordRepository struct {
	db *gorm.DB
}

// NewCallRecordRepository creates a new call record repository.
func NewCallRecordRepository(db *gorm.DB) *CallRecordRepository {
	return &CallRecordRepository{db: db}
}

// Create adds a new call record.
func (r *CallRecordRepository) Create(rec *CallRecord) error {
	return r.db.Create(rec).Error
}

// GetRecent retrieves the most recent N call records.
func (r *CallRecordRepository) GetRecent(limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Order("start_time DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetRecentPaginated retrieves call records with pagination.
func (r *CallRecordRepository) GetRecentPaginated(page, perPage int) ([]CallRecord, int64, error) {
	var records []CallRecord
	var total int64

	if err := r.db.Model(&CallRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	err := r.db.Order("start_time DESC").
		Offset(offset).
		Limit(perPage).
		Find(&records).Error

	return records, total, err
}

// GetByRadioID retrieves call records for a specific RID.
func (r *CallRecordRepository) GetByRadioID(radioID uint32, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("radio_id = ?", radioID).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetByTalkgroup retrieves call records for a specific TGID.
func (r *CallRecordRepository) GetByTalkgroup(tgID uint32, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("talkgroup_id = ?", tgID).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetBySystem retrieves call records for a specific system.
func (r *CallRecordRepository) GetBySystem(system string, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("system = ?", system).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetByTimeRange retrieves call records within a time range.
func (r *CallRecordRepository) GetByTimeRange(start, end time.Time, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("start_time BETWEEN ? AND ?", start, end).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// DeleteOlderThan deletes call records older than the specified time.
func (r *CallRecordRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("start_time < ?", before).Delete(&CallRecord{})
	return result.RowsAffected, result.Error
}

// GetActiveStreamIDs retrieves stream IDs active within the last N seconds.
func (r *CallRecordRepository) GetActiveStreamIDs(withinSeconds int) ([]uint32, error) {
	var streamIDs []uint32
	cutoff := time.Now().Add(-time.Duration(withinSeconds) * time.Second)

	err := r.db.Model(&CallRecord{}).
		Where("end_time > ?", cutoff).
		Distinct("stream_id").
		Pluck("stream_id", &streamIDs).Error

	return streamIDs, err
}
