package database

import (
	"time"

	"gorm.io/gorm"
)

// CallRecord is a completed call's persisted history, written once the
// Call Router observes its terminator (spec.md §4.5 step 8, the same
// data the CALL EVENT "END" line on the reporting channel carries).
type CallRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	System      string    `gorm:"index;size:64;not null" json:"system"`
	Protocol    string    `gorm:"size:8;not null" json:"protocol"` // "DMR" or "P25"
	RadioID     uint32    `gorm:"index;not null" json:"radio_id"`
	TalkgroupID uint32    `gorm:"index;not null" json:"talkgroup_id"`
	Slot        int       `gorm:"not null" json:"slot"`
	Duration    float64   `gorm:"not null" json:"duration"` // seconds
	StreamID    uint32    `gorm:"index" json:"stream_id"`
	StartTime   time.Time `gorm:"index;not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	PeerID      uint32    `gorm:"index" json:"peer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for CallRecord.
func (CallRecord) TableName() string {
	return "call_records"
}

// BeforeCreate fills in any unset timestamps.
func (c *CallRecord) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.StartTime.IsZero() {
		c.StartTime = time.Now()
	}
	if c.EndTime.IsZero() {
		c.EndTime = time.Now()
	}
	return nil
}
