package database

import (
	"strconv"
	"strings"
	"time"

	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/reporting"
)

// RecordWriter subscribes to the reporting bus and persists a
// CallRecord for every completed call (spec.md §6 CALL EVENT "END"
// lines), the same event stream the TCP reporting server and MQTT
// bridge fan out to (SPEC_FULL.md §4.7, §4.12).
type RecordWriter struct {
	repo *CallRecordRepository
	log  *logger.Logger
}

// NewRecordWriter creates a call-record writer backed by db.
func NewRecordWriter(db *DB, log *logger.Logger) *RecordWriter {
	return &RecordWriter{repo: NewCallRecordRepository(db.GetDB()), log: log}
}

// Run subscribes to bus and blocks, writing a CallRecord for every
// "END" voice event, until the channel is closed (via bus.Unsubscribe
// from elsewhere) or done fires.
func (w *RecordWriter) Run(bus *reporting.Bus, done <-chan struct{}) {
	ch := bus.Subscribe(64)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			w.handle(e)
		case <-done:
			return
		}
	}
}

// handle parses one comma-separated event line (event.go's String
// format) and, if it is a completed voice call, writes a record.
func (w *RecordWriter) handle(e reporting.CallEvent) {
	rec, ok := parseCallEvent(e.Text)
	if !ok {
		return
	}
	if err := w.repo.Create(rec); err != nil && w.log != nil {
		w.log.Warn("failed to persist call record", logger.Error(err))
	}
}

func parseCallEvent(text string) (*CallRecord, bool) {
	parts := strings.Split(text, ",")
	if len(parts) < 10 {
		return nil, false
	}
	eventType, subtype, proto, system := parts[0], parts[1], parts[2], parts[3]
	if eventType != "GROUP VOICE" && eventType != "PRV VOICE" {
		return nil, false
	}
	if subtype != "END" {
		return nil, false
	}

	streamID, err := strconv.ParseUint(parts[4], 10, 32)
	if err != nil {
		return nil, false
	}
	peerID, err := strconv.ParseUint(parts[5], 10, 32)
	if err != nil {
		return nil, false
	}
	rfSrc, err := strconv.ParseUint(parts[6], 10, 32)
	if err != nil {
		return nil, false
	}
	slot, err := strconv.Atoi(parts[7])
	if err != nil {
		return nil, false
	}
	dstID, err := strconv.ParseUint(parts[8], 10, 32)
	if err != nil {
		return nil, false
	}
	duration, err := strconv.ParseFloat(parts[9], 64)
	if err != nil {
		return nil, false
	}

	now := time.Now()
	return &CallRecord{
		System:      system,
		Protocol:    proto,
		RadioID:     uint32(rfSrc),
		TalkgroupID: uint32(dstID),
		Slot:        slot,
		Duration:    duration,
		StreamID:    uint32(streamID),
		StartTime:   now.Add(-time.Duration(duration * float64(time.Second))),
		EndTime:     now,
		PeerID:      uint32(peerID),
	}, true
}
