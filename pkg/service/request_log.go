package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/vartrans/pkg/translate"
)

// RequestStatus is the state of a gateway request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestCompleted RequestStatus = "completed"
	RequestFailed    RequestStatus = "failed"
)

// RequestRecord is what the gateway remembers about one request.
type RequestRecord struct {
	ID          string        `json:"id"`
	Text        string        `json:"text"`
	Engine      string        `json:"engine"`
	TargetLang  string        `json:"target_lang,omitempty"`
	Status      RequestStatus `json:"status"`
	Result      string        `json:"result,omitempty"`
	Cached      bool          `json:"cached"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// RequestLog keeps recent gateway requests for inspection over HTTP.
type RequestLog struct {
	mu      sync.RWMutex
	records map[string]*RequestRecord
	logger  *logrus.Logger
}

// NewRequestLog creates an empty log.
func NewRequestLog(logger *logrus.Logger) *RequestLog {
	if logger == nil {
		logger = logrus.New()
	}
	return &RequestLog{
		records: make(map[string]*RequestRecord),
		logger:  logger,
	}
}

// Start records a new pending request and returns its id.
func (l *RequestLog) Start(text, engine string) string {
	id := uuid.New().String()

	l.mu.Lock()
	l.records[id] = &RequestRecord{
		ID:        id,
		Text:      text,
		Engine:    engine,
		Status:    RequestPending,
		CreatedAt: time.Now(),
	}
	l.mu.Unlock()
	return id
}

// Complete marks id as translated.
func (l *RequestLog) Complete(id string, res translate.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[id]
	if !ok {
		return
	}
	now := time.Now()
	r.Status = RequestCompleted
	r.Result = res.Text
	r.Engine = string(res.Engine)
	r.TargetLang = string(res.Target)
	r.Cached = res.Cached
	r.CompletedAt = &now
}

// Fail marks id as failed.
func (l *RequestLog) Fail(id string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[id]
	if !ok {
		return
	}
	now := time.Now()
	r.Status = RequestFailed
	r.Error = err.Error()
	r.CompletedAt = &now
}

// Get returns a copy of the record for id.
func (l *RequestLog) Get(id string) (RequestRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, ok := l.records[id]
	if !ok {
		return RequestRecord{}, fmt.Errorf("request not found: %s", id)
	}
	return *r, nil
}

// Len returns the number of remembered requests.
func (l *RequestLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Prune drops finished requests that completed more than maxAge ago and
// returns how many were removed.
func (l *RequestLog) Prune(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, r := range l.records {
		if r.Status == RequestPending || r.CompletedAt == nil {
			continue
		}
		if now.Sub(*r.CompletedAt) > maxAge {
			delete(l.records, id)
			removed++
		}
	}

	if removed > 0 {
		l.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": len(l.records),
		}).Info("Pruned old gateway requests")
	}
	return removed
}
