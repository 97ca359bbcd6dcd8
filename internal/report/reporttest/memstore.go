// Package reporttest provides an in-memory report.Store for tests.
package reporttest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"delivery-report-service/internal/report"
)

type MemStore struct {
	mu        sync.Mutex
	merchants map[int64]report.Merchant
	records   []report.Record

	// Err, when set, is returned by every record query.
	Err error

	FindCalls     int
	CountCalls    int
	MerchantCalls int
	Queries       []report.RecordQuery
}

func NewMemStore() *MemStore {
	return &MemStore{merchants: make(map[int64]report.Merchant)}
}

func (s *MemStore) AddMerchant(m report.Merchant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchants[m.ID] = m
}

func (s *MemStore) AddRecords(records ...report.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if m, ok := s.merchants[r.MerchantID]; ok && r.MerchantName == "" {
			r.MerchantName = m.Name
		}
		s.records = append(s.records, r)
	}
}

func (s *MemStore) FindRecords(ctx context.Context, q report.RecordQuery) ([]report.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindCalls++
	s.Queries = append(s.Queries, q)
	if s.Err != nil {
		return nil, s.Err
	}

	matched := s.match(q)
	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			return []report.Record{}, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Take > 0 && len(matched) > q.Take {
		matched = matched[:q.Take]
	}
	return matched, nil
}

func (s *MemStore) CountRecords(ctx context.Context, q report.RecordQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CountCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.match(q))), nil
}

func (s *MemStore) FindMerchant(ctx context.Context, id int64) (*report.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MerchantCalls++
	m, ok := s.merchants[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// RecordCalls is the number of record queries issued so far.
func (s *MemStore) RecordCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FindCalls + s.CountCalls
}

func (s *MemStore) match(q report.RecordQuery) []report.Record {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]report.Record, 0)
	for _, r := range s.records {
		if q.MerchantID != nil && r.MerchantID != *q.MerchantID {
			continue
		}
		if q.CourierID != nil && (r.CourierID == nil || *r.CourierID != *q.CourierID) {
			continue
		}
		if q.CreatedAt != nil && !q.CreatedAt.Contains(r.CreatedAt) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesSearch(r report.Record, term string) bool {
	for _, field := range []string{r.TrackingNumber, r.CustomerName, r.CustomerPhone, r.CustomerAddress} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
