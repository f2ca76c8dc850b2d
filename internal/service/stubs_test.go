package service_test

import (
	"context"
	"sync"

	"nuance/backend/internal/model"
)

// settingsRepoStub is a map-backed settings repository.
type settingsRepoStub struct {
	mu   sync.Mutex
	data map[string]string
}

func newSettingsRepoStub() *settingsRepoStub {
	return &settingsRepoStub{data: map[string]string{}}
}

func (s *settingsRepoStub) Get(ctx context.Context, key string) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return &model.Setting{Key: key, Value: value}, nil
}

func (s *settingsRepoStub) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *settingsRepoStub) GetByPrefix(ctx context.Context, prefix string) ([]model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Setting
	for k, v := range s.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, model.Setting{Key: k, Value: v})
		}
	}
	return out, nil
}

func (s *settingsRepoStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *settingsRepoStub) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// translationRepoStub records persisted translations in memory.
type translationRepoStub struct {
	mu        sync.Mutex
	upserts   []model.TranslationRecord
	inserts   []model.TranslationRecord
	records   []model.TranslationRecord
	upsertErr error
	insertErr error
	listErr   error
	deleted   int64
	deleteErr error
	nextID    int64
}

func (s *translationRepoStub) Upsert(ctx context.Context, rec model.TranslationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	s.nextID++
	rec.ID = s.nextID
	s.upserts = append(s.upserts, rec)
	return rec.ID, nil
}

func (s *translationRepoStub) Insert(ctx context.Context, rec model.TranslationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	rec.ID = s.nextID
	s.inserts = append(s.inserts, rec)
	return rec.ID, nil
}

func (s *translationRepoStub) GetByID(ctx context.Context, ownerID string, id int64) (*model.TranslationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id && rec.OwnerID == ownerID {
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *translationRepoStub) ListByOwner(ctx context.Context, ownerID string) ([]model.TranslationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.TranslationRecord
	for _, rec := range s.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *translationRepoStub) DeleteByID(ctx context.Context, ownerID string, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.deleted, nil
}

func (s *translationRepoStub) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts) + len(s.inserts)
}

func (s *translationRepoStub) lastSaved() model.TranslationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inserts) > 0 {
		return s.inserts[len(s.inserts)-1]
	}
	return s.upserts[len(s.upserts)-1]
}

// providerCall is one recorded provider invocation.
type providerCall struct {
	SystemPrompt string
	Content      string
}

// fakeProvider records calls and answers from a configurable function.
type fakeProvider struct {
	mu         sync.Mutex
	calls      []providerCall
	completeFn func(ctx context.Context, systemPrompt, content string) (string, error)
	streamFn   func(ctx context.Context, systemPrompt, content string) (<-chan string, <-chan error)
	testErr    error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Test(ctx context.Context) (string, error) {
	if p.testErr != nil {
		return "", p.testErr
	}
	return "ok", nil
}

func (p *fakeProvider) Complete(ctx context.Context, systemPrompt, content string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, providerCall{SystemPrompt: systemPrompt, Content: content})
	p.mu.Unlock()
	if p.completeFn != nil {
		return p.completeFn(ctx, systemPrompt, content)
	}
	return "output", nil
}

func (p *fakeProvider) CompleteStream(ctx context.Context, systemPrompt, content string) (<-chan string, <-chan error) {
	p.mu.Lock()
	p.calls = append(p.calls, providerCall{SystemPrompt: systemPrompt, Content: content})
	p.mu.Unlock()
	if p.streamFn != nil {
		return p.streamFn(ctx, systemPrompt, content)
	}
	textCh := make(chan string)
	errCh := make(chan error, 1)
	close(textCh)
	return textCh, errCh
}

func (p *fakeProvider) recordedCalls() []providerCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]providerCall, len(p.calls))
	copy(out, p.calls)
	return out
}
