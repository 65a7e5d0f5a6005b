package service

import (
	"io"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
)

// In-memory repository fakes. They implement only what the services under
// test exercise and keep everything in plain maps and slices.

type fakeMemorialRepo struct {
	memorials map[string]*model.Memorial
	createErr error
}

func newFakeMemorialRepo() *fakeMemorialRepo {
	return &fakeMemorialRepo{memorials: make(map[string]*model.Memorial)}
}

func (r *fakeMemorialRepo) Create(memorial *model.Memorial) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.memorials[memorial.ID] = memorial
	return nil
}

func (r *fakeMemorialRepo) ByID(userID, memorialID string) (*model.Memorial, error) {
	m, ok := r.memorials[memorialID]
	if !ok || m.UserID != userID || m.Status == model.MemorialStatusDeleted {
		return nil, repository.ErrMemorialNotFound
	}
	return m, nil
}

func (r *fakeMemorialRepo) BySlug(slug string) (*model.Memorial, error) {
	for _, m := range r.memorials {
		if m.Slug == slug && m.Status != model.MemorialStatusDeleted {
			return m, nil
		}
	}
	return nil, repository.ErrMemorialNotFound
}

func (r *fakeMemorialRepo) Memorials(userID string) ([]*model.Memorial, error) {
	var out []*model.Memorial
	for _, m := range r.memorials {
		if m.UserID == userID && m.Status != model.MemorialStatusDeleted {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemorialRepo) CountActive(userID string) (int, error) {
	count := 0
	for _, m := range r.memorials {
		if m.UserID == userID && m.Status != model.MemorialStatusDeleted {
			count++
		}
	}
	return count, nil
}

func (r *fakeMemorialRepo) Update(memorial *model.Memorial) error {
	r.memorials[memorial.ID] = memorial
	return nil
}

func (r *fakeMemorialRepo) SoftDelete(userID, memorialID string) error {
	m, ok := r.memorials[memorialID]
	if !ok || m.UserID != userID {
		return repository.ErrMemorialNotFound
	}
	m.Status = model.MemorialStatusDeleted
	return nil
}

type fakeMediaRepo struct {
	items map[string]*model.MediaItem
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{items: make(map[string]*model.MediaItem)}
}

func (r *fakeMediaRepo) Create(item *model.MediaItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeMediaRepo) ByID(id string) (*model.MediaItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrMediaNotFound
	}
	return item, nil
}

func (r *fakeMediaRepo) ByMemorial(memorialID string) ([]*model.MediaItem, error) {
	var out []*model.MediaItem
	for _, item := range r.items {
		if item.MemorialID == memorialID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeMediaRepo) Stats(memorialID string) (*model.MediaStats, error) {
	stats := &model.MediaStats{}
	for _, item := range r.items {
		if item.MemorialID != memorialID {
			continue
		}
		stats.MediaCount++
		switch item.Kind {
		case model.MediaKindImage:
			stats.PhotoCount++
		case model.MediaKindVideo:
			stats.VideoCount++
		}
		stats.MediaSizeMB += float64(item.SizeBytes) / (1 << 20)
	}
	return stats, nil
}

func (r *fakeMediaRepo) Delete(id string) error {
	if _, ok := r.items[id]; !ok {
		return repository.ErrMediaNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeTimelineRepo struct {
	events map[string]*model.TimelineEvent
}

func newFakeTimelineRepo() *fakeTimelineRepo {
	return &fakeTimelineRepo{events: make(map[string]*model.TimelineEvent)}
}

func (r *fakeTimelineRepo) Create(event *model.TimelineEvent) error {
	r.events[event.ID] = event
	return nil
}

func (r *fakeTimelineRepo) ByID(id string) (*model.TimelineEvent, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repository.ErrTimelineEventNotFound
	}
	return event, nil
}

func (r *fakeTimelineRepo) Events(memorialID string) ([]*model.TimelineEvent, error) {
	var out []*model.TimelineEvent
	for _, event := range r.events {
		if event.MemorialID == memorialID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeTimelineRepo) CountByMemorial(memorialID string) (int, error) {
	count := 0
	for _, event := range r.events {
		if event.MemorialID == memorialID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTimelineRepo) Delete(id string) error {
	if _, ok := r.events[id]; !ok {
		return repository.ErrTimelineEventNotFound
	}
	delete(r.events, id)
	return nil
}

type fakeUsageRepo struct {
	rows map[string]*model.MemorialUsage // keyed by userID + "/" + memorialID
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{rows: make(map[string]*model.MemorialUsage)}
}

func (r *fakeUsageRepo) ByUser(userID string) ([]model.MemorialUsage, error) {
	var out []model.MemorialUsage
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeUsageRepo) ByMemorial(userID, memorialID string) (*model.MemorialUsage, error) {
	row, ok := r.rows[userID+"/"+memorialID]
	if !ok {
		return nil, repository.ErrUsageNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeUsageRepo) Upsert(row *model.MemorialUsage) error {
	copied := *row
	r.rows[row.UserID+"/"+row.MemorialID] = &copied
	return nil
}

type fakeSubscriptionRepo struct {
	subs map[string]*model.Subscription // keyed by userID
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (r *fakeSubscriptionRepo) Create(sub *model.Subscription) error {
	r.subs[sub.UserID] = sub
	return nil
}

func (r *fakeSubscriptionRepo) ByUserID(userID string) (*model.Subscription, error) {
	sub, ok := r.subs[userID]
	if !ok {
		return nil, repository.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (r *fakeSubscriptionRepo) Update(sub *model.Subscription) error {
	r.subs[sub.UserID] = sub
	return nil
}

// fakeStorage keeps stored objects in a map so media tests can assert on
// saves and deletes without an object store.
type fakeStorage struct {
	objects map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(path string, file io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.objects[path] = data
	return nil
}

func (s *fakeStorage) Delete(path string) error {
	delete(s.objects, path)
	return nil
}

func (s *fakeStorage) URL(path string) string {
	return "fake://" + path
}
