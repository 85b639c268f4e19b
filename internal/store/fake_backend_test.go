package store

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/models"
	"fintrack/internal/remote"
)

// fakeBackend is an in-memory remote with the same idempotency rules as the
// real one: duplicate inserts are ignored and deleting a missing row succeeds.
type fakeBackend struct {
	mu           sync.Mutex
	err          error
	failing      map[string]error
	calls        []string
	transactions map[string]models.Transaction
	categories   map[string]models.Category
	profiles     map[string]models.Profile
	objects      map[string][]byte
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{
		transactions: make(map[string]models.Transaction),
		categories:   make(map[string]models.Category),
		profiles:     make(map[string]models.Profile),
		objects:      make(map[string][]byte),
		failing:      make(map[string]error),
	}
	for _, c := range models.DefaultCategories() {
		f.categories[c.ID] = c
	}
	return f
}

// failWith makes every following call return err until it is reset with nil.
func (f *fakeBackend) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// failOn makes calls to one method return err.
func (f *fakeBackend) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[method] = err
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if err, ok := f.failing[strings.Fields(call)[0]]; ok {
		return err
	}
	return f.err
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) transaction(id string) (models.Transaction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[id]
	return tx, ok
}

func (f *fakeBackend) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	if err := f.record("ListTransactions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, tx := range f.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeBackend) InsertTransaction(_ context.Context, tx models.Transaction) error {
	if err := f.record("InsertTransaction " + tx.ID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.transactions[tx.ID]; !ok {
		f.transactions[tx.ID] = tx
	}
	return nil
}

func (f *fakeBackend) UpdateTransaction(_ context.Context, tx models.Transaction) error {
	if err := f.record("UpdateTransaction " + tx.ID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.transactions[tx.ID]; ok {
		f.transactions[tx.ID] = tx
	}
	return nil
}

func (f *fakeBackend) DeleteTransaction(_ context.Context, id string) error {
	if err := f.record("DeleteTransaction " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.transactions, id)
	return nil
}

func (f *fakeBackend) ListCategories(_ context.Context, userID string) ([]models.Category, error) {
	if err := f.record("ListCategories"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, c := range f.categories {
		if c.IsDefault || c.OwnedBy(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBackend) InsertCategory(_ context.Context, c models.Category) error {
	if err := f.record("InsertCategory " + c.ID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		f.categories[c.ID] = c
	}
	return nil
}

func (f *fakeBackend) DeleteCategory(_ context.Context, id string) error {
	if err := f.record("DeleteCategory " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.categories, id)
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	if err := f.record("GetProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return &p, nil
}

func (f *fakeBackend) UpsertProfile(_ context.Context, p models.Profile) error {
	if err := f.record("UpsertProfile"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeBackend) UploadObject(_ context.Context, bucket, path, _ string, body io.Reader) error {
	if err := f.record("UploadObject"); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+path] = data
	return nil
}

func (f *fakeBackend) PublicURL(bucket, path string) string {
	return "https://fintrack.test/storage/v1/object/public/" + bucket + "/" + path
}

var _ remote.Backend = (*fakeBackend)(nil)
