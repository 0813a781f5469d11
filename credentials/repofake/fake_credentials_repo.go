package credentialsrepofake

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/studygroup-client/credentials"
)

var _ credentials.Repo = (*FakeCredentialsRepo)(nil)

type FakeCredentialsRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeCredentialsRepo() *FakeCredentialsRepo {
	return &FakeCredentialsRepo{
		values: make(map[string]string),
	}
}

func (r *FakeCredentialsRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeCredentialsRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.values[key] = value
	return nil
}

func (r *FakeCredentialsRepo) Remove(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Keys lists the stored keys in sorted order. Tests use it to assert on absence.
func (r *FakeCredentialsRepo) Keys() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
