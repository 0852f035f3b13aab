package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"mangareader/internal/domain/entity"
	"mangareader/pkg/errors"
)

type fakeAuth struct {
	mu        sync.Mutex
	passwords map[string]string // email -> password
	uids      map[string]string // email -> uid
	revoked   []string
	profiles  map[string]string // uid -> photo url
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		passwords: map[string]string{},
		uids:      map[string]string{},
		profiles:  map[string]string{},
	}
}

func (f *fakeAuth) CreateUser(_ context.Context, email, password, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uids[email]; ok {
		return "", errors.Conflict("email is already registered")
	}
	uid := "uid-" + email
	f.uids[email] = uid
	f.passwords[email] = password
	return uid, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.passwords[email] != password || password == "" {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}
	return &entity.Session{IDToken: "token-" + f.uids[email], UserID: f.uids[email], Email: email}, nil
}

func (f *fakeAuth) SendPasswordReset(context.Context, string) error { return nil }

func (f *fakeAuth) RevokeSessions(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, uid)
	return nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, uid, _, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if photoURL != "" {
		f.profiles[uid] = photoURL
	}
	return nil
}

func (f *fakeAuth) VerifyToken(context.Context, string) (string, error) { return "", nil }

type fakeSessions struct{ disconnected []string }

func (f *fakeSessions) DisconnectUser(uid string) int {
	f.disconnected = append(f.disconnected, uid)
	return 1
}

type fakeImages struct {
	uploaded []string
	deleted  []string
}

func (f *fakeImages) UploadImage(_ context.Context, r io.Reader, _, folder string) (string, error) {
	_, _ = io.ReadAll(r)
	url := fmt.Sprintf("https://storage.googleapis.com/bucket/public/%s/%d.png", folder, len(f.uploaded))
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImages) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

// memCache is a CatalogCache that remembers like Redis would.
type memCache struct {
	mu          sync.Mutex
	catalog     []*entity.Manga
	cached      bool
	invalidated int
	views       map[string]bool
}

func newMemCache() *memCache { return &memCache{views: map[string]bool{}} }

func (c *memCache) GetCatalog(context.Context) ([]*entity.Manga, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog, c.cached
}

func (c *memCache) SetCatalog(_ context.Context, items []*entity.Manga) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog, c.cached = items, true
}

func (c *memCache) InvalidateCatalog(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog, c.cached = nil, false
	c.invalidated++
}

func (c *memCache) FirstView(_ context.Context, mangaID, chapterKey, viewer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := mangaID + ":" + chapterKey + ":" + viewer
	if c.views[key] {
		return false
	}
	c.views[key] = true
	return true
}

type denyAll struct{}

func (denyAll) Allow(string, string) (bool, time.Duration) { return false, 3 * time.Second }
