package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"gradtrack/internal/domain"
)

type fakeObjectStore struct {
	objects map[string][]byte
	base    string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		base:    "https://cdn.test",
	}
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Remove(_ context.Context, key string) error {
	if _, ok := f.objects[key]; !ok {
		return errors.New("object not found")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return f.base + "/" + key
}

func (f *fakeObjectStore) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, f.base+"/")
	return key, ok && key != ""
}

func TestAvatarUploadOverwritesAndPersistsURL(t *testing.T) {
	profiles := newFakeProfileRepo()
	_ = profiles.Create(context.Background(), domain.Profile{UserID: "u1", FirstName: "A", LastName: "B"})
	store := newFakeObjectStore()
	svc := NewAvatarService(zap.NewNop(), profiles, store)

	url, err := svc.Upload(context.Background(), "u1", "me.PNG", []byte("img1"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://cdn.test/avatars/u1.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if profiles.profiles["u1"].AvatarURL == nil || *profiles.profiles["u1"].AvatarURL != url {
		t.Fatalf("avatar url not persisted")
	}

	// second upload with the same extension replaces the object in place
	if _, err := svc.Upload(context.Background(), "u1", "new.png", []byte("img2"), "image/png"); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected single object after overwrite, have %d", len(store.objects))
	}
	if string(store.objects["avatars/u1.png"]) != "img2" {
		t.Fatalf("object not overwritten")
	}
}

func TestAvatarDeleteRemovesObjectAndClearsField(t *testing.T) {
	profiles := newFakeProfileRepo()
	_ = profiles.Create(context.Background(), domain.Profile{UserID: "u1"})
	store := newFakeObjectStore()
	svc := NewAvatarService(zap.NewNop(), profiles, store)

	if _, err := svc.Upload(context.Background(), "u1", "me.jpg", []byte("img"), "image/jpeg"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("object not removed")
	}
	if profiles.profiles["u1"].AvatarURL != nil {
		t.Fatalf("avatar url not cleared")
	}
}

func TestAvatarDeleteWithoutAvatar(t *testing.T) {
	profiles := newFakeProfileRepo()
	_ = profiles.Create(context.Background(), domain.Profile{UserID: "u1"})
	svc := NewAvatarService(zap.NewNop(), profiles, newFakeObjectStore())

	if err := svc.Delete(context.Background(), "u1"); !errors.Is(err, ErrNoAvatar) {
		t.Fatalf("expected ErrNoAvatar, got %v", err)
	}
}

func TestAvatarStorageUnavailable(t *testing.T) {
	svc := NewAvatarService(zap.NewNop(), newFakeProfileRepo(), nil)
	if _, err := svc.Upload(context.Background(), "u1", "me.png", []byte("img"), "image/png"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := svc.Delete(context.Background(), "u1"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
