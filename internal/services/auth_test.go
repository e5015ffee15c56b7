package services

import (
	"errors"
	"testing"
	"time"
)

type stubAuthStore struct {
	users map[string]*User
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{users: map[string]*User{}}
}

func (s *stubAuthStore) FindUserByEmail(email string) (*User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, nil
}

func (s *stubAuthStore) AddUser(u *User) error {
	s.users[u.Email] = u
	return nil
}

func stubSigner(uid, email, photo string, ttl time.Duration) (string, error) {
	return "tok:" + uid, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, stubSigner)
	svc.idGen = func(prefix string) string { return prefix + "123" }

	res, err := svc.Register("me@example.com", "Secret123!", "https://example.com/p.png")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.UserID != "u123" || res.Token != "tok:u123" {
		t.Fatalf("result = %+v", res)
	}
	if store.users["me@example.com"] == nil {
		t.Fatal("user not stored")
	}
	if string(store.users["me@example.com"].PassHash) == "Secret123!" {
		t.Fatal("password stored in the clear")
	}

	login, err := svc.Login("me@example.com", "Secret123!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.UserID != "u123" {
		t.Fatalf("login result = %+v", login)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, stubSigner)
	if _, err := svc.Register("me@example.com", "Secret123!", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register("me@example.com", "Other456!", "")
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, stubSigner)
	if _, err := svc.Register("me@example.com", "Secret123!", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, c := range []struct{ email, pass string }{
		{"me@example.com", "wrong"},
		{"nobody@example.com", "Secret123!"},
	} {
		_, err := svc.Login(c.email, c.pass)
		if kind, ok := KindOf(err); !ok || kind != KindUnauthorized {
			t.Fatalf("login(%s) err = %v, want unauthorized", c.email, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), stubSigner)
	for _, c := range []struct{ email, pass string }{
		{"", "Secret123!"},
		{"me@example.com", ""},
		{"  ", "  "},
	} {
		_, err := svc.Register(c.email, c.pass, "")
		if kind, ok := KindOf(err); !ok || kind != KindInvalid {
			t.Fatalf("register(%q,%q) err = %v, want invalid", c.email, c.pass, err)
		}
	}
}

func TestKindOfForeignError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatal("plain error reported a kind")
	}
}
