package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func identityServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var lastAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAction = r.URL.Path
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, `{"error":{"message":"INVALID_API_KEY"}}`, http.StatusBadRequest)
			return
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			if body["password"] == "wrong" {
				http.Error(w, `{"error":{"message":"INVALID_PASSWORD"}}`, http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"localId": "uid-1",
				"email":   body["email"],
				"idToken": "tok-1",
			})
		case "/accounts:signUp":
			json.NewEncoder(w).Encode(map[string]any{"localId": "uid-2", "idToken": "tok-2"})
		case "/accounts:sendOobCode":
			json.NewEncoder(w).Encode(map[string]any{"email": body["email"]})
		case "/accounts:lookup":
			if body["idToken"] != "tok-1" {
				http.Error(w, `{"error":{"message":"INVALID_ID_TOKEN"}}`, http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"users": []map[string]any{{"localId": "uid-1"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	return srv, &lastAction
}

func TestSignIn(t *testing.T) {
	srv, _ := identityServer(t)
	defer srv.Close()

	client := New(srv.URL, "test-key", nil)
	user, err := client.SignIn(context.Background(), "farmer@example.com", "hunter22")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if user.UID != "uid-1" || user.IDToken != "tok-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestSignInBadPassword(t *testing.T) {
	srv, _ := identityServer(t)
	defer srv.Close()

	_, err := New(srv.URL, "test-key", nil).SignIn(context.Background(), "farmer@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Code != "INVALID_PASSWORD" {
		t.Fatalf("code = %q", authErr.Code)
	}
}

func TestSignUpAndReset(t *testing.T) {
	srv, lastAction := identityServer(t)
	defer srv.Close()

	client := New(srv.URL, "test-key", nil)
	user, err := client.SignUp(context.Background(), "new@example.com", "hunter22")
	if err != nil || user.UID != "uid-2" {
		t.Fatalf("sign up: user=%+v err=%v", user, err)
	}

	if err := client.SendPasswordReset(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if *lastAction != "/accounts:sendOobCode" {
		t.Fatalf("lastAction = %q", *lastAction)
	}
}

func TestLookup(t *testing.T) {
	srv, _ := identityServer(t)
	defer srv.Close()

	client := New(srv.URL, "test-key", nil)
	uid, err := client.Lookup(context.Background(), "tok-1")
	if err != nil || uid != "uid-1" {
		t.Fatalf("lookup: uid=%q err=%v", uid, err)
	}

	if _, err := client.Lookup(context.Background(), "forged"); err == nil {
		t.Fatalf("expected lookup failure for bad token")
	}
}
