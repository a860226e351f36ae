package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHangupPostsCompletedStatus(t *testing.T) {
	var gotPath, gotStatus string
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotStatus = r.PostFormValue("Status")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("AC123", "secret", WithBaseURL(server.URL))
	if err := client.Hangup(context.Background(), "CA456"); err != nil {
		t.Fatalf("failed to hang up: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC123/Calls/CA456.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotStatus != "completed" {
		t.Fatalf("expected Status=completed, got %q", gotStatus)
	}
	if gotUser != "AC123" || gotPass != "secret" {
		t.Fatalf("unexpected basic auth %q:%q", gotUser, gotPass)
	}
}

func TestHangupReportsProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("AC123", "secret", WithBaseURL(server.URL))
	if err := client.Hangup(context.Background(), "CA456"); err == nil {
		t.Fatalf("expected hangup to fail on 404")
	}
}
