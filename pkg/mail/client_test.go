package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientSendRequest(t *testing.T) {
	const expectedURL = "http://mail.test/emails"
	respBody := `{"id":"msg_123"}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["subject"] != "Your invitation" {
			t.Fatalf("unexpected subject %q", payload["subject"])
		}
		if payload["from"] != "no-reply@mail.test" {
			t.Fatalf("unexpected from %q", payload["from"])
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("test-key",
		WithBaseURL("http://mail.test"),
		WithHTTPClient(httpClient),
		WithDefaultFrom("no-reply@mail.test"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	id, err := client.Send(context.Background(), Message{
		To:      []string{"invitee@example.com"},
		Subject: "Your invitation",
		HTML:    "<p>Join the workspace</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "msg_123" {
		t.Fatalf("unexpected id %q", id)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("Authorization") != "Bearer test-key" {
		t.Fatalf("authorization header missing")
	}
}

func TestClientSendRejectsMissingRecipient(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Send(context.Background(), Message{Subject: "hi"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestClientSendSurfacesProviderError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnprocessableEntity,
			Body:       io.NopCloser(strings.NewReader(`{"message":"invalid recipient"}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}), WithDefaultFrom("no-reply@mail.test"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Send(context.Background(), Message{To: []string{"x"}, Subject: "hi"}); err == nil {
		t.Fatal("expected provider error")
	}
}
