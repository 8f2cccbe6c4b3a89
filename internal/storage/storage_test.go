/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestFSStorePutGet(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "sweeps/run-1/report.csv", []byte("teams,lanes\n12,3\n")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "sweeps/run-1/report.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "teams,lanes\n12,3\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if _, err := store.Get(ctx, "sweeps/missing.csv"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if err := store.Put(ctx, "../escape.csv", nil); err == nil {
		t.Fatal("expected error for key escaping the root")
	}
}

// fakeS3 is a minimal path-style S3 endpoint.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3StorePutGet(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	store, err := NewS3Store(ctx, S3Config{
		Bucket:          "reports",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Prefix:          "matchday",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Put(ctx, "run-1/report.json", []byte(`{"items":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := fake.objects["/reports/matchday/run-1/report.json"]; !ok {
		t.Fatalf("object not stored at expected path, have %v", keys(fake.objects))
	}
	got, err := store.Get(ctx, "run-1/report.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"items":1}` {
		t.Fatalf("unexpected content %q", got)
	}
	if _, err := store.Get(ctx, "run-2/report.json"); err == nil {
		t.Fatal("expected error for missing object")
	}
	if loc := store.Location("run-1/report.json"); loc != "s3://reports/matchday/run-1/report.json" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
