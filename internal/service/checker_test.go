package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dushixiang/swallow/internal/models"
)

func TestCheckerUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := NewChecker().Check(context.Background(), server.URL)
	if result.Status != models.StatusUp {
		t.Fatalf("状态 = %s, 期望 up", result.Status)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("状态码 = %d, 期望 200", result.StatusCode)
	}
}

func TestChecker4xxIsUp(t *testing.T) {
	// 4xx 说明服务端仍在响应，视为可用
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := NewChecker().Check(context.Background(), server.URL)
	if result.Status != models.StatusUp {
		t.Fatalf("状态 = %s, 期望 up", result.Status)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("状态码 = %d, 期望 404", result.StatusCode)
	}
}

func TestChecker5xxIsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := NewChecker().Check(context.Background(), server.URL)
	if result.Status != models.StatusDown {
		t.Fatalf("状态 = %s, 期望 down", result.Status)
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("状态码 = %d, 期望 500", result.StatusCode)
	}
}

func TestCheckerTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	checker := NewChecker()
	checker.timeout = 50 * time.Millisecond

	result := checker.Check(context.Background(), server.URL)
	if result.Status != models.StatusTimeout {
		t.Fatalf("状态 = %s, 期望 timeout", result.Status)
	}
	if result.StatusCode != 0 {
		t.Errorf("超时的状态码 = %d, 期望 0", result.StatusCode)
	}
}

func TestCheckerConnectionRefused(t *testing.T) {
	// 先起再关，拿到一个必然拒连的地址
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := NewChecker().Check(context.Background(), url)
	if result.Status != models.StatusError {
		t.Fatalf("状态 = %s, 期望 error", result.Status)
	}
	if result.StatusCode != 0 {
		t.Errorf("拒连的状态码 = %d, 期望 0", result.StatusCode)
	}
}
