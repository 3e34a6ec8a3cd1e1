package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	client := s3.New(s3.Options{
		Region:                     "fsn1",
		BaseEndpoint:               aws.String(server.URL),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})

	return &Client{s3: client, region: "fsn1"}, server
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func s3Error(code, message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>%s</Code>
  <Message>%s</Message>
</Error>`, code, message)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), Options{
		Endpoint:     "http://localhost:9000",
		Region:       "us-east-1",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.region != "us-east-1" {
		t.Errorf("expected region us-east-1, got %s", client.region)
	}
}

func TestCreateBucket_AlreadyOwnedByYou(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 409, s3Error("BucketAlreadyOwnedByYou", "you already own it"))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	if err := client.CreateBucket(context.Background(), "states"); err != nil {
		t.Fatalf("expected nil error for already owned bucket, got: %v", err)
	}
}

func TestCreateBucket_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, s3Error("AccessDenied", "Access Denied"))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.CreateBucket(context.Background(), "states")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to create bucket states") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestEnsureBucket_CreatesMissing(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var methods []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()

		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(404)
		case http.MethodPut:
			xmlResponse(w, 200, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`)
		default:
			w.WriteHeader(400)
		}
	})

	client, server := testClient(t, handler)
	defer server.Close()

	if err := client.EnsureBucket(context.Background(), "states"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(methods, ",") != "HEAD,PUT" {
		t.Errorf("expected HEAD then PUT, got %v", methods)
	}
}

func TestEnsureBucket_Exists(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(200)
			return
		}
		t.Errorf("unexpected %s request", r.Method)
		w.WriteHeader(400)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	if err := client.EnsureBucket(context.Background(), "states"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBucketExists_OtherError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, s3Error("AccessDenied", "Access Denied"))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	_, err := client.BucketExists(context.Background(), "states")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to check bucket states") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestPutObject_Success(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var capturedPath string
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			mu.Lock()
			body, _ := io.ReadAll(r.Body)
			capturedBody = body
			capturedPath = r.URL.Path
			mu.Unlock()
			w.WriteHeader(200)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	data := []byte("stack: dev\n")
	if err := client.PutObject(context.Background(), "states", "cloud/folder/dev.yaml", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !bytes.Equal(capturedBody, data) {
		t.Errorf("expected body %q, got %q", data, capturedBody)
	}
	if capturedPath != "/states/cloud/folder/dev.yaml" {
		t.Errorf("unexpected path %s", capturedPath)
	}
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 400, s3Error("InvalidArgument", "bad request"))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.PutObject(context.Background(), "states", "k", []byte("data"))
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to put object k in bucket states") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestGetObject_Success(t *testing.T) {
	t.Parallel()

	expectedData := []byte("object content here")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(expectedData)))
			w.WriteHeader(200)
			_, _ = w.Write(expectedData)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	data, err := client.GetObject(context.Background(), "states", "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, expectedData) {
		t.Errorf("expected %q, got %q", expectedData, data)
	}
}

func TestGetObject_NoSuchKey(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 404, s3Error("NoSuchKey", "The specified key does not exist."))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	_, err := client.GetObject(context.Background(), "states", "missing-key")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestGetObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, s3Error("AccessDenied", "Access Denied"))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	_, err := client.GetObject(context.Background(), "states", "k")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if errors.Is(err, ErrObjectNotFound) {
		t.Fatal("access denied must not map to ErrObjectNotFound")
	}
	if !strings.Contains(err.Error(), "failed to get object k from bucket states") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestDeleteObject_Success(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(204)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	if err := client.DeleteObject(context.Background(), "states", "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, s3Error("AccessDenied", "Access Denied"))
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.DeleteObject(context.Background(), "states", "k")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to delete object k from bucket states") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestErrorClassifiers_Nil(t *testing.T) {
	t.Parallel()

	if isBucketAlreadyOwnedByYou(nil) || isNotFoundError(nil) || isNoSuchKey(nil) {
		t.Fatal("nil must not classify")
	}
}
