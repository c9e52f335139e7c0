package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var (
	errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}
	errHeadMiss  = &apiError{code: "NotFound", msg: "not found"}
)

// fakeS3 is a thread-safe in-memory S3 backend with error injection.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte

	getErr    error
	putErr    error
	deleteErr error
	headErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, errHeadMiss
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3PutAndGet(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "takes", "")
	ctx := context.Background()

	const data = "audio segment"
	if err := WriteAll(ctx, store, "obj.wav", []byte(data)); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll(ctx, store, "obj.wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != data {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestS3GetNotExist(t *testing.T) {
	store := NewS3(newFakeS3(), "takes", "")

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestS3GetOtherError(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("network timeout")
	store := NewS3(fake, "takes", "pfx")

	_, err := store.Get(context.Background(), "x")
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Fatalf("generic failure misreported: %v", err)
	}
}

func TestS3Exists(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "takes", "")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}

	fake.mu.Lock()
	fake.objects["present"] = []byte("data")
	fake.mu.Unlock()

	ok, err = store.Exists(ctx, "present")
	if err != nil || !ok {
		t.Fatalf("Exists(present) = %v, %v", ok, err)
	}
}

func TestS3ExistsOtherError(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("network failure")
	store := NewS3(fake, "takes", "")

	if _, err := store.Exists(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestS3DeleteIdempotent(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "takes", "")
	ctx := context.Background()

	if err := store.Delete(ctx, "ghost"); err != nil {
		t.Fatal(err)
	}

	fake.mu.Lock()
	fake.objects["tmp"] = []byte("x")
	fake.mu.Unlock()

	if err := store.Delete(ctx, "tmp"); err != nil {
		t.Fatal(err)
	}
	ok, err := store.Exists(ctx, "tmp")
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

func TestS3PutUploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("upload failed")
	store := NewS3(fake, "takes", "")

	w, err := store.Put(context.Background(), "obj")
	if err != nil {
		t.Fatal(err)
	}
	// The pipe may reject the write if the upload already failed;
	// either way Close must surface the error.
	io.WriteString(w, "data")
	if err := w.Close(); err == nil || err.Error() != "upload failed" {
		t.Fatalf("Close = %v, want upload error", err)
	}
}

func TestS3KeyPrefix(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "takes", "archive/v1")
	ctx := context.Background()

	if err := WriteAll(ctx, store, "audio.bin", []byte("content")); err != nil {
		t.Fatal(err)
	}

	fake.mu.Lock()
	_, ok := fake.objects["archive/v1/audio.bin"]
	fake.mu.Unlock()
	if !ok {
		t.Fatal("object not stored under archive/v1/audio.bin")
	}

	if got := store.objectKey("a/b"); got != "archive/v1/a/b" {
		t.Fatalf("objectKey = %q", got)
	}
	if got := NewS3(fake, "takes", "").objectKey("a/b"); got != "a/b" {
		t.Fatalf("objectKey without prefix = %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"NoSuchKey", errNoSuchKey, true},
		{"NotFound", errHeadMiss, true},
		{"other api error", &apiError{code: "AccessDenied", msg: "denied"}, false},
		{"plain error", errors.New("timeout"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Fatalf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
