package storage

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aws/smithy-go"
)

var errFakeACL = errors.New("acl refused")

// fakeNotFoundError satisfies smithy.APIError so common.IsNotFound treats
// it like a real S3 404.
type fakeNotFoundError struct{}

func (fakeNotFoundError) Error() string                 { return "NotFound: no such key" }
func (fakeNotFoundError) ErrorCode() string             { return "NotFound" }
func (fakeNotFoundError) ErrorMessage() string          { return "no such key" }
func (fakeNotFoundError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errFakeNotFound error = fakeNotFoundError{}

type fakeObject struct {
	payload     []byte
	contentType string
}

// fakeS3 is an in-memory s3Client for backend tests.
type fakeS3 struct {
	objects map[string]fakeObject
	aclSet  map[string]bool
	aclErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string]fakeObject),
		aclSet:  make(map[string]bool),
	}
}

// bucketKey namespaces an object key by its bucket, mirroring how the
// tests address f.objects directly.
func bucketKey(bucket, key string) string {
	if bucket == "" {
		return key
	}
	return bucket + "/" + key
}

func (f *fakeS3) Put(_ context.Context, bucket, key string, payload []byte, contentType string) error {
	f.objects[bucketKey(bucket, key)] = fakeObject{payload: payload, contentType: contentType}
	return nil
}

func (f *fakeS3) SetPublicRead(_ context.Context, bucket, key string) error {
	if f.aclErr != nil {
		return f.aclErr
	}
	f.aclSet[bucketKey(bucket, key)] = true
	return nil
}

func (f *fakeS3) Get(_ context.Context, bucket, key string) ([]byte, error) {
	obj, ok := f.objects[bucketKey(bucket, key)]
	if !ok {
		return nil, errFakeNotFound
	}
	return obj.payload, nil
}

func (f *fakeS3) Delete(_ context.Context, bucket, key string) error {
	delete(f.objects, bucketKey(bucket, key))
	return nil
}

func (f *fakeS3) List(_ context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, bucketKey(bucket, prefix)) {
			keys = append(keys, strings.TrimPrefix(key, bucketKey(bucket, "")))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeS3) keys() []string {
	keys, _ := f.List(context.Background(), "", "")
	return keys
}
