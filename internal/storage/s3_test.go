package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	lastKey string
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastKey = *in.Key
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + *in.Key + "?X-Amz-Signature=abc"}, nil
}

func TestS3StoreSavePresigned(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}}
	presigner := &fakePresigner{}
	store := newS3Store(client, presigner, S3Options{Bucket: "docs", Region: "us-east-1", Prefix: "uploads/", Presign: true})

	url, err := store.Save(context.Background(), "resume.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "pdf-bytes", client.objects["docs/uploads/resume.pdf"])
	assert.Equal(t, "uploads/resume.pdf", presigner.lastKey)
	assert.Contains(t, url, "X-Amz-Signature")

	rc, err := store.Open(context.Background(), "resume.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestS3StoreSavePlainURL(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}}
	store := newS3Store(client, &fakePresigner{}, S3Options{Bucket: "docs", Region: "eu-west-1", Endpoint: "http://minio:9000/", Prefix: "cv/"})

	url, err := store.Save(context.Background(), "cover.docx", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/docs/cv/cover.docx", url)

	aws := newS3Store(client, &fakePresigner{}, S3Options{Bucket: "docs", Region: "eu-west-1"})
	url, err = aws.Save(context.Background(), "cover.docx", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://docs.s3.eu-west-1.amazonaws.com/cover.docx", url)
}

func TestS3StoreErrors(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}, putErr: errors.New("boom")}
	store := newS3Store(client, &fakePresigner{}, S3Options{Bucket: "docs"})

	_, err := store.Save(context.Background(), "resume.pdf", strings.NewReader("x"))
	require.Error(t, err)

	_, err = store.Open(context.Background(), "absent.pdf")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestS3StoreDelete(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}}
	store := newS3Store(client, &fakePresigner{}, S3Options{Bucket: "docs", Prefix: "cv/"})
	ctx := context.Background()

	_, err := store.Save(ctx, "resume.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	require.Contains(t, client.objects, "docs/cv/resume.pdf")

	require.NoError(t, store.Delete(ctx, "resume.pdf"))
	assert.NotContains(t, client.objects, "docs/cv/resume.pdf")
	assert.NoError(t, store.Delete(ctx, "resume.pdf"))
}
