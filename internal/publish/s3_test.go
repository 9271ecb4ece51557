package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	err    error
	bucket string
	key    string
	body   []byte
	ctype  string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.ctype = aws.ToString(in.ContentType)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestPublish(t *testing.T) {
	local := filepath.Join(t.TempDir(), "one-piece.pdf")
	require.NoError(t, os.WriteFile(local, []byte("%PDF-1.7"), 0644))

	client := &fakeS3{}
	pub := NewPublisher(client, "shelf", "manga/")

	location, err := pub.Publish(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "s3://shelf/manga/one-piece.pdf", location)
	assert.Equal(t, "shelf", client.bucket)
	assert.Equal(t, "manga/one-piece.pdf", client.key)
	assert.Equal(t, "application/pdf", client.ctype)
	assert.Equal(t, []byte("%PDF-1.7"), client.body)
}

func TestPublish_Errors(t *testing.T) {
	pub := NewPublisher(&fakeS3{}, "shelf", "")
	_, err := pub.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	local := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0644))
	denied := errors.New("access denied")
	_, err = NewPublisher(&fakeS3{err: denied}, "shelf", "").Publish(context.Background(), local)
	assert.ErrorIs(t, err, denied)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "a.pdf", NewPublisher(nil, "b", "").Key("/x/a.pdf"))
	assert.Equal(t, "p/a.pdf", NewPublisher(nil, "b", "p").Key("/x/a.pdf"))
}
