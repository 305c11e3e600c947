// Package neutralfit holds the input plumbing shared by the neutral community
// model tools: opening local or gs:// tables, undoing compression, and guessing
// the delimiter. The estimation itself lives in the subpackages.
package neutralfit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// GSReadSeekCloser decorates a Google Storage object handle with io.Reader,
// io.Seeker and io.Closer. Seeking reopens a range reader at the requested
// offset; only io.SeekStart and io.SeekCurrent are supported.
type GSReadSeekCloser struct {
	*storage.ObjectHandle
	Context context.Context
	r       *storage.Reader
	offset  int64
}

func (s *GSReadSeekCloser) Read(buf []byte) (int, error) {
	if s.r == nil {
		r, err := s.NewRangeReader(s.Context, s.offset, -1)
		if err != nil {
			return 0, err
		}
		s.r = r
	}

	n, err := s.r.Read(buf)
	s.offset += int64(n)

	return n, err
}

func (s *GSReadSeekCloser) Seek(offset int64, whence int) (int64, error) {
	var next int64

	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = s.offset + offset
	default:
		return 0, fmt.Errorf("io.Seeker 'whence' value %d is not implemented", whence)
	}

	if next < 0 {
		return 0, fmt.Errorf("cannot seek to negative offset %d", next)
	}

	if s.r != nil {
		s.r.Close()
		s.r = nil
	}
	s.offset = next

	return s.offset, nil
}

func (s *GSReadSeekCloser) Close() error {
	if s.r == nil {
		return nil
	}
	err := s.r.Close()
	s.r = nil
	return err
}

// SplitGSPath splits gs://bucket/path/to/object into its bucket and object
// names.
func SplitGSPath(path string) (bucket, object string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into bucket and object, but got %d parts: %v", len(parts), parts)
	}

	return parts[0], parts[1], nil
}

// MaybeOpenSeekerFromGoogleStorage opens path from Google Storage if it starts
// with gs:// and a client is provided; otherwise it opens a local file. The
// home directory shorthand ~/ is expanded for local paths.
func MaybeOpenSeekerFromGoogleStorage(path string, client *storage.Client) (ReadSeekCloser, error) {
	if client != nil && strings.HasPrefix(path, "gs://") {
		bucketName, objectName, err := SplitGSPath(path)
		if err != nil {
			return nil, pfx.Err(err)
		}

		handle := client.Bucket(bucketName).Object(objectName)

		// Fail early on a missing object rather than at first read
		if _, err := handle.Attrs(context.Background()); err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}

		return &GSReadSeekCloser{
			ObjectHandle: handle,
			Context:      context.Background(),
		}, nil
	}

	localPath, err := ExpandHome(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}
