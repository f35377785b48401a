package html2pdf

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Stream is the content of a fetched resource.
//
// Close does not release anything: it rewinds to the first byte so the same
// stream can be read again within one render. The owning FetchResult frees
// the underlying resource with Release.
type Stream interface {
	io.Reader
	io.Seeker
	io.Closer
	Len() int64
}

// rewindStream implements Stream over any io.ReadSeeker.
type rewindStream struct {
	rs   io.ReadSeeker
	size int64
}

// Compile-time interface check.
var _ Stream = (*rewindStream)(nil)

func (s *rewindStream) Read(p []byte) (int, error) {
	return s.rs.Read(p)
}

func (s *rewindStream) Seek(offset int64, whence int) (int64, error) {
	return s.rs.Seek(offset, whence)
}

// Len returns the total size of the content in bytes.
func (s *rewindStream) Len() int64 {
	return s.size
}

// Close resets the read position to the start. Safe to call repeatedly.
func (s *rewindStream) Close() error {
	_, err := s.rs.Seek(0, io.SeekStart)
	return err
}

// FetchResult is what the fetcher hands to the rendering engine for one URL.
type FetchResult struct {
	MIMEType string
	Content  Stream
	Filename string

	releaseOnce sync.Once
	release     func() error
	releaseErr  error
}

// NewBytesResult wraps in-memory content in a FetchResult.
// Custom Loader implementations use it to build their results.
func NewBytesResult(mimeType, filename string, data []byte) *FetchResult {
	return &FetchResult{
		MIMEType: mimeType,
		Content:  &rewindStream{rs: bytes.NewReader(data), size: int64(len(data))},
		Filename: filename,
	}
}

// newFileResult wraps an open file. Release closes it.
func newFileResult(mimeType string, f *os.File, size int64) *FetchResult {
	return &FetchResult{
		MIMEType: mimeType,
		Content:  &rewindStream{rs: f, size: size},
		Filename: f.Name(),
		release:  f.Close,
	}
}

// ReadAll rewinds the content, reads it fully, and rewinds again.
func (r *FetchResult) ReadAll() ([]byte, error) {
	if err := r.Content.Close(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.Content)
	if err != nil {
		return nil, err
	}
	if err := r.Content.Close(); err != nil {
		return nil, err
	}
	return data, nil
}

// Release frees the resource behind Content. Only the first call has an effect.
func (r *FetchResult) Release() error {
	r.releaseOnce.Do(func() {
		if r.release != nil {
			r.releaseErr = r.release()
		}
	})
	return r.releaseErr
}
