// Package upload validates multipart file fields at the HTTP boundary:
// content type against an allow-list and size against a hard cap, before
// any byte reaches the object store.
package upload

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/saabal/saabal-api/internal/apperr"
)

// Size caps per file class.
const (
	MaxLogoBytes  = 5 << 20
	MaxImageBytes = 10 << 20
	MaxPDFBytes   = 50 << 20
)

// Content type allow-lists per file class.
var (
	LogoTypes  = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	ImageTypes = []string{"image/jpeg", "image/png", "image/webp"}
	PDFTypes   = []string{"application/pdf"}
)

// File is a validated multipart upload. Close must be called once the
// reader has been consumed.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      multipart.File
}

// Close releases the underlying multipart file.
func (f *File) Close() error { return f.Reader.Close() }

// FromRequest extracts and validates the multipart field. A missing
// field returns (nil, nil); the caller decides whether it was required.
func FromRequest(r *http.Request, field string, maxBytes int64, allowed []string) (*File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.InvalidRequest, "malformed multipart form", err)
	}

	if header.Size > maxBytes {
		file.Close()
		return nil, apperr.New(apperr.InvalidRequest, "file "+header.Filename+" is too large")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		// fall back to sniffing when the client omitted the part type
		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			file.Close()
			return nil, apperr.Wrap(apperr.InvalidRequest, "unreadable file "+header.Filename, err)
		}
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, apperr.Wrap(apperr.InvalidRequest, "unreadable file "+header.Filename, err)
		}
	}
	ok := false
	for _, t := range allowed {
		if contentType == t {
			ok = true
			break
		}
	}
	if !ok {
		file.Close()
		return nil, apperr.New(apperr.InvalidRequest, "unsupported file type "+contentType)
	}

	return &File{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}, nil
}
