package diagnosis

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"poster-backend/internal/llm"
	"poster-backend/internal/shared/storage/object"
)

const defaultMaxImageBytes = 20 << 20

// Fetcher resolves an image reference into bytes plus media type.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (llm.Image, error)
}

// ImageFetcher understands http(s)://, s3://bucket/key and file://path references.
// S3 and Local are optional; references to an unconfigured source fail.
type ImageFetcher struct {
	HTTP     *http.Client
	S3       object.Opener
	Local    object.Opener
	MaxBytes int64
}

// Fetch downloads the referenced image.
func (f *ImageFetcher) Fetch(ctx context.Context, ref string) (llm.Image, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return llm.Image{}, fmt.Errorf("parse reference: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, u.String())
	case "s3":
		if f.S3 == nil {
			return llm.Image{}, fmt.Errorf("s3: %w", ErrSourceNotAvailable)
		}
		return f.fetchObject(ctx, f.S3, u.Host+u.Path)
	case "file":
		if f.Local == nil {
			return llm.Image{}, fmt.Errorf("file: %w", ErrSourceNotAvailable)
		}
		return f.fetchObject(ctx, f.Local, u.Host+u.Path)
	default:
		return llm.Image{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (f *ImageFetcher) fetchHTTP(ctx context.Context, target string) (llm.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return llm.Image{}, err
	}
	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return llm.Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return llm.Image{}, fmt.Errorf("fetch image: http status %d", resp.StatusCode)
	}
	declared := resp.Header.Get("Content-Type")
	if !sniffable(mediaType(declared)) {
		return llm.Image{}, fmt.Errorf("%w: %s", ErrNotImage, mediaType(declared))
	}
	return f.readImage(resp.Body, declared)
}

func (f *ImageFetcher) fetchObject(ctx context.Context, src object.Opener, key string) (llm.Image, error) {
	obj, err := src.Open(ctx, key)
	if err != nil {
		return llm.Image{}, err
	}
	defer obj.Body.Close()
	return f.readImage(obj.Body, obj.ContentType)
}

func (f *ImageFetcher) readImage(r io.Reader, declared string) (llm.Image, error) {
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return llm.Image{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return llm.Image{}, ErrImageTooLarge
	}

	mimeType := mediaType(declared)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return llm.Image{}, fmt.Errorf("%w: %s", ErrNotImage, mimeType)
	}
	return llm.Image{Data: data, MIMEType: mimeType}, nil
}

// sniffable reports whether a declared type may still hold image bytes.
func sniffable(mt string) bool {
	switch {
	case mt == "", strings.HasPrefix(mt, "image/"):
		return true
	case mt == "application/octet-stream", mt == "binary/octet-stream":
		return true
	}
	return false
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
