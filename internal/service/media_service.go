package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"maps"
	"net/http"
	"path"
	"slices"
	"strings"

	"socialnova/internal/models"
	"socialnova/internal/observability"
	"socialnova/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// PostsBucket holds post media and thumbnails.
	PostsBucket = "posts"

	DefaultMaxUploadSizeMB = 50
	ThumbnailMaxEdge       = 640
	WebPQuality            = 70

	// MaxImagePixels bounds width*height before an image is decoded.
	MaxImagePixels = 40_000_000
)

var imageExtensions = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}

var videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".avi": true}

// MediaUpload describes stored post media.
type MediaUpload struct {
	MediaURL     string           `json:"media_url"`
	MediaType    models.MediaType `json:"media_type"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Path         string           `json:"path"`
	Size         int              `json:"size"`
}

// StoredObject is the result of a raw bucket upload.
type StoredObject struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

type MediaService struct {
	store    storage.Store
	maxBytes int64
	newName  func() string
}

func NewMediaService(store storage.Store, maxBytes int64) *MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadSizeMB * 1024 * 1024
	}
	return &MediaService{
		store:    store,
		maxBytes: maxBytes,
		newName:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// MaxBytes is the largest accepted upload.
func (s *MediaService) MaxBytes() int64 { return s.maxBytes }

// AcceptedExtensions lists the upload extensions, images first.
func AcceptedExtensions() []string {
	images := slices.Sorted(maps.Keys(imageExtensions))
	return append(images, slices.Sorted(maps.Keys(videoExtensions))...)
}

// MediaTypeForFilename classifies a file by extension.
func MediaTypeForFilename(filename string) (models.MediaType, string, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return models.MediaTypeImage, ext, nil
	case videoExtensions[ext]:
		return models.MediaTypeVideo, ext, nil
	default:
		return "", "", models.NewValidationError("Unsupported file type (allowed: jpeg, jpg, png, gif, mp4, mov, avi)")
	}
}

// UploadPostMedia stores one post file under <userID>/<random>.<ext> in the
// posts bucket. Images also get a WebP thumbnail.
func (s *MediaService) UploadPostMedia(ctx context.Context, userID uint, filename string, content []byte) (*MediaUpload, error) {
	span, ctx := observability.StartService(ctx, "MediaService", "UploadPostMedia")
	defer span.End()

	if userID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if err := s.checkSize(content); err != nil {
		return nil, err
	}
	kind, ext, err := MediaTypeForFilename(filename)
	if err != nil {
		return nil, err
	}

	detected := http.DetectContentType(content)
	if !sniffMatches(kind, detected) {
		return nil, models.NewValidationError(fmt.Sprintf("File content (%s) does not match a %s file", detected, kind))
	}

	name := s.newName()
	objectPath := fmt.Sprintf("%d/%s%s", userID, name, ext)
	out := &MediaUpload{MediaType: kind, Path: objectPath, Size: len(content)}

	var thumb []byte
	if kind == models.MediaTypeImage {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			return nil, models.NewValidationError("Invalid image file")
		}
		if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
			return nil, models.NewValidationError(fmt.Sprintf("Image dimensions %dx%d are too large", cfg.Width, cfg.Height))
		}
		decoded, _, err := image.Decode(bytes.NewReader(content))
		if err != nil {
			return nil, models.NewValidationError("Invalid image file")
		}
		thumb, err = encodeWebP(resizeToFit(decoded, ThumbnailMaxEdge, ThumbnailMaxEdge), WebPQuality)
		if err != nil {
			span.SetError(err)
			return nil, models.NewInternalError(err)
		}
	}

	if err := s.store.Upload(ctx, PostsBucket, objectPath, bytes.NewReader(content), detected); err != nil {
		span.SetError(err)
		return nil, err
	}
	out.MediaURL = s.store.PublicURL(PostsBucket, objectPath)

	if thumb != nil {
		thumbPath := fmt.Sprintf("%d/%s_thumb.webp", userID, name)
		if err := s.store.Upload(ctx, PostsBucket, thumbPath, bytes.NewReader(thumb), "image/webp"); err != nil {
			span.SetError(err)
			return nil, err
		}
		out.ThumbnailURL = s.store.PublicURL(PostsBucket, thumbPath)
	}

	observability.MediaUploadBytes.WithLabelValues(PostsBucket, string(kind)).Observe(float64(len(content)))
	return out, nil
}

// UploadObject stores content at <userID>/<objectPath> in bucket.
func (s *MediaService) UploadObject(ctx context.Context, userID uint, bucket, objectPath string, content []byte) (*StoredObject, error) {
	if userID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if err := storage.ValidateBucket(bucket); err != nil {
		return nil, err
	}
	cleaned, err := storage.CleanObjectPath(objectPath)
	if err != nil {
		return nil, err
	}
	if err := s.checkSize(content); err != nil {
		return nil, err
	}

	full := fmt.Sprintf("%d/%s", userID, cleaned)
	contentType := http.DetectContentType(content)
	if err := s.store.Upload(ctx, bucket, full, bytes.NewReader(content), contentType); err != nil {
		return nil, err
	}
	observability.MediaUploadBytes.WithLabelValues(bucket, "object").Observe(float64(len(content)))
	return &StoredObject{
		Bucket:      bucket,
		Path:        full,
		URL:         s.store.PublicURL(bucket, full),
		ContentType: contentType,
		Size:        len(content),
	}, nil
}

// PublicURL resolves an object's URL without checking it exists.
func (s *MediaService) PublicURL(bucket, objectPath string) string {
	return s.store.PublicURL(bucket, objectPath)
}

func (s *MediaService) checkSize(content []byte) error {
	if len(content) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}
	return nil
}

// sniffMatches checks detected content against the kind implied by the
// extension. QuickTime and some AVI files sniff as octet-stream.
func sniffMatches(kind models.MediaType, detected string) bool {
	detected = strings.ToLower(strings.TrimSpace(strings.SplitN(detected, ";", 2)[0]))
	switch kind {
	case models.MediaTypeImage:
		return strings.HasPrefix(detected, "image/")
	case models.MediaTypeVideo:
		return strings.HasPrefix(detected, "video/") || detected == "application/octet-stream"
	}
	return false
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
