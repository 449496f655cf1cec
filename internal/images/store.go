// Package images stores profile pictures on the local disk.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // register gif
	_ "image/png" // register png

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	defaultMaxEdge   = 1024
	defaultMaxPixels = 40_000_000
	jpegQuality      = 80
)

var (
	// ErrUnsupported is returned for uploads that are not gif, jpeg or png images.
	ErrUnsupported = errors.New("unsupported image format")
	// ErrTooLarge is returned for images whose decoded size exceeds the pixel budget.
	ErrTooLarge = errors.New("image dimensions too large")
)

// Store writes images under dir and hands out paths relative to the public root.
type Store struct {
	dir       string
	prefix    string
	maxEdge   int
	maxPixels int
}

// NewStore builds a Store writing into dir. Returned paths use dir as prefix,
// so dir should live inside the statically served public directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Store{dir: dir, prefix: filepath.ToSlash(filepath.Clean(dir)), maxEdge: defaultMaxEdge, maxPixels: defaultMaxPixels}, nil
}

// Save decodes r, shrinks it to fit the maximum edge and writes it as JPEG.
// The header is checked against the pixel budget before any pixel is decoded.
func (s *Store) Save(r io.Reader) (string, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return "", ErrUnsupported
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(s.maxPixels) {
		return "", ErrTooLarge
	}

	src, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return "", ErrUnsupported
	}

	dst := s.fit(src)
	name := uuid.NewString() + ".jpg"
	file := filepath.Join(s.dir, name)
	out, err := os.Create(file)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	err = jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(file)
		return "", fmt.Errorf("encode image: %w", err)
	}
	return s.prefix + "/" + name, nil
}

// Delete removes an image previously returned by Save. Paths outside the store
// are ignored and a missing file is not an error.
func (s *Store) Delete(path string) error {
	name, ok := s.owned(path)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *Store) owned(path string) (string, bool) {
	rest, ok := strings.CutPrefix(filepath.ToSlash(path), s.prefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") || rest == ".." {
		return "", false
	}
	return rest, true
}

func (s *Store) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= s.maxEdge && h <= s.maxEdge {
		return src
	}
	if w >= h {
		h = h * s.maxEdge / w
		w = s.maxEdge
	} else {
		w = w * s.maxEdge / h
		h = s.maxEdge
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
