package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Training sessions revisit the same small set of images many times, so the
// cache avoids decoding a file more than once. Cached images remain in memory
// until Evict or Clear is called.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP and TIFF. The image is cached under
// the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// LoadGrid decodes the image at path (through the cache) and binarizes it.
func (c *ImageCache) LoadGrid(path string, blurRadius float64) (*Grid, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img, blurRadius), nil
}

// GridInfo summarizes a binarized image.
type GridInfo struct {
	// Rows is the image height in pixels.
	Rows int `json:"rows"`

	// Cols is the image width in pixels.
	Cols int `json:"cols"`

	// Format is derived from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff" or "unknown".
	Format string `json:"format"`

	// InkPixels is the number of cells below the binarization threshold.
	InkPixels int `json:"ink_pixels"`

	// InkRatio is InkPixels divided by the total cell count.
	InkRatio float64 `json:"ink_ratio"`
}

// NewGridInfo summarizes g; path only supplies the format.
func NewGridInfo(g *Grid, path string) *GridInfo {
	info := &GridInfo{
		Rows:      g.Rows(),
		Cols:      g.Cols(),
		Format:    formatFromExt(path),
		InkPixels: g.InkCount(),
	}
	if total := g.Rows() * g.Cols(); total > 0 {
		info.InkRatio = float64(info.InkPixels) / float64(total)
	}
	return info
}

// Describe loads and binarizes the image at path and reports its shape and
// ink coverage.
func Describe(cache *ImageCache, path string, blurRadius float64) (*GridInfo, error) {
	g, err := cache.LoadGrid(path, blurRadius)
	if err != nil {
		return nil, err
	}
	return NewGridInfo(g, path), nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "unknown"
}

// SaveGrid writes the grid as a single-channel two-level image. The encoding
// is chosen from the file extension.
func SaveGrid(g *Grid, path string) error {
	if err := imaging.Save(g.ToImage(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
