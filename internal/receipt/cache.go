package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmynk/splitroom/internal/models"
)

const defaultCacheSize = 256

// CachedScanner memoizes successful scans by image content, so a user
// retrying the same photo does not pay for a second model call.
type CachedScanner struct {
	next  Scanner
	cache *lru.Cache[string, models.ReceiptDraft]
}

func NewCachedScanner(next Scanner, size int) (*CachedScanner, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, models.ReceiptDraft](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan cache: %w", err)
	}
	return &CachedScanner{next: next, cache: c}, nil
}

func (c *CachedScanner) Scan(ctx context.Context, image []byte, mimeType string) (*models.ReceiptDraft, error) {
	key := cacheKey(image, mimeType)
	if draft, ok := c.cache.Get(key); ok {
		return cloneDraft(draft), nil
	}

	draft, err := c.next.Scan(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, *cloneDraft(*draft))
	return draft, nil
}

// Len returns the number of cached drafts.
func (c *CachedScanner) Len() int {
	return c.cache.Len()
}

func cacheKey(image []byte, mimeType string) string {
	sum := sha256.Sum256(image)
	return mimeType + ":" + hex.EncodeToString(sum[:])
}

// cloneDraft copies the slices so callers cannot mutate cached entries.
func cloneDraft(d models.ReceiptDraft) *models.ReceiptDraft {
	out := d
	out.Items = append([]models.ReceiptLine(nil), d.Items...)
	out.TaxProfiles = append([]models.ReceiptTaxProfile(nil), d.TaxProfiles...)
	out.Rejected = append([]string(nil), d.Rejected...)
	return &out
}
