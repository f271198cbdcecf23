package storage

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	locatorScheme  = "s3"
	generatedDir   = "generated"
	imageExtension = ".png"
)

var ErrInvalidLocator = errors.New("invalid locator")

// Locator addresses one object, rendered as s3://bucket/key.
type Locator struct {
	Bucket string
	Key    string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s://%s/%s", locatorScheme, l.Bucket, l.Key)
}

// FileName is the trailing path segment of the key.
func (l Locator) FileName() string {
	return path.Base(l.Key)
}

func ParseLocator(raw string) (Locator, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %s", ErrInvalidLocator, err)
	}
	if u.Scheme != locatorScheme || u.Host == "" {
		return Locator{}, fmt.Errorf("%w: %q", ErrInvalidLocator, raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return Locator{}, fmt.Errorf("%w: %q has no object key", ErrInvalidLocator, raw)
	}
	return Locator{Bucket: u.Host, Key: key}, nil
}

// ParseLocatorInBucket parses raw and rejects any locator outside bucket.
func ParseLocatorInBucket(raw, bucket string) (Locator, error) {
	l, err := ParseLocator(raw)
	if err != nil {
		return Locator{}, err
	}
	if bucket == "" || l.Bucket != bucket {
		return Locator{}, fmt.Errorf("%w: bucket %q is not %q", ErrInvalidLocator, l.Bucket, bucket)
	}
	return l, nil
}

// NewImageKey builds generated/{epoch-millis}-{random-base36}.png.
func NewImageKey(now time.Time, r *rand.Rand) string {
	suffix := strconv.FormatUint(r.Uint64(), 36)
	return fmt.Sprintf("%s/%d-%s%s", generatedDir, now.UnixMilli(), suffix, imageExtension)
}
