// Package domain contains the core business entities for Lightbox.
package domain

import (
	"strings"
	"time"
)

// Photo represents an uploaded image and its metadata.
// The binary content lives in the storage backend under Filename; the
// database only carries the reference.
type Photo struct {
	// ID is the unique identifier for the photo (auto-generated).
	ID int64 `json:"id"`

	// OwnerID is the ID of the user who uploaded the photo.
	// Immutable after creation.
	OwnerID int64 `json:"owner_id"`

	// Filename is the storage name assigned at upload time.
	// It is unique across the storage backend.
	Filename string `json:"filename"`

	// URL is the public address the binary content can be fetched from.
	// Stable for the lifetime of the photo.
	URL string `json:"url"`

	// Tags is the ordered list of tags supplied at upload, possibly empty.
	Tags []string `json:"tags"`

	// Likes holds the IDs of users who currently like the photo.
	// A user appears at most once.
	Likes []int64 `json:"likes"`

	// CreatedAt is the timestamp when the photo was uploaded.
	CreatedAt time.Time `json:"created_at"`
}

// NewPhoto creates a new Photo with an empty likes set.
func NewPhoto(ownerID int64, filename, url string, tags []string) *Photo {
	if tags == nil {
		tags = []string{}
	}
	return &Photo{
		OwnerID:   ownerID,
		Filename:  filename,
		URL:       url,
		Tags:      tags,
		Likes:     []int64{},
		CreatedAt: time.Now().UTC(),
	}
}

// IsOwnedBy reports whether the photo belongs to the given user.
func (p *Photo) IsOwnedBy(userID int64) bool {
	return p.OwnerID == userID
}

// LikedBy reports whether the given user currently likes the photo.
func (p *Photo) LikedBy(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ParseTags splits a comma-separated tag string into an ordered list of
// trimmed tags. Empty input and empty items produce no tags.
func ParseTags(csv string) []string {
	tags := []string{}
	for _, t := range strings.Split(csv, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
