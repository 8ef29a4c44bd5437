package domain

import (
	"fmt"

	"github.com/google/uuid"

	"classwork_service/internal/errdefs"
)

// DriveFile is an uploaded file reference.
type DriveFile struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Link is an external URL, optionally enriched with a resolved title and thumbnail.
type Link struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Attachment is a tagged union: exactly one of DriveFile or Link is set.
// The ID is assigned at creation time and stays stable for the lifetime of the
// attachment, so background work can find it after the list has been reordered.
type Attachment struct {
	ID        uuid.UUID  `json:"id"`
	DriveFile *DriveFile `json:"drive_file,omitempty"`
	Link      *Link      `json:"link,omitempty"`
}

func NewDriveFileAttachment(title, url string) Attachment {
	return Attachment{
		ID:        uuid.New(),
		DriveFile: &DriveFile{Title: title, URL: url},
	}
}

// NewLinkAttachment builds the placeholder shown before metadata resolution:
// the raw URL doubles as the title, no thumbnail.
func NewLinkAttachment(url string) Attachment {
	return Attachment{
		ID:   uuid.New(),
		Link: &Link{URL: url, Title: url},
	}
}

func (a Attachment) Validate() error {
	if a.DriveFile == nil && a.Link == nil {
		return fmt.Errorf("attachment has no variant: %w", errdefs.ErrValidation)
	}
	if a.DriveFile != nil && a.Link != nil {
		return fmt.Errorf("attachment has both variants: %w", errdefs.ErrValidation)
	}
	return nil
}

// Title returns the display title of whichever variant is populated.
func (a Attachment) Title() string {
	if a.DriveFile != nil {
		return a.DriveFile.Title
	}
	if a.Link != nil {
		return a.Link.Title
	}
	return ""
}
