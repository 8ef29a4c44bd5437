// Package reconcile keeps an ordered attachment list consistent while
// uploads and link-metadata lookups complete in the background. Background
// results are keyed by the attachment's stable ID, never by its position, so
// a completion always lands on "the attachment with this ID, wherever it now
// lives" and a removed attachment can never be resurrected by a late result.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
	"classwork_service/pkg/logger"
)

// BlobStore is the uploaded-file collaborator.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

// MetadataResolver fetches a title and optional thumbnail for a URL.
// Failures are treated as "no enrichment available", never as fatal.
type MetadataResolver interface {
	Resolve(ctx context.Context, url string) (LinkMetadata, error)
}

type LinkMetadata struct {
	Title        string
	ThumbnailURL string
}

// Session owns the attachment list of one editing session. All mutations go
// through the session mutex; background completions are applied onto this
// single owner's state, in completion order.
type Session struct {
	owner    string // blob path prefix derived from the owning entity
	maxItems int    // 0 means unlimited

	blob     BlobStore
	resolver MetadataResolver
	log      *logger.Logger

	mu      sync.Mutex
	items   []domain.Attachment
	pending map[uuid.UUID]context.CancelFunc

	wg sync.WaitGroup
}

func NewSession(owner string, initial []domain.Attachment, maxItems int, blob BlobStore, resolver MetadataResolver, log *logger.Logger) *Session {
	items := make([]domain.Attachment, len(initial))
	copy(items, initial)
	return &Session{
		owner:    owner,
		maxItems: maxItems,
		blob:     blob,
		resolver: resolver,
		log:      log,
		items:    items,
		pending:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// BlobPath derives the deterministic storage path for a file attachment of
// the owning entity.
func BlobPath(owner, title string) string {
	return owner + "/" + title
}

// AddLink appends a placeholder immediately and starts a resolution task for
// it. Each add-link gets its own task; independent links resolve
// concurrently.
func (s *Session) AddLink(ctx context.Context, url string) (domain.Attachment, error) {
	att := domain.NewLinkAttachment(url)

	s.mu.Lock()
	if s.full() {
		s.mu.Unlock()
		return domain.Attachment{}, errdefs.ErrTooManyAttachments
	}
	s.items = append(s.items, att)
	taskCtx, cancel := context.WithCancel(ctx)
	s.pending[att.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.resolveLink(taskCtx, att.ID, url)

	return att, nil
}

func (s *Session) resolveLink(ctx context.Context, id uuid.UUID, url string) {
	defer s.wg.Done()

	meta, err := s.resolver.Resolve(ctx, url)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A cancelled task's ID is gone from pending; the result is discarded
	// even if the resolver already produced one.
	if _, live := s.pending[id]; !live {
		return
	}
	delete(s.pending, id)

	if err != nil || ctx.Err() != nil {
		// Best-effort enrichment: keep the placeholder, tell nobody.
		s.log.Debug("link metadata resolution failed",
			zap.String("url", url), zap.Error(err))
		return
	}

	for i := range s.items {
		if s.items[i].ID == id && s.items[i].Link != nil {
			link := *s.items[i].Link
			if meta.Title != "" {
				link.Title = meta.Title
			}
			link.ThumbnailURL = meta.ThumbnailURL
			s.items[i].Link = &link
			return
		}
	}
}

// AddFile starts an upload and appends a drive-file attachment once the blob
// store returns a URL. The returned channel delivers the terminal result of
// the upload so the caller can surface a retryable failure.
func (s *Session) AddFile(ctx context.Context, name string, data []byte) (<-chan error, error) {
	s.mu.Lock()
	if s.full() {
		s.mu.Unlock()
		return nil, errdefs.ErrTooManyAttachments
	}
	s.mu.Unlock()

	done := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		url, err := s.blob.Upload(ctx, BlobPath(s.owner, name), data)
		if err != nil {
			s.log.Warn("file upload failed",
				zap.String("file", name), zap.Error(err))
			done <- fmt.Errorf("upload %s: %w", name, err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.full() {
			done <- errdefs.ErrTooManyAttachments
			return
		}
		s.items = append(s.items, domain.NewDriveFileAttachment(name, url))
		done <- nil
	}()
	return done, nil
}

// Remove deletes the attachment with the given ID. A pending resolution task
// for that ID is cancelled before the entry leaves the list; for drive files
// the blob delete is issued before local removal so storage is never
// orphaned. A failed blob delete keeps the entry and surfaces a retryable
// error.
func (s *Session) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return errdefs.ErrNotFound
	}

	// Cancel-then-remove: after this, a late completion finds the ID gone
	// from pending and discards its result.
	if cancel, ok := s.pending[id]; ok {
		cancel()
		delete(s.pending, id)
	}

	att := s.items[idx]
	s.mu.Unlock()

	if att.DriveFile != nil {
		if err := s.blob.Delete(ctx, BlobPath(s.owner, att.DriveFile.Title)); err != nil {
			return fmt.Errorf("delete blob for %s: %w", att.DriveFile.Title, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-locate by ID; the list may have shifted while the delete was in
	// flight.
	idx = s.indexOf(id)
	if idx < 0 {
		return nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return nil
}

// Attachments returns a copy of the current list in display order.
func (s *Session) Attachments() []domain.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// Wait blocks until every background task has settled. Used before
// persisting the final list and in tests.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) full() bool {
	return s.maxItems > 0 && len(s.items) >= s.maxItems
}

func (s *Session) indexOf(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
