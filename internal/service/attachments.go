package service

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farmledger/internal/fault"
	"farmledger/internal/metrics"
	"farmledger/internal/model"
	"farmledger/internal/storage"
)

// File is one incoming attachment to upload.
type File struct {
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
}

// Reconciler keeps a record's attachment references and the object store in
// sync across create, update and delete. All references it returns are
// canonical object keys.
type Reconciler struct {
	store  storage.Storage
	bucket string
	met    *metrics.Metrics
	log    *zap.Logger
	now    func() time.Time
}

func NewReconciler(store storage.Storage, bucket string, met *metrics.Metrics, log *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		bucket: bucket,
		met:    met,
		log:    log.Named("attachments"),
		now:    time.Now,
	}
}

// OnCreate uploads the given files under folder and returns their canonical
// references in input order. Zero-length files are skipped. On the first
// failed upload it stops and returns the references uploaded so far together
// with the error, so the caller can decide whether to keep or discard them.
func (r *Reconciler) OnCreate(ctx context.Context, folder string, files []File) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, f := range files {
		if f.Size == 0 {
			continue
		}
		key := path.Join(folder, uuid.NewString()+"-"+path.Base(f.Name))
		_, err := r.store.Put(ctx, key, f.Content, storage.PutObjectOptions{
			Size:        f.Size,
			ContentType: f.ContentType,
		})
		r.met.AttachmentOp("upload", err)
		if err != nil {
			return refs, fault.Attachment(key, "upload attachment", err)
		}
		refs = append(refs, key)
	}
	return refs, nil
}

// OnUpdate reconciles a record's attachment set against the caller's intent:
// existing references absent from keep are deleted, toAdd is uploaded under a
// date-stamped subfolder, and the resulting reference list is returned with
// kept references first, in keep order, followed by new uploads in input
// order.
//
// A failed delete aborts the update before anything is uploaded. A failed
// upload compensates by removing the files uploaded in this call, so the
// returned list always reflects what the object store actually holds.
func (r *Reconciler) OnUpdate(ctx context.Context, existing, keep []string, toAdd []File, folder string) ([]string, error) {
	keepKeys, err := r.canonicalize(keep)
	if err != nil {
		return nil, err
	}
	existingKeys, err := r.canonicalize(existing)
	if err != nil {
		return nil, err
	}

	kept := make(map[string]struct{}, len(keepKeys))
	for _, key := range keepKeys {
		kept[key] = struct{}{}
	}
	for _, key := range existingKeys {
		if _, ok := kept[key]; ok {
			continue
		}
		if err := r.remove(ctx, key); err != nil {
			return nil, err
		}
	}

	dated := path.Join(folder, r.now().UTC().Format(model.DateLayout))
	uploaded, err := r.OnCreate(ctx, dated, toAdd)
	if err != nil {
		for _, key := range uploaded {
			if derr := r.remove(ctx, key); derr != nil {
				r.log.Warn("orphaned attachment left after failed update",
					zap.String("key", key), zap.Error(derr))
			}
		}
		return nil, err
	}
	return append(keepKeys, uploaded...), nil
}

// OnDelete removes every referenced object. It stops at the first failure so
// the caller can refuse to drop the owning record while objects remain.
func (r *Reconciler) OnDelete(ctx context.Context, refs []string) error {
	keys, err := r.canonicalize(refs)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := r.remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) remove(ctx context.Context, key string) error {
	err := r.store.Delete(ctx, key)
	r.met.AttachmentOp("delete", err)
	if err != nil {
		return fault.Attachment(key, "delete attachment", err)
	}
	return nil
}

func (r *Reconciler) canonicalize(refs []string) ([]string, error) {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		key, err := storage.CanonicalKey(r.bucket, ref)
		if err != nil {
			return nil, fault.Attachment(ref, "canonicalize reference", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
