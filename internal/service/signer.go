package service

import (
	"context"
	"time"

	"farmledger/internal/config"
	"farmledger/internal/fault"
	"farmledger/internal/metrics"
	"farmledger/internal/storage"
)

// Issuer turns stored attachment references into short-lived read URLs.
// URLs are regenerated on every read and never persisted.
type Issuer struct {
	store  storage.Storage
	bucket string
	ttl    time.Duration
	skew   time.Duration
	met    *metrics.Metrics
}

func NewIssuer(store storage.Storage, bucket string, cfg config.AttachmentConfig, met *metrics.Metrics) *Issuer {
	return &Issuer{
		store:  store,
		bucket: bucket,
		ttl:    cfg.URLTTL,
		skew:   cfg.ClockSkew,
		met:    met,
	}
}

// Resolve canonicalizes ref and signs a read URL for it. The skew allowance
// is added to the expiry rather than backdating validity, because v4 signed
// URLs are valid from the moment of issuance; the widened window tolerates
// consumer clocks that run behind.
func (i *Issuer) Resolve(ctx context.Context, ref string) (string, error) {
	key, err := storage.CanonicalKey(i.bucket, ref)
	if err != nil {
		return "", fault.Attachment(ref, "canonicalize reference", err)
	}
	u, err := i.store.PresignGet(ctx, key, i.ttl+i.skew)
	i.met.AttachmentOp("sign", err)
	if err != nil {
		return "", fault.Attachment(key, "sign attachment url", err)
	}
	return u, nil
}
