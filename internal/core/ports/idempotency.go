package ports

import "context"

// IdempotencyRecord is what an Idempotency-Key currently holds. An empty
// LoanID means the first request is still running.
type IdempotencyRecord struct {
	Fingerprint string
	LoanID      string
}

// IdempotencyStore binds a client-supplied key to one request and the loan
// it produced.
type IdempotencyStore interface {
	// Claim takes key for fingerprint. When the key is already held it
	// returns claimed=false with the existing record.
	Claim(ctx context.Context, key, fingerprint string) (rec IdempotencyRecord, claimed bool, err error)
	// Complete records the loan a claimed key produced.
	Complete(ctx context.Context, key string, rec IdempotencyRecord) error
	// Release drops a claim whose request failed so the client can retry.
	Release(ctx context.Context, key string) error
}
