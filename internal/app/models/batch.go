package models

// BatchFailure records one record that could not be processed
type BatchFailure struct {
	ID    int64  `json:"id" example:"42"`
	Error string `json:"error" example:"duplicate key value violates unique constraint"`
}

// BatchResult collects per-record outcomes of a bulk write. Processing continues past failures.
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// NewBatchResult returns an empty result with non-nil slices
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Succeeded: []int64{},
		Failed:    []BatchFailure{},
	}
}

// RecordSuccess appends a succeeded record id
func (b *BatchResult) RecordSuccess(id int64) {
	b.Succeeded = append(b.Succeeded, id)
}

// RecordFailure appends a failed record id with its error text
func (b *BatchResult) RecordFailure(id int64, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	b.Failed = append(b.Failed, BatchFailure{ID: id, Error: msg})
}

// SuccessCount returns the number of succeeded records
func (b *BatchResult) SuccessCount() int { return len(b.Succeeded) }

// FailureCount returns the number of failed records
func (b *BatchResult) FailureCount() int { return len(b.Failed) }

// FailedIDs returns the ids of failed records in recorded order
func (b *BatchResult) FailedIDs() []int64 {
	ids := make([]int64, 0, len(b.Failed))
	for _, f := range b.Failed {
		ids = append(ids, f.ID)
	}
	return ids
}

// Merge folds a retry outcome into b: retried ids leave Failed, and are appended to
// Succeeded or re-recorded as failed according to retry.
func (b *BatchResult) Merge(retry *BatchResult) {
	if retry == nil {
		return
	}
	retried := make(map[int64]struct{}, len(retry.Succeeded)+len(retry.Failed))
	for _, id := range retry.Succeeded {
		retried[id] = struct{}{}
	}
	for _, f := range retry.Failed {
		retried[f.ID] = struct{}{}
	}

	kept := b.Failed[:0:0]
	for _, f := range b.Failed {
		if _, ok := retried[f.ID]; !ok {
			kept = append(kept, f)
		}
	}
	b.Failed = append(kept, retry.Failed...)
	b.Succeeded = append(b.Succeeded, retry.Succeeded...)
}
