package question

import (
	"context"

	"github.com/google/uuid"
)

// Bank is the read contract the attempt engine relies on. Reads are plain
// snapshot reads and never take row locks.
type Bank interface {
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]Question, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Question, error)
}
