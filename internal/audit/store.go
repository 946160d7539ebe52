package audit

import "context"

// Store is the sink an audit event ends up in. Implementations: in-memory
// (tests, single-process deployments) and Kafka (shared audit topic).
type Store interface {
	Append(ctx context.Context, event Event) error
}
