package cordial

import "github.com/google/uuid"

// Handle tracks a running coordinator. The listener keeps it for the
// coordinator's lifetime: ClusterID identifies the catalog this
// coordinator serves, and Wait joins the coordinator goroutine once the
// serving side has shut it down.
type Handle struct {
	clusterID uuid.UUID
	join      func()
}

// NewHandle is called by whatever spawns the coordinator goroutine; join
// must block until that goroutine exits.
func NewHandle(clusterID uuid.UUID, join func()) *Handle {
	return &Handle{clusterID: clusterID, join: join}
}

// ClusterID identifies the catalog state this coordinator serves.
func (h *Handle) ClusterID() uuid.UUID {
	return h.clusterID
}

// Wait blocks until the coordinator goroutine exits.
func (h *Handle) Wait() {
	if h.join != nil {
		h.join()
	}
}
