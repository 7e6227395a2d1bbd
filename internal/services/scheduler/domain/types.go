package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainState is the subset of a domain row the scorer reads
type DomainState struct {
	ID        int64
	Status    string
	Expire    *time.Time
	ReadedAt  *time.Time
	UpdatedAt *time.Time
}

// Update is a computed score ready to flush
type Update struct {
	ID          int64
	Priority    int
	NextCheckAt time.Time
}

// PageFilter selects one keyset page of domains
type PageFilter struct {
	AfterID          int64
	Limit            int
	All              bool
	NonAvailableOnly bool
	Now              time.Time
}

// Params drive one recompute run
type Params struct {
	// All rescored every domain instead of only the due ones
	All bool
	// Chunk is the page size of reads
	Chunk int
	// Sleep pauses the run after every SleepEvery chunks
	Sleep      time.Duration
	SleepEvery int
	// Bulk is the number of updates flushed per statement
	Bulk             int
	NonAvailableOnly bool
	DryRun           bool
}

// Result summarizes a run
type Result struct {
	Read    int
	Updated int
	Chunks  int
	Bands   map[string]int
}

// HandoutPool is how many top domains Next picks from, as the poller always did
const HandoutPool = 100

// HandoutDelay is how long a handed out domain stays out of the ranking
const HandoutDelay = 3 * 24 * time.Hour

// Candidate is a domain handed to the external poller
type Candidate struct {
	ID          int64      `json:"-"`
	UID         uuid.UUID  `json:"uid"`
	Name        string     `json:"name" example:"ejemplo.com.ar"`
	Status      string     `json:"status" example:"no disponible"`
	Priority    int        `json:"priority"`
	Expire      *time.Time `json:"expire,omitempty"`
	ReadedAt    *time.Time `json:"data_readed_at,omitempty"`
	UpdatedAt   *time.Time `json:"data_updated_at,omitempty"`
	NextCheckAt *time.Time `json:"next_priority_at,omitempty"`
}
