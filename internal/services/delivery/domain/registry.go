package domain

import (
	"slices"
	"sync"

	perr "djnic/internal/platform/errors"
)

// Registry maps channel types to senders
type Registry struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

// NewRegistry returns a registry holding senders
func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: map[string]Sender{}}
	for _, s := range senders {
		r.Register(s)
	}
	return r
}

// Register adds s, replacing any sender of the same type
func (r *Registry) Register(s Sender) {
	t := s.ChannelType()
	if t == "" {
		panic("delivery: sender without a channel type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[t] = s
}

// Get returns the sender for channelType
func (r *Registry) Get(channelType string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[channelType]
	return s, ok
}

// Types returns the registered channel types sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.senders))
	for t := range r.senders {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Select returns every sender, or only the one named by channel when it is set
func (r *Registry) Select(channel string) ([]Sender, error) {
	if channel != "" {
		s, ok := r.Get(channel)
		if !ok {
			return nil, perr.WithField(perr.InvalidArgf("unknown channel %q", channel), "channel")
		}
		return []Sender{s}, nil
	}
	types := r.Types()
	out := make([]Sender, 0, len(types))
	for _, t := range types {
		s, _ := r.Get(t)
		out = append(out, s)
	}
	return out, nil
}
