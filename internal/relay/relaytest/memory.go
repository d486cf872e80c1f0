// Package relaytest provides an in-memory relay and keyserver for tests.
package relaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Layr-Labs/stampmsg/internal/relay"
)

// Memory implements relay.Relay and relay.Keyserver. Timestamps come from a
// counter, so each pushed message gets a distinct, increasing timestamp.
type Memory struct {
	mu       sync.Mutex
	clock    int64
	inboxes  map[string][]*relay.TimedMessage
	filters  map[string]*relay.Filters
	metadata map[string]*relay.AddressMetadata

	// FetchErr, when set, is returned by Fetch.
	FetchErr error
}

var (
	_ relay.Relay     = (*Memory)(nil)
	_ relay.Keyserver = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		clock:    1000,
		inboxes:  make(map[string][]*relay.TimedMessage),
		filters:  make(map[string]*relay.Filters),
		metadata: make(map[string]*relay.AddressMetadata),
	}
}

func (m *Memory) Push(_ context.Context, destAddress string, set *relay.MessageSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range set.Messages {
		m.clock++
		m.inboxes[destAddress] = append(m.inboxes[destAddress], &relay.TimedMessage{Timestamp: m.clock, Message: msg})
	}
	return nil
}

func (m *Memory) Fetch(_ context.Context, myAddress, _ string, since int64, filter *relay.FetchFilter) (*relay.MessagePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	page := &relay.MessagePage{}
	for _, tm := range m.inboxes[myAddress] {
		if tm.Timestamp < since {
			continue
		}
		if filter != nil && filter.Until > 0 && tm.Timestamp >= filter.Until {
			continue
		}
		page.Messages = append(page.Messages, tm)
	}
	return page, nil
}

func (m *Memory) GetFilter(_ context.Context, address string) (*relay.Filters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.filters[address]
	if !ok {
		return nil, &relay.StatusError{Method: "GET", URL: "/filters/" + address, Code: 404, Body: "not found"}
	}
	return f, nil
}

func (m *Memory) Sample(_ context.Context, address string) (*relay.AddressMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.metadata[address]
	if !ok {
		return nil, fmt.Errorf("no metadata for %s", address)
	}
	return md, nil
}

func (m *Memory) SetFilter(address string, price uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[address] = &relay.Filters{PriceFilter: &relay.PriceFilter{AcceptancePrice: price}}
}

func (m *Memory) SetMetadata(address string, md *relay.AddressMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[address] = md
}
