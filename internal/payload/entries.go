package payload

import (
	"fmt"

	"github.com/Layr-Labs/stampmsg/internal/wire"
)

// Header is one key/value pair attached to an Entry.
type Header struct {
	Name  string
	Value []byte
}

// Entry is one typed unit of content.
type Entry struct {
	Kind    string
	Headers []Header
	Data    []byte
}

// Entries is an ordered list of entries; order is significant.
type Entries []Entry

// Header returns the value of the first header named name.
func (e *Entry) Header(name string) ([]byte, bool) {
	for _, h := range e.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return nil, false
}

// Find returns the first entry of the given kind.
func (es Entries) Find(kind string) (*Entry, bool) {
	for i := range es {
		if es[i].Kind == kind {
			return &es[i], true
		}
	}
	return nil, false
}

const (
	fieldHeaderName  = 1
	fieldHeaderValue = 2

	fieldEntryKind    = 1
	fieldEntryHeaders = 2
	fieldEntryData    = 3

	fieldEntriesList = 1
)

// MarshalEntry appends the wire form of e to b.
func MarshalEntry(b []byte, e *Entry) []byte {
	b = wire.AppendString(b, fieldEntryKind, e.Kind)
	for _, h := range e.Headers {
		var hb []byte
		hb = wire.AppendString(hb, fieldHeaderName, h.Name)
		hb = wire.AppendBytes(hb, fieldHeaderValue, h.Value)
		b = wire.AppendMessage(b, fieldEntryHeaders, hb)
	}
	return wire.AppendBytes(b, fieldEntryData, e.Data)
}

// UnmarshalEntry parses a single Entry message.
func UnmarshalEntry(b []byte) (Entry, error) {
	var e Entry
	err := wire.Walk(b, func(f wire.Field) error {
		switch {
		case f.IsBytes(fieldEntryKind):
			e.Kind = string(f.Bytes)
		case f.IsBytes(fieldEntryHeaders):
			h, err := unmarshalHeader(f.Bytes)
			if err != nil {
				return err
			}
			e.Headers = append(e.Headers, h)
		case f.IsBytes(fieldEntryData):
			e.Data = clone(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return Entry{}, fmt.Errorf("%w: entry: %v", ErrMalformedPayload, err)
	}
	return e, nil
}

func unmarshalHeader(b []byte) (Header, error) {
	var h Header
	err := wire.Walk(b, func(f wire.Field) error {
		switch {
		case f.IsBytes(fieldHeaderName):
			h.Name = string(f.Bytes)
		case f.IsBytes(fieldHeaderValue):
			h.Value = clone(f.Bytes)
		}
		return nil
	})
	return h, err
}

// MarshalEntries returns the wire form of an Entries list.
func MarshalEntries(es Entries) []byte {
	var b []byte
	for i := range es {
		b = wire.AppendMessage(b, fieldEntriesList, MarshalEntry(nil, &es[i]))
	}
	return b
}

// UnmarshalEntries parses an Entries list, preserving order.
func UnmarshalEntries(b []byte) (Entries, error) {
	var es Entries
	err := wire.Walk(b, func(f wire.Field) error {
		if !f.IsBytes(fieldEntriesList) {
			return nil
		}
		e, err := UnmarshalEntry(f.Bytes)
		if err != nil {
			return err
		}
		es = append(es, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: entries: %v", ErrMalformedPayload, err)
	}
	return es, nil
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
