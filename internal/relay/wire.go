package relay

import (
	"fmt"

	"github.com/Layr-Labs/stampmsg/internal/payload"
	"github.com/Layr-Labs/stampmsg/internal/wire"
)

// Message is one relayed message.
type Message struct {
	SenderPubKey      []byte
	SerializedPayload []byte

	// PayloadDigest is SHA256(SerializedPayload); it is also the stamp digest.
	PayloadDigest []byte
	// Signature is a compact signature by SenderPubKey over PayloadDigest.
	Signature []byte
}

type MessageSet struct {
	Messages []*Message
}

// TimedMessage is a message with the relay's receive timestamp.
type TimedMessage struct {
	Timestamp int64
	Message   *Message
}

type MessagePage struct {
	Messages []*TimedMessage
}

type PriceFilter struct {
	AcceptancePrice uint64
}

type Filters struct {
	PriceFilter *PriceFilter
}

// AddressMetadata is what the keyserver returns for an address.
type AddressMetadata struct {
	PubKey            []byte
	SerializedPayload []byte
}

// MetadataPayload is the profile published in AddressMetadata.
type MetadataPayload struct {
	Timestamp int64
	TTL       int64
	Entries   payload.Entries
}

const (
	fieldMessageSender    = 1
	fieldMessagePayload   = 2
	fieldMessageDigest    = 3
	fieldMessageSignature = 4

	fieldSetMessages = 1

	fieldTimedTimestamp = 1
	fieldTimedMessage   = 2

	fieldPageMessages = 1

	fieldPriceAcceptance = 1
	fieldFiltersPrice    = 1

	fieldMetadataPubKey  = 1
	fieldMetadataPayload = 2

	fieldMetaPayloadTimestamp = 1
	fieldMetaPayloadTTL       = 2
	fieldMetaPayloadEntries   = 3
)

func (m *Message) Marshal() []byte {
	var b []byte
	b = wire.AppendBytes(b, fieldMessageSender, m.SenderPubKey)
	b = wire.AppendBytes(b, fieldMessagePayload, m.SerializedPayload)
	b = wire.AppendBytes(b, fieldMessageDigest, m.PayloadDigest)
	return wire.AppendBytes(b, fieldMessageSignature, m.Signature)
}

func UnmarshalMessage(b []byte) (*Message, error) {
	m := &Message{}
	err := wire.Walk(b, func(f wire.Field) error {
		switch {
		case f.IsBytes(fieldMessageSender):
			m.SenderPubKey = clone(f.Bytes)
		case f.IsBytes(fieldMessagePayload):
			m.SerializedPayload = clone(f.Bytes)
		case f.IsBytes(fieldMessageDigest):
			m.PayloadDigest = clone(f.Bytes)
		case f.IsBytes(fieldMessageSignature):
			m.Signature = clone(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrMalformedMessage, err)
	}
	return m, nil
}

func (s *MessageSet) Marshal() []byte {
	var b []byte
	for _, m := range s.Messages {
		b = wire.AppendMessage(b, fieldSetMessages, m.Marshal())
	}
	return b
}

func UnmarshalMessageSet(b []byte) (*MessageSet, error) {
	s := &MessageSet{}
	err := wire.Walk(b, func(f wire.Field) error {
		if !f.IsBytes(fieldSetMessages) {
			return nil
		}
		m, err := UnmarshalMessage(f.Bytes)
		if err != nil {
			return err
		}
		s.Messages = append(s.Messages, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: message set: %v", ErrMalformedMessage, err)
	}
	return s, nil
}

func (p *MessagePage) Marshal() []byte {
	var b []byte
	for _, tm := range p.Messages {
		var tb []byte
		tb = wire.AppendVarint(tb, fieldTimedTimestamp, uint64(tm.Timestamp))
		if tm.Message != nil {
			tb = wire.AppendMessage(tb, fieldTimedMessage, tm.Message.Marshal())
		}
		b = wire.AppendMessage(b, fieldPageMessages, tb)
	}
	return b
}

func UnmarshalMessagePage(b []byte) (*MessagePage, error) {
	p := &MessagePage{}
	err := wire.Walk(b, func(f wire.Field) error {
		if !f.IsBytes(fieldPageMessages) {
			return nil
		}
		tm := &TimedMessage{}
		err := wire.Walk(f.Bytes, func(tf wire.Field) error {
			switch {
			case tf.IsVarint(fieldTimedTimestamp):
				tm.Timestamp = int64(tf.Varint)
			case tf.IsBytes(fieldTimedMessage):
				m, err := UnmarshalMessage(tf.Bytes)
				if err != nil {
					return err
				}
				tm.Message = m
			}
			return nil
		})
		if err != nil {
			return err
		}
		p.Messages = append(p.Messages, tm)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: message page: %v", ErrMalformedMessage, err)
	}
	return p, nil
}

func (f *Filters) Marshal() []byte {
	if f.PriceFilter == nil {
		return nil
	}
	pb := wire.AppendVarint(nil, fieldPriceAcceptance, f.PriceFilter.AcceptancePrice)
	return wire.AppendMessage(nil, fieldFiltersPrice, pb)
}

func UnmarshalFilters(b []byte) (*Filters, error) {
	out := &Filters{}
	err := wire.Walk(b, func(f wire.Field) error {
		if !f.IsBytes(fieldFiltersPrice) {
			return nil
		}
		pf := &PriceFilter{}
		if err := wire.Walk(f.Bytes, func(field wire.Field) error {
			if field.IsVarint(fieldPriceAcceptance) {
				pf.AcceptancePrice = field.Varint
			}
			return nil
		}); err != nil {
			return err
		}
		out.PriceFilter = pf
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: filters: %v", ErrMalformedMessage, err)
	}
	return out, nil
}

func (m *AddressMetadata) Marshal() []byte {
	var b []byte
	b = wire.AppendBytes(b, fieldMetadataPubKey, m.PubKey)
	return wire.AppendBytes(b, fieldMetadataPayload, m.SerializedPayload)
}

func UnmarshalAddressMetadata(b []byte) (*AddressMetadata, error) {
	m := &AddressMetadata{}
	err := wire.Walk(b, func(f wire.Field) error {
		switch {
		case f.IsBytes(fieldMetadataPubKey):
			m.PubKey = clone(f.Bytes)
		case f.IsBytes(fieldMetadataPayload):
			m.SerializedPayload = clone(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: address metadata: %v", ErrMalformedMessage, err)
	}
	return m, nil
}

func (p *MetadataPayload) Marshal() []byte {
	var b []byte
	b = wire.AppendVarint(b, fieldMetaPayloadTimestamp, uint64(p.Timestamp))
	b = wire.AppendVarint(b, fieldMetaPayloadTTL, uint64(p.TTL))
	for i := range p.Entries {
		b = wire.AppendMessage(b, fieldMetaPayloadEntries, payload.MarshalEntry(nil, &p.Entries[i]))
	}
	return b
}

func UnmarshalMetadataPayload(b []byte) (*MetadataPayload, error) {
	p := &MetadataPayload{}
	err := wire.Walk(b, func(f wire.Field) error {
		switch {
		case f.IsVarint(fieldMetaPayloadTimestamp):
			p.Timestamp = int64(f.Varint)
		case f.IsVarint(fieldMetaPayloadTTL):
			p.TTL = int64(f.Varint)
		case f.IsBytes(fieldMetaPayloadEntries):
			e, err := payload.UnmarshalEntry(f.Bytes)
			if err != nil {
				return err
			}
			p.Entries = append(p.Entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: metadata payload: %v", ErrMalformedMessage, err)
	}
	return p, nil
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
