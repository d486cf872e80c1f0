package relay

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Layr-Labs/stampmsg/internal/payload"
)

func TestMessagePageWire(t *testing.T) {
	page := &MessagePage{Messages: []*TimedMessage{
		{Timestamp: 1700000000, Message: &Message{SenderPubKey: []byte{2, 1}, SerializedPayload: []byte("p1")}},
		{Timestamp: 1700000001, Message: &Message{SenderPubKey: []byte{3, 1}, SerializedPayload: []byte("p2"), Signature: []byte("s")}},
	}}

	got, err := UnmarshalMessagePage(page.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalMessagePage: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	for i, tm := range got.Messages {
		want := page.Messages[i]
		if tm.Timestamp != want.Timestamp ||
			!bytes.Equal(tm.Message.SenderPubKey, want.Message.SenderPubKey) ||
			!bytes.Equal(tm.Message.SerializedPayload, want.Message.SerializedPayload) ||
			!bytes.Equal(tm.Message.Signature, want.Message.Signature) {
			t.Fatalf("message %d mismatch: %+v", i, tm.Message)
		}
	}
}

func TestFiltersAndMetadataWire(t *testing.T) {
	f, err := UnmarshalFilters((&Filters{PriceFilter: &PriceFilter{AcceptancePrice: 5000}}).Marshal())
	if err != nil {
		t.Fatalf("UnmarshalFilters: %v", err)
	}
	if f.PriceFilter == nil || f.PriceFilter.AcceptancePrice != 5000 {
		t.Fatalf("unexpected filters %+v", f)
	}

	mp := &MetadataPayload{
		Timestamp: 42,
		TTL:       3600,
		Entries:   payload.Entries{payload.TextEntry("a"), payload.AvatarEntry("image/png", []byte("b"))},
	}
	md := &AddressMetadata{PubKey: []byte{2, 9}, SerializedPayload: mp.Marshal()}

	gotMD, err := UnmarshalAddressMetadata(md.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalAddressMetadata: %v", err)
	}
	gotMP, err := UnmarshalMetadataPayload(gotMD.SerializedPayload)
	if err != nil {
		t.Fatalf("UnmarshalMetadataPayload: %v", err)
	}
	if gotMP.Timestamp != 42 || gotMP.TTL != 3600 || len(gotMP.Entries) != 2 {
		t.Fatalf("unexpected metadata payload %+v", gotMP)
	}
	if mime, _ := gotMP.Entries[1].Header("type"); string(mime) != "image/png" {
		t.Fatalf("avatar header lost: %q", mime)
	}
}

func TestUnmarshalRejectsTruncated(t *testing.T) {
	b := (&MessageSet{Messages: []*Message{{SerializedPayload: []byte("payload")}}}).Marshal()
	if _, err := UnmarshalMessageSet(b[:len(b)-2]); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}
