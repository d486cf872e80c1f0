package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Layr-Labs/stampmsg/internal/keys"
	"github.com/Layr-Labs/stampmsg/internal/payload"
	"github.com/Layr-Labs/stampmsg/internal/relay"
	"github.com/Layr-Labs/stampmsg/internal/store"
)

type ChatMessage struct {
	// ID is unique per client and increases in creation order.
	ID        uint64
	Outbound  bool
	Sent      bool
	Body      string
	Timestamp int64
}

type Chat struct {
	Address  string
	Messages []ChatMessage
}

type Config struct {
	Identity  *keys.Identity
	Relay     relay.Relay
	Keyserver relay.Keyserver
	// Token authorizes fetches from the identity's relay inbox.
	Token   string
	Logger  *slog.Logger
	Metrics *Metrics
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Client keeps chats and contacts for one identity in sync with a relay.
type Client struct {
	id        *keys.Identity
	relay     relay.Relay
	keyserver relay.Keyserver
	token     string
	logger    *slog.Logger
	metrics   *Metrics
	ingestor  *Ingestor
	now       func() time.Time

	Chats    *store.Repository[string, Chat]
	Contacts *store.Repository[string, Contact]

	nextID atomic.Uint64

	mu           sync.Mutex
	lastReceived int64
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Identity == nil || cfg.Relay == nil || cfg.Keyserver == nil {
		return nil, fmt.Errorf("inbox: identity, relay and keyserver are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		id:        cfg.Identity,
		relay:     cfg.Relay,
		keyserver: cfg.Keyserver,
		token:     cfg.Token,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		ingestor:  NewIngestor(cfg.Identity, cfg.Logger, cfg.Metrics),
		now:       cfg.Now,
		Chats:     store.New[string, Chat](),
		Contacts:  store.New[string, Contact](),
	}, nil
}

// LastReceived is the start time of the next fetch.
func (c *Client) LastReceived() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReceived
}

// RefreshMessages fetches new messages, appends readable ones to their chats
// and starts profile loads for unknown senders. Unreadable messages are
// logged and skipped.
func (c *Client) RefreshMessages(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, err := c.relay.Fetch(ctx, c.id.Address, c.token, c.lastReceived, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	res := c.ingestor.Ingest(page, c.lastReceived)
	c.lastReceived = res.NextSince

	for _, d := range res.Delivered {
		if _, ok := c.Contacts.Get(d.From); !ok {
			c.Contacts.Upsert(d.From, LoadingContact(d.From))
			if err := c.RefreshContact(ctx, d.From); err != nil {
				c.logger.Warn("contact refresh failed", "address", d.From, "err", err)
			}
		}
		for _, content := range d.Contents {
			text, ok := content.(payload.Text)
			if !ok {
				continue
			}
			msg := ChatMessage{ID: c.nextID.Add(1), Body: text.Body, Timestamp: d.Timestamp, Sent: true}
			c.Chats.Update(d.From, func(cur Chat, _ bool) Chat {
				cur.Address = d.From
				cur.Messages = append(slices.Clip(cur.Messages), msg)
				return cur
			})
		}
	}
	return res, nil
}

// RefreshContact reloads one known contact's profile and price. A result
// for a contact deleted while the load was in flight is dropped.
func (c *Client) RefreshContact(ctx context.Context, addr string) error {
	contact, err := FetchContact(ctx, c.keyserver, c.relay, addr, c.id.Network)
	if err != nil {
		c.metrics.ProfileRefresh.WithLabelValues("error").Inc()
		return err
	}
	c.metrics.ProfileRefresh.WithLabelValues("ok").Inc()
	if !c.Contacts.UpdateExisting(addr, func(Contact) Contact { return *contact }) {
		c.logger.Debug("dropping profile for deleted contact", "address", addr)
	}
	return nil
}

// RefreshContacts reloads every known contact, continuing past failures.
func (c *Client) RefreshContacts(ctx context.Context) error {
	var failed int
	for _, addr := range c.Contacts.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.RefreshContact(ctx, addr); err != nil {
			failed++
			c.logger.Warn("contact refresh failed", "address", addr, "err", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d contact refreshes failed", failed)
	}
	return nil
}

// AddContact loads addr's profile and opens a chat with it.
func (c *Client) AddContact(ctx context.Context, addr string) error {
	c.Contacts.Upsert(addr, LoadingContact(addr))
	c.Chats.Update(addr, func(cur Chat, _ bool) Chat {
		cur.Address = addr
		return cur
	})
	return c.RefreshContact(ctx, addr)
}

// DeleteContact removes the contact and its chat.
func (c *Client) DeleteContact(addr string) {
	c.Chats.Delete(addr)
	c.Contacts.Delete(addr)
}

// SendText encrypts text to the contact at addr and pushes it to the relay.
// Unknown addresses are added as contacts first. The message is recorded
// locally before the push and marked sent once the push succeeds.
func (c *Client) SendText(ctx context.Context, addr, text string) (*relay.Message, error) {
	contact, ok := c.Contacts.Get(addr)
	switch {
	case !ok:
		if err := c.AddContact(ctx, addr); err != nil {
			return nil, err
		}
		contact, ok = c.Contacts.Get(addr)
	case contact.PubKey == nil:
		if err := c.RefreshContact(ctx, addr); err != nil {
			return nil, err
		}
		contact, ok = c.Contacts.Get(addr)
	}
	if !ok || contact.PubKey == nil {
		return nil, fmt.Errorf("contact %s was removed", addr)
	}

	msg, err := relay.NewTextMessage(text, c.id.Priv, contact.PubKey, payload.SchemeEncryptedDH)
	if err != nil {
		return nil, err
	}

	id := c.appendOutbound(addr, text)
	if err := c.relay.Push(ctx, addr, &relay.MessageSet{Messages: []*relay.Message{msg}}); err != nil {
		return nil, fmt.Errorf("push message: %w", err)
	}
	c.markSent(addr, id)
	return msg, nil
}

func (c *Client) appendOutbound(addr, text string) uint64 {
	msg := ChatMessage{
		ID:        c.nextID.Add(1),
		Outbound:  true,
		Body:      text,
		Timestamp: c.now().Unix(),
	}
	c.Chats.Update(addr, func(cur Chat, _ bool) Chat {
		cur.Address = addr
		cur.Messages = append(slices.Clip(cur.Messages), msg)
		return cur
	})
	return msg.ID
}

// markSent flags the outbound message id. A chat deleted meanwhile stays
// deleted.
func (c *Client) markSent(addr string, id uint64) {
	c.Chats.UpdateExisting(addr, func(cur Chat) Chat {
		msgs := slices.Clone(cur.Messages)
		for i := range msgs {
			if msgs[i].ID == id {
				msgs[i].Sent = true
				break
			}
		}
		cur.Messages = msgs
		return cur
	})
}
