package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/stampmsg/internal/config"
	"github.com/Layr-Labs/stampmsg/internal/inbox"
	"github.com/Layr-Labs/stampmsg/internal/keys"
	"github.com/Layr-Labs/stampmsg/internal/logging"
	"github.com/Layr-Labs/stampmsg/internal/payload"
	"github.com/Layr-Labs/stampmsg/internal/relay"
	"github.com/Layr-Labs/stampmsg/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "stampmsg",
		Usage: "Send and receive stamped, end-to-end encrypted relay messages",
		Flags: []cli.Flag{
			ConfigFileFlag,
			LogLevelFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "keygen",
				Usage:  "Generate a mnemonic and print its address",
				Flags:  []cli.Flag{NetworkFlag},
				Action: runKeygen,
			},
			{
				Name:   "send",
				Usage:  "Send a text message",
				Flags:  []cli.Flag{ToFlag, TextFlag, PlainFlag},
				Action: runSend,
			},
			{
				Name:   "watch",
				Usage:  "Poll the relay and print incoming messages",
				Flags:  []cli.Flag{ContactsFlag},
				Action: runWatch,
			},
			{
				Name:      "profile",
				Usage:     "Show the published profile for an address",
				ArgsUsage: "<address>",
				Action:    runProfile,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	logger   *slog.Logger
	cfg      *config.Config
	identity *keys.Identity
	http     *relay.HTTPClient
	keys     relay.Keyserver
}

func setup(c *cli.Context) (*env, error) {
	logger := logging.New(os.Stderr, c.String(LogLevelFlag.Name))

	cfg, err := config.Load(c.String(ConfigFileFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	id, err := keys.IdentityFromMnemonic(cfg.Mnemonic, cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	hc := relay.NewHTTPClient(relay.HTTPClientConfig{
		RelayURL:          cfg.RelayURL,
		KeyserverURL:      cfg.KeyserverURL,
		RequestsPerSecond: cfg.RelayRPS,
	})
	logger.Debug("identity loaded", "address", id.Address, "network", id.Network, "relay", cfg.RelayURL.String())
	return &env{
		logger:   logger,
		cfg:      cfg,
		identity: id,
		http:     hc,
		keys:     relay.NewMetadataCache(hc, cfg.MetadataTTL),
	}, nil
}

func (e *env) client(metrics *inbox.Metrics) (*inbox.Client, error) {
	return inbox.NewClient(inbox.Config{
		Identity:  e.identity,
		Relay:     e.http,
		Keyserver: e.keys,
		Token:     e.cfg.RelayToken,
		Logger:    e.logger,
		Metrics:   metrics,
	})
}

func runKeygen(c *cli.Context) error {
	net, err := keys.ParseNetwork(c.String(NetworkFlag.Name))
	if err != nil {
		return err
	}
	mnemonic, err := keys.NewMnemonic()
	if err != nil {
		return err
	}
	id, err := keys.IdentityFromMnemonic(mnemonic, net)
	if err != nil {
		return err
	}
	fmt.Printf("mnemonic: %s\naddress:  %s\npubkey:   %x\n", mnemonic, id.Address, id.Pub.SerializeCompressed())
	return nil
}

func runSend(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(c)
	if err != nil {
		return err
	}
	to := c.String(ToFlag.Name)

	var msg *relay.Message
	if c.Bool(PlainFlag.Name) {
		msg, err = sendPlain(ctx, e, to, c.String(TextFlag.Name))
	} else {
		var cl *inbox.Client
		if cl, err = e.client(nil); err == nil {
			msg, err = cl.SendText(ctx, to, c.String(TextFlag.Name))
		}
	}
	if err != nil {
		return err
	}

	e.logger.Info("message sent", "to", to, "digest", fmt.Sprintf("%x", msg.PayloadDigest))
	return nil
}

// sendPlain skips the contact lookup since no recipient key is needed.
func sendPlain(ctx context.Context, e *env, to, text string) (*relay.Message, error) {
	msg, err := relay.NewTextMessage(text, e.identity.Priv, nil, payload.SchemePlain)
	if err != nil {
		return nil, err
	}
	if err := e.http.Push(ctx, to, &relay.MessageSet{Messages: []*relay.Message{msg}}); err != nil {
		return nil, fmt.Errorf("push message: %w", err)
	}
	return msg, nil
}

func runWatch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(c)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := inbox.NewMetrics(reg)
	cl, err := e.client(metrics)
	if err != nil {
		return err
	}

	cancel := cl.Contacts.Subscribe(func(ev store.Event[string, inbox.Contact]) {
		if ev.Kind == store.Upserted && !ev.Value.Loading {
			e.logger.Info("contact updated", "address", ev.Key, "name", ev.Value.Name)
		}
	})
	defer cancel()

	for _, addr := range c.StringSlice(ContactsFlag.Name) {
		if err := cl.AddContact(ctx, addr); err != nil {
			e.logger.Warn("contact load failed", "address", addr, "err", err)
		}
	}

	if e.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              e.cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			e.logger.Info("metrics listening", "addr", e.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.logger.Error("metrics server error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	messages := inbox.NewPoller("messages", e.cfg.PollInterval, func(ctx context.Context) error {
		res, err := cl.RefreshMessages(ctx)
		if err != nil {
			return err
		}
		for _, d := range res.Delivered {
			printDelivered(cl, d)
		}
		return nil
	}, e.logger, metrics)
	contacts := inbox.NewPoller("contacts", 10*e.cfg.PollInterval, cl.RefreshContacts, e.logger, metrics)

	e.logger.Info("watching inbox", "address", e.identity.Address, "interval", e.cfg.PollInterval)
	go contacts.Run(ctx)
	messages.Run(ctx)
	return nil
}

func printDelivered(cl *inbox.Client, d inbox.Delivered) {
	from := d.From
	if contact, ok := cl.Contacts.Get(d.From); ok && !contact.Loading && contact.Name != "" {
		from = fmt.Sprintf("%s (%s)", contact.Name, d.From)
	}
	ts := time.Unix(d.Timestamp, 0).UTC().Format(time.RFC3339)
	for _, content := range d.Contents {
		switch v := content.(type) {
		case payload.Text:
			fmt.Printf("[%s] %s: %s\n", ts, from, v.Body)
		case payload.Card:
			fmt.Printf("[%s] %s shared a contact card: %s\n", ts, from, v.Name)
		case payload.Avatar:
			fmt.Printf("[%s] %s sent an image (%s, %d bytes)\n", ts, from, v.MIMEType, len(v.Data))
		}
	}
}

func runProfile(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one address argument")
	}
	e, err := setup(c)
	if err != nil {
		return err
	}

	addr := c.Args().First()
	contact, err := inbox.FetchContact(c.Context, e.keys, e.http, addr, e.cfg.Network)
	if err != nil {
		return err
	}

	fmt.Printf("address: %s\nname:    %s\nbio:     %s\npubkey:  %x\n", contact.Address, contact.Name, contact.Bio, contact.PubKey.SerializeCompressed())
	if contact.AcceptancePrice != nil {
		fmt.Printf("price:   %d\n", *contact.AcceptancePrice)
	} else {
		fmt.Println("price:   unknown")
	}
	return nil
}
