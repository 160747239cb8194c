package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dukerupert/larder/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired means the push service no longer knows the endpoint (410 Gone)
// and the subscription should be pruned.
var ErrExpired = errors.New("push subscription expired")

const (
	// Reminders repeat daily, so an undelivered one is stale after a day.
	reminderTTL = 86400
	subscriber  = "mailto:noreply@larder.local"
)

// Reminder is an expiry notice for a single inventory item.
type Reminder struct {
	ItemID   string
	ItemName string
	Status   string // display text, e.g. "Expires today"
}

// notification is the JSON the subscribed service worker receives.
type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

func (r Reminder) notification() notification {
	return notification{
		Title: "Larder",
		Body:  fmt.Sprintf("%s — %s", r.ItemName, r.Status),
		// One visible notification per item: today's reminder replaces
		// yesterday's instead of stacking.
		Tag: "expiry-" + r.ItemID,
	}
}

// Config holds VAPID configuration. Reminders are disabled when either key
// is empty.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Service delivers expiry reminders over web push.
type Service struct {
	publicKey  string
	privateKey string
}

// NewService creates a push service with the given VAPID key pair.
func NewService(publicKey, privateKey string) *Service {
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

// VAPIDPublicKey returns the public key clients need to subscribe.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send delivers a reminder to one subscribed device.
func (s *Service) Send(sub *model.PushSubscription, rem Reminder) error {
	data, err := json.Marshal(rem.notification())
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      subscriber,
		TTL:             reminderTTL,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// GenerateVAPIDKeys generates a P-256 key pair encoded the way the Push API
// expects: base64url, 65-byte uncompressed public point, 32-byte private
// scalar.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate key: %w", err)
	}

	priv, err := key.ECDH()
	if err != nil {
		return "", "", fmt.Errorf("convert key: %w", err)
	}
	publicKey = base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes())
	privateKey = base64.RawURLEncoding.EncodeToString(priv.Bytes())

	return publicKey, privateKey, nil
}
