// Package export produces passphrase-encrypted local backups of the
// inventory. Backups never leave the device unless the user moves them.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/dukerupert/larder/internal/model"
)

// Guards the envelope layout for future format changes.
const formatVersion = 1

type envelope struct {
	Version int              `json:"version"`
	Items   []model.FoodItem `json:"items"`
}

// Inventory encrypts the full item collection into a portable blob.
func Inventory(items []model.FoodItem, passphrase string) ([]byte, error) {
	if items == nil {
		items = []model.FoodItem{}
	}
	plaintext, err := json.Marshal(envelope{Version: formatVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return Encrypt(plaintext, passphrase)
}

// ParseInventory decrypts and decodes a blob produced by Inventory.
func ParseInventory(blob []byte, passphrase string) ([]model.FoodItem, error) {
	plaintext, err := Decrypt(blob, passphrase)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("unsupported export version %d", env.Version)
	}
	return env.Items, nil
}
