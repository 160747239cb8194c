package export

import (
	"bytes"
	"testing"

	"github.com/dukerupert/larder/internal/model"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"hello":"world"}`)

	blob, err := Encrypt(plaintext, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Contains(blob, plaintext) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := Decrypt(blob, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("decrypted = %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "right passphrase")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := Decrypt(blob, "wrong passphrase"); err == nil {
		t.Fatal("expected an error with the wrong passphrase")
	}
}

func TestDecryptTruncatedBlob(t *testing.T) {
	if _, err := Decrypt([]byte("short"), "pass"); err == nil {
		t.Fatal("expected an error for a truncated blob")
	}
}

func TestDecryptTamperedBlob(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "pass")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	blob[len(blob)-1] ^= 0xff

	if _, err := Decrypt(blob, "pass"); err == nil {
		t.Fatal("expected an error for a tampered blob")
	}
}

func TestEncryptUniqueSalts(t *testing.T) {
	a, err := Encrypt([]byte("same"), "pass")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := Encrypt([]byte("same"), "pass")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext produced identical blobs")
	}
}

func TestInventoryRoundTrip(t *testing.T) {
	items := []model.FoodItem{
		{
			ID:         "item-1",
			Name:       "Milk",
			Quantity:   "1",
			ExpiryDate: model.NewDate(2025, 6, 1),
			Category:   model.CategoryDairy,
		},
		{
			ID:         "item-2",
			Name:       "Rice",
			Quantity:   "2 kg",
			ExpiryDate: model.NewDate(2026, 1, 15),
			Category:   model.CategoryPantry,
		},
	}

	blob, err := Inventory(items, "household passphrase")
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}

	got, err := ParseInventory(blob, "household passphrase")
	if err != nil {
		t.Fatalf("ParseInventory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "Milk" || got[1].Category != model.CategoryPantry {
		t.Errorf("items = %+v", got)
	}
	if got[0].ExpiryDate.String() != "2025-06-01" {
		t.Errorf("expiry = %s", got[0].ExpiryDate)
	}
}

func TestInventoryNilItems(t *testing.T) {
	blob, err := Inventory(nil, "pass")
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}

	got, err := ParseInventory(blob, "pass")
	if err != nil {
		t.Fatalf("ParseInventory: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestParseInventoryWrongPassphrase(t *testing.T) {
	blob, _ := Inventory(nil, "right")
	if _, err := ParseInventory(blob, "wrong"); err == nil {
		t.Fatal("expected an error with the wrong passphrase")
	}
}
