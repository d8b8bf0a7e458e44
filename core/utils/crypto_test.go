package utils

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := RandBytes(16)
	if err != nil {
		t.Fatalf("salt: %v", err)
	}
	k1 := DeriveKey("secret", salt)
	k2 := DeriveKey("secret", salt)
	if len(k1) != 32 {
		t.Fatalf("key length %d", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("same secret and salt must derive the same key")
	}
	other, _ := RandBytes(16)
	if bytes.Equal(k1, DeriveKey("secret", other)) {
		t.Fatalf("different salt must derive a different key")
	}
}

func TestEncryptRoundTrip(t *testing.T) {
	salt, _ := RandBytes(16)
	enc, err := NewEncryptor(DeriveKey("secret", salt))
	if err != nil {
		t.Fatalf("encryptor: %v", err)
	}
	blob, err := enc.EncryptToBlob([]byte("bearer-token"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	plain, err := enc.DecryptBlob(blob)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(plain) != "bearer-token" {
		t.Fatalf("round trip mismatch: %q", plain)
	}

	wrongSalt, _ := RandBytes(16)
	wrong, _ := NewEncryptor(DeriveKey("secret", wrongSalt))
	if _, err := wrong.DecryptBlob(blob); err == nil {
		t.Fatalf("wrong key must not decrypt")
	}
}

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"admin", "mario.rossi", "op_1", "a-b-c"} {
		if err := ValidateUsername(ok); err != nil {
			t.Fatalf("%q should be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", "has space", "très", "x'; DROP TABLE"} {
		if err := ValidateUsername(bad); err == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}
