package session

import (
	"encoding/base64"
	"errors"

	"sge-console/core/utils"
)

// The durable token is never written in the clear. Without a configured
// secret the key still comes through argon2, which only obscures the blob
// against casual reads of the state file.
const fallbackTokenSecret = "sge-console-local"

type tokenVault struct {
	secret string
}

func newTokenVault(secret string) tokenVault {
	if secret == "" {
		secret = fallbackTokenSecret
	}
	return tokenVault{secret: secret}
}

func (v tokenVault) seal(token string) (blob, salt string, err error) {
	rawSalt, err := utils.RandBytes(16)
	if err != nil {
		return "", "", err
	}
	enc, err := utils.NewEncryptor(utils.DeriveKey(v.secret, rawSalt))
	if err != nil {
		return "", "", err
	}
	ct, err := enc.EncryptToBlob([]byte(token))
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(ct), base64.StdEncoding.EncodeToString(rawSalt), nil
}

func (v tokenVault) open(blob, salt string) (string, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", err
	}
	ct, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", err
	}
	enc, err := utils.NewEncryptor(utils.DeriveKey(v.secret, rawSalt))
	if err != nil {
		return "", err
	}
	pt, err := enc.DecryptBlob(ct)
	if err != nil {
		return "", errors.New("saved token cannot be decrypted")
	}
	return string(pt), nil
}
