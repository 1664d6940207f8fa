package apikeys

import (
	"fmt"
	"strings"
)

// DefaultPrefix tags workspace API keys.
const DefaultPrefix = "ks_"

// Issuer mints and parses workspace API keys of the form <prefix><token>,
// where token encrypts the workspace ID.
type Issuer struct {
	Codec  *Codec
	Prefix string
}

// NewIssuer builds an Issuer; an empty prefix falls back to DefaultPrefix.
func NewIssuer(codec *Codec, prefix string) *Issuer {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Issuer{Codec: codec, Prefix: prefix}
}

// Mint returns a fresh API key for workspaceID.
func (i *Issuer) Mint(workspaceID string) (string, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return "", fmt.Errorf("apikeys: workspace id is required")
	}
	token, err := i.Codec.SafeEncrypt(workspaceID)
	if err != nil {
		return "", err
	}
	return i.Prefix + token, nil
}

// Parse strips the prefix when present and decrypts the workspace ID.
func (i *Issuer) Parse(key string) (string, error) {
	key = strings.TrimSpace(key)
	token := strings.TrimPrefix(key, i.Prefix)
	if token == "" {
		return "", ErrDecryption
	}
	workspaceID, err := i.Codec.Decrypt(token)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(workspaceID) == "" {
		return "", ErrDecryption
	}
	return workspaceID, nil
}
