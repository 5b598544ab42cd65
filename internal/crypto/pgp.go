package crypto

import (
	"bytes"
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
)

// DefaultRSABits - key size of a freshly generated server key
const DefaultRSABits = 4096

// Sealer encrypts identifiers at rest and derives their lookup digest
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(armored string) (string, error)
	Digest(plaintext string) string
}

// PGPManager owns the server PGP entity and the HMAC key
type PGPManager struct {
	entity  *openpgp.Entity // PGP entity
	keyPath string          // armored private key file
	rsaBits int
	hmacKey []byte
}

// NewPGPManager loads the key from keyPath or generates and saves one
func NewPGPManager(keyPath string, hmacKey []byte) (*PGPManager, error) {
	return NewPGPManagerWithBits(keyPath, hmacKey, DefaultRSABits)
}

func NewPGPManagerWithBits(keyPath string, hmacKey []byte, rsaBits int) (*PGPManager, error) {
	if len(hmacKey) < 32 {
		return nil, errors.New("hmac key must be at least 32 bytes")
	}
	manager := &PGPManager{keyPath: keyPath, rsaBits: rsaBits, hmacKey: hmacKey}

	if err := manager.init(); err != nil {
		return nil, fmt.Errorf("failed to initialise PGP: %w", err)
	}

	return manager, nil
}

// init loads an existing key or generates a new one
func (m *PGPManager) init() error {
	if _, err := os.Stat(m.keyPath); err == nil {
		entity, err := m.loadKeyFromFile()
		if err != nil {
			return fmt.Errorf("failed to load PGP key: %w", err)
		}
		m.entity = entity
		return nil
	}

	return m.generateAndSaveKey()
}

// generateAndSaveKey generates a key pair and stores it armored
func (m *PGPManager) generateAndSaveKey() error {
	config := &packet.Config{
		Rand:          rand.Reader,
		RSABits:       m.rsaBits,
		DefaultHash:   crypto.SHA256,
		DefaultCipher: packet.CipherAES256,
	}

	entity, err := openpgp.NewEntity(
		"Loan4Farm API",
		"",
		"api@loan4farm.in",
		config,
	)
	if err != nil {
		return fmt.Errorf("failed to generate entity: %w", err)
	}

	// Sign the identities
	for _, id := range entity.Identities {
		err := id.SelfSignature.SignUserId(
			id.UserId.Id,
			entity.PrimaryKey,
			entity.PrivateKey,
			config,
		)
		if err != nil {
			return fmt.Errorf("failed to sign identity: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.keyPath), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	file, err := os.OpenFile(m.keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer file.Close()

	armorWriter, err := armor.Encode(file, openpgp.PrivateKeyType, nil)
	if err != nil {
		return fmt.Errorf("failed to create armor writer: %w", err)
	}

	if err := entity.SerializePrivate(armorWriter, config); err != nil {
		armorWriter.Close()
		return fmt.Errorf("failed to serialise private key: %w", err)
	}

	if err := armorWriter.Close(); err != nil {
		return fmt.Errorf("failed to close armor writer: %w", err)
	}

	m.entity = entity
	return nil
}

// GetEntity returns the PGP entity
func (m *PGPManager) GetEntity() *openpgp.Entity {
	return m.entity
}

// loadKeyFromFile reads an armored private key
func (m *PGPManager) loadKeyFromFile() (*openpgp.Entity, error) {
	file, err := os.Open(m.keyPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	block, err := armor.Decode(file)
	if err != nil {
		return nil, err
	}

	if block.Type != openpgp.PrivateKeyType {
		return nil, errors.New("file is not a private key")
	}

	return openpgp.ReadEntity(packet.NewReader(block.Body))
}

// Encrypt returns an armored PGP message for the server key
func (m *PGPManager) Encrypt(plaintext string) (string, error) {
	buf := new(bytes.Buffer)

	armorWriter, err := armor.Encode(buf, "PGP MESSAGE", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create armor writer: %w", err)
	}

	config := &packet.Config{
		DefaultHash:            crypto.SHA256,
		DefaultCipher:          packet.CipherAES256,
		DefaultCompressionAlgo: packet.CompressionZLIB,
	}

	plaintextWriter, err := openpgp.Encrypt(armorWriter, []*openpgp.Entity{m.entity}, nil, nil, config)
	if err != nil {
		armorWriter.Close()
		return "", fmt.Errorf("failed to create encrypting writer: %w", err)
	}

	if _, err := plaintextWriter.Write([]byte(plaintext)); err != nil {
		armorWriter.Close()
		return "", fmt.Errorf("failed to write plaintext: %w", err)
	}

	if err := plaintextWriter.Close(); err != nil {
		armorWriter.Close()
		return "", fmt.Errorf("failed to close plaintext writer: %w", err)
	}

	if err := armorWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to close armor writer: %w", err)
	}

	return buf.String(), nil
}

// Decrypt opens a message produced by Encrypt
func (m *PGPManager) Decrypt(armored string) (string, error) {
	block, err := armor.Decode(strings.NewReader(armored))
	if err != nil {
		return "", fmt.Errorf("failed to decode armor: %w", err)
	}

	md, err := openpgp.ReadMessage(block.Body, openpgp.EntityList{m.entity}, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return "", fmt.Errorf("failed to read plaintext: %w", err)
	}

	return string(plaintext), nil
}

// Digest - hex HMAC-SHA256, stable lookup key for an identifier
func (m *PGPManager) Digest(plaintext string) string {
	h := hmac.New(sha256.New, m.hmacKey)
	h.Write([]byte(plaintext))
	return hex.EncodeToString(h.Sum(nil))
}
