// Package keymaterial inspects fetched public keys and encrypts to them.
package keymaterial

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"golang.org/x/crypto/ssh"

	"github.com/masiarekpl/keypin/model"
)

const (
	// PGPPublicKeyMarker must be contained in every armored PGP public key
	PGPPublicKeyMarker = "BEGIN PGP PUBLIC KEY BLOCK"

	pgpMessageType = "PGP MESSAGE"

	// shortest accepted fingerprint suffix, a short key id
	minFingerprintLen = 8
)

// CheckArmor fails if text doesn't look like an armored PGP public key
func CheckArmor(text string) error {
	if !strings.Contains(text, PGPPublicKeyMarker) {
		return &model.Error{
			Kind:     model.ErrorKindFormat,
			Message:  "public key is not an armored PGP public key block",
			Expected: PGPPublicKeyMarker,
		}
	}

	return nil
}

// SSHKey describes the first key of an authorized_keys formatted text
type SSHKey struct {
	Type        string
	Comment     string
	Fingerprint string
	Count       int
}

// ParseSSH parses text in authorized_keys format. Every non-comment line must be a valid key.
func ParseSSH(text string) (*SSHKey, error) {
	var res *SSHKey

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pk, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			return nil, model.WrapError(model.ErrorKindFormat, "public key is not in SSH authorized_keys format", err)
		}

		if res == nil {
			res = &SSHKey{Type: pk.Type(), Comment: comment, Fingerprint: ssh.FingerprintSHA256(pk)}
		}

		res.Count++
	}

	if res == nil {
		return nil, model.NewError(model.ErrorKindFormat, "public key text contains no SSH key")
	}

	return res, nil
}

// PGPFingerprint returns the upper case hex fingerprint of the primary key
func PGPFingerprint(armored string) (string, error) {
	entity, err := readEntity(armored)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint[:])), nil
}

// MatchFingerprint returns true if declared is the full fingerprint or a long or short key id of actual.
// Case, spaces and a 0x prefix are ignored.
func MatchFingerprint(actual, declared string) bool {
	a := normalizeFingerprint(actual)
	d := normalizeFingerprint(declared)

	if len(d) < minFingerprintLen || len(a) < len(d) {
		return false
	}

	return strings.HasSuffix(a, d)
}

func normalizeFingerprint(fpr string) string {
	fpr = strings.Join(strings.Fields(fpr), "")
	fpr = strings.TrimPrefix(strings.TrimPrefix(fpr, "0x"), "0X")

	return strings.ToUpper(fpr)
}

// Encrypt encrypts plaintext to the armored public key and returns an armored PGP message
func Encrypt(armoredKey string, plaintext []byte) (string, error) {
	entity, err := readEntity(armoredKey)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	armored, err := armor.Encode(&buf, pgpMessageType, nil)
	if err != nil {
		return "", fmt.Errorf("can't create armor encoder: %w", err)
	}

	w, err := openpgp.Encrypt(armored, []*openpgp.Entity{entity}, nil, &openpgp.FileHints{IsBinary: false}, nil)
	if err != nil {
		return "", model.WrapError(model.ErrorKindFormat, "can't encrypt to public key", err)
	}

	if _, err := io.Copy(w, bytes.NewReader(plaintext)); err != nil {
		return "", fmt.Errorf("can't write plaintext: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("can't finish message: %w", err)
	}

	if err := armored.Close(); err != nil {
		return "", fmt.Errorf("can't finish armor: %w", err)
	}

	return buf.String(), nil
}

func readEntity(armored string) (*openpgp.Entity, error) {
	if err := CheckArmor(armored); err != nil {
		return nil, err
	}

	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if err != nil {
		return nil, model.WrapError(model.ErrorKindFormat, "can't read PGP public key", err)
	}

	if len(entities) == 0 {
		return nil, model.NewError(model.ErrorKindFormat, "PGP public key block contains no key")
	}

	return entities[0], nil
}
