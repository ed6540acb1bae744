package helpertest

import (
	"bytes"
	"crypto/ed25519"
	"io"
	"strings"
	"sync"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/ssh"
)

const testKeyBits = 2048

// Lazy init
//
//nolint:gochecknoglobals
var (
	initPGPKey   sync.Once
	pgpKeyArmor  string
	pgpKeyEntity *openpgp.Entity
)

// GeneratePGPKey creates a new key pair and returns the armored public key.
// PubKeyAlgoEdDSA yields an ed25519 primary key with a cv25519 encryption subkey, like gpg does by default.
func GeneratePGPKey(name string, algorithm packet.PublicKeyAlgorithm) (string, *openpgp.Entity) {
	entity, err := openpgp.NewEntity(name, "", name+"@example.com",
		&packet.Config{Algorithm: algorithm, RSABits: testKeyBits})
	gomega.Expect(err).Should(gomega.Succeed())

	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	gomega.Expect(err).Should(gomega.Succeed())
	gomega.Expect(entity.Serialize(w)).Should(gomega.Succeed())
	gomega.Expect(w.Close()).Should(gomega.Succeed())

	return buf.String() + "\n", entity
}

// TestPGPKey returns an ed25519/cv25519 key pair shared by all specs of the test process
func TestPGPKey() (string, *openpgp.Entity) {
	initPGPKey.Do(func() {
		pgpKeyArmor, pgpKeyEntity = GeneratePGPKey("keypin-test", packet.PubKeyAlgoEdDSA)
	})

	return pgpKeyArmor, pgpKeyEntity
}

// DecryptPGP decrypts an armored message with the private key of entity
func DecryptPGP(message string, entity *openpgp.Entity) string {
	block, err := armor.Decode(strings.NewReader(message))
	gomega.Expect(err).Should(gomega.Succeed())
	gomega.Expect(block.Type).Should(gomega.Equal("PGP MESSAGE"))

	md, err := openpgp.ReadMessage(block.Body, openpgp.EntityList{entity}, nil, nil)
	gomega.Expect(err).Should(gomega.Succeed())

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	gomega.Expect(err).Should(gomega.Succeed())

	return string(plaintext)
}

// GenerateSSHKey creates a new ed25519 key and returns its authorized_keys line and SHA256 fingerprint
func GenerateSSHKey(comment string) (line, fingerprint string) {
	pub, _, err := ed25519.GenerateKey(nil)
	gomega.Expect(err).Should(gomega.Succeed())

	sshPub, err := ssh.NewPublicKey(pub)
	gomega.Expect(err).Should(gomega.Succeed())

	line = strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " " + comment + "\n"

	return line, ssh.FingerprintSHA256(sshPub)
}
