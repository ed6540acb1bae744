package keymaterial

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/ssh"

	. "github.com/masiarekpl/keypin/helpertest"
	"github.com/masiarekpl/keypin/model"
)

func sshPublicKey(comment string) (string, ssh.PublicKey) {
	pub, _, err := ed25519.GenerateKey(nil)
	Expect(err).Should(Succeed())

	sshPub, err := ssh.NewPublicKey(pub)
	Expect(err).Should(Succeed())

	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))

	return line + " " + comment, sshPub
}

var _ = Describe("Key material", func() {
	Describe("CheckArmor", func() {
		It("should accept armored public keys", func() {
			armored, _ := TestPGPKey()

			Expect(CheckArmor(armored)).Should(Succeed())
		})

		It("should reject other text", func() {
			err := CheckArmor("ssh-ed25519 AAAA user@host")

			Expect(err).Should(HaveErrorKind(model.ErrorKindFormat))
			Expect(err).Should(MatchError("public key is not an armored PGP public key block"))
		})
	})

	Describe("ParseSSH", func() {
		It("should parse authorized_keys text", func() {
			line, pub := sshPublicKey("user@example.com")
			other, _ := sshPublicKey("backup")

			key, err := ParseSSH("# keys of user\n\n" + line + "\n" + other + "\n")
			Expect(err).Should(Succeed())

			Expect(key.Type).Should(Equal("ssh-ed25519"))
			Expect(key.Comment).Should(Equal("user@example.com"))
			Expect(key.Fingerprint).Should(Equal(ssh.FingerprintSHA256(pub)))
			Expect(key.Count).Should(Equal(2))
		})

		DescribeTable("invalid keys",
			func(text string) {
				_, err := ParseSSH(text)

				Expect(err).Should(HaveErrorKind(model.ErrorKindFormat))
			},
			Entry("empty", ""),
			Entry("only comments", "# nothing here\n"),
			Entry("armored PGP key", "-----BEGIN PGP PUBLIC KEY BLOCK-----\nabc\n"),
			Entry("broken base64", "ssh-ed25519 AAAA!!!! user@host"),
		)
	})

	Describe("PGPFingerprint", func() {
		It("should fingerprint ed25519 keys", func() {
			armored, entity := GeneratePGPKey("fpr-test", packet.PubKeyAlgoEdDSA)

			fpr, err := PGPFingerprint(armored)
			Expect(err).Should(Succeed())

			Expect(entity.PrimaryKey.PubKeyAlgo).Should(Equal(packet.PubKeyAlgoEdDSA))
			Expect(MatchFingerprint(fpr, hex.EncodeToString(entity.PrimaryKey.Fingerprint[12:]))).Should(BeTrue())
		})

		It("should return the primary key fingerprint", func() {
			armored, entity := TestPGPKey()

			fpr, err := PGPFingerprint(armored)
			Expect(err).Should(Succeed())

			Expect(fpr).Should(Equal(strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint[:]))))
			Expect(fpr).Should(HaveLen(40))
		})

		It("should fail for broken armor", func() {
			_, err := PGPFingerprint("-----BEGIN PGP PUBLIC KEY BLOCK-----\n\nnot base64\n-----END PGP PUBLIC KEY BLOCK-----\n")

			Expect(err).Should(HaveErrorKind(model.ErrorKindFormat))
		})
	})

	DescribeTable("MatchFingerprint",
		func(declared string, expected bool) {
			const actual = "0123456789ABCDEF0123456789ABCDEF01234567"

			Expect(MatchFingerprint(actual, declared)).Should(Equal(expected))
		},
		Entry("full fingerprint", "0123456789ABCDEF0123456789ABCDEF01234567", true),
		Entry("lower case with spaces", "0123 4567 89ab cdef 0123  4567 89ab cdef 0123 4567", true),
		Entry("long key id", "89ABCDEF01234567", true),
		Entry("short key id with prefix", "0x01234567", true),
		Entry("other key id", "ABCD1234", false),
		Entry("too short", "4567", false),
		Entry("empty", "", false),
		Entry("longer than fingerprint", "FF0123456789ABCDEF0123456789ABCDEF01234567", false),
	)

	Describe("Encrypt", func() {
		DescribeTable("should encrypt to the key",
			func(algorithm packet.PublicKeyAlgorithm) {
				armored, entity := GeneratePGPKey("encrypt-test", algorithm)

				ciphertext, err := Encrypt(armored, []byte("hello from the contact form"))
				Expect(err).Should(Succeed())

				Expect(ciphertext).Should(HavePrefix("-----BEGIN PGP MESSAGE-----"))
				Expect(ciphertext).ShouldNot(ContainSubstring("hello"))
				Expect(DecryptPGP(ciphertext, entity)).Should(Equal("hello from the contact form"))
			},
			Entry("ed25519 with cv25519 subkey", packet.PubKeyAlgoEdDSA),
			Entry("RSA", packet.PubKeyAlgoRSA),
		)

		It("should encrypt to the shared test key", func() {
			armored, entity := TestPGPKey()

			ciphertext, err := Encrypt(armored, []byte("secret"))
			Expect(err).Should(Succeed())
			Expect(DecryptPGP(ciphertext, entity)).Should(Equal("secret"))
		})

		It("should refuse text without armor marker", func() {
			_, err := Encrypt("not a key", []byte("secret"))

			Expect(err).Should(HaveErrorKind(model.ErrorKindFormat))
		})
	})
})
