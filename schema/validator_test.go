package schema

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/record"
)

const schemasJSON = `{
  "schema": "identity-schemas",
  "version": 1,
  "types": {
    "pgp": {
      "versions": {
        "1": {"required": ["pub", "pub_sha256", "fpr"], "optional": ["alg", "type"]},
        "2": {"required": ["pub", "pub_sha256"], "constraints": {"alg_allow": ["ed25519", "rsa"]}},
        "3": {"optional": ["pub"]}
      }
    },
    "ssh": {
      "versions": {
        "1": {"required": ["pub", "pub_sha256"], "optional": []}
      }
    }
  }
}`

func fieldsOf(raw string) record.FieldSet {
	rec, err := record.ParseVersioned(raw, "test")
	Expect(err).Should(Succeed())

	return rec.Fields
}

var _ = Describe("Validate", func() {
	var schemas *Schemas

	BeforeEach(func() {
		var err error
		schemas, err = ParseSchemas([]byte(schemasJSON), "identity-schemas")
		Expect(err).Should(Succeed())
	})

	Describe("required fields", func() {
		It("should pass with all required and additional fields", func() {
			fields := fieldsOf("v=1;pub=https://example.com/key.asc;pub_sha256=ab;fpr=ABCD1234;comment=hi;x=y")

			Expect(Validate(fields, schemas, "pgp", "1", "PGP")).Should(Succeed())
		})

		DescribeTable("should name the missing field",
			func(raw, missing string) {
				err := Validate(fieldsOf(raw), schemas, "pgp", "1", "PGP")

				Expect(errors.Is(err, model.ErrSchema)).Should(BeTrue())
				Expect(err).Should(MatchError("PGP TXT missing required field: " + missing))

				var modelErr *model.Error
				Expect(errors.As(err, &modelErr)).Should(BeTrue())
				Expect(modelErr.Field).Should(Equal(missing))
			},
			Entry("without pub", "v=1;pub_sha256=ab;fpr=ABCD1234", "pub"),
			Entry("without pub_sha256", "v=1;pub=https://example.com/key.asc;fpr=ABCD1234", "pub_sha256"),
			Entry("without fpr", "v=1;pub=https://example.com/key.asc;pub_sha256=ab", "fpr"),
			Entry("with empty fpr", "v=1;pub=https://example.com/key.asc;pub_sha256=ab;fpr=", "fpr"),
		)
	})

	Describe("algorithm allow-list", func() {
		const base = "v=2;pub=https://example.com/key.asc;pub_sha256=ab"

		It("should accept an allowed algorithm", func() {
			Expect(Validate(fieldsOf(base+";alg=rsa"), schemas, "pgp", "2", "PGP")).Should(Succeed())
			Expect(Validate(fieldsOf(base+";alg=ed25519"), schemas, "pgp", "2", "PGP")).Should(Succeed())
		})

		It("should reject other algorithms", func() {
			err := Validate(fieldsOf(base+";alg=curve25519"), schemas, "pgp", "2", "PGP")

			Expect(errors.Is(err, model.ErrSchema)).Should(BeTrue())
			Expect(err).Should(MatchError("unsupported alg=curve25519"))
		})

		It("should require alg", func() {
			err := Validate(fieldsOf(base), schemas, "pgp", "2", "PGP")

			Expect(errors.Is(err, model.ErrSchema)).Should(BeTrue())
			Expect(err).Should(MatchError("PGP TXT missing required field: alg"))
		})

		It("should not require alg without allow-list", func() {
			fields := fieldsOf("v=1;pub=https://example.com/key.asc;pub_sha256=ab;fpr=ABCD1234;alg=anything")

			Expect(Validate(fields, schemas, "pgp", "1", "PGP")).Should(Succeed())
		})
	})

	Describe("versions", func() {
		It("should reject unknown versions", func() {
			err := Validate(fieldsOf("v=9;pub=x"), schemas, "pgp", "9", "PGP")

			Expect(errors.Is(err, model.ErrSchema)).Should(BeTrue())
			Expect(err).Should(MatchError("unsupported pgp schema version v=9"))
		})

		It("should reject unknown types", func() {
			err := Validate(fieldsOf("v=1;pub=x"), schemas, "x509", "1", "X509")

			Expect(err).Should(MatchError("unsupported x509 schema version v=1"))
		})

		It("should reject rules without required list", func() {
			err := Validate(fieldsOf("v=3;pub=x"), schemas, "pgp", "3", "PGP")

			Expect(errors.Is(err, model.ErrFormat)).Should(BeTrue())
			Expect(err).Should(MatchError("invalid schemas JSON (missing required[] for pgp v=3)"))
		})
	})

	Describe("Rules", func() {
		It("should default optional to an empty list", func() {
			rules, err := schemas.Rules("pgp", "2")
			Expect(err).Should(Succeed())

			Expect(rules.Optional).ShouldNot(BeNil())
			Expect(rules.Optional).Should(BeEmpty())
			Expect(rules.Constraints.AlgAllow).Should(ConsistOf("ed25519", "rsa"))
		})

		It("should list versions in numeric order", func() {
			Expect(schemas.VersionsOf("pgp")).Should(Equal([]string{"1", "2", "3"}))
			Expect(schemas.VersionsOf("none")).Should(BeEmpty())
		})

		It("should list type names sorted", func() {
			Expect(schemas.TypeNames()).Should(Equal([]string{"pgp", "ssh"}))
		})
	})
})
