package model

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	It("should match the sentinel of its kind", func() {
		err := fmt.Errorf("resolve pgp: %w", &Error{
			Kind:     ErrorKindIntegrity,
			Message:  "pgp public key SHA256 mismatch (pin failed)",
			Expected: "aa",
			Actual:   "bb",
		})

		Expect(errors.Is(err, ErrIntegrity)).Should(BeTrue())
		Expect(errors.Is(err, ErrSchema)).Should(BeFalse())
	})

	It("should not match a different error of the same kind", func() {
		a := NewError(ErrorKindSchema, "a")
		b := NewError(ErrorKindSchema, "b")

		Expect(errors.Is(a, b)).Should(BeFalse())
	})

	It("should expose kind and cause", func() {
		cause := errors.New("connection refused")
		err := WrapError(ErrorKindTransport, "DoH cloudflare request failed", cause)

		kind, ok := KindOf(fmt.Errorf("wrapped: %w", err))
		Expect(ok).Should(BeTrue())
		Expect(kind).Should(Equal(ErrorKindTransport))
		Expect(err.Retryable()).Should(BeTrue())
		Expect(errors.Is(err, cause)).Should(BeTrue())
		Expect(err.Error()).Should(Equal("DoH cloudflare request failed: connection refused"))
	})

	It("should report unknown kinds", func() {
		_, ok := KindOf(errors.New("plain"))
		Expect(ok).Should(BeFalse())
	})

	It("should only treat transport errors as retryable", func() {
		for _, kind := range []ErrorKind{
			ErrorKindAuthentication, ErrorKindConsistency, ErrorKindIntegrity, ErrorKindSchema, ErrorKindFormat,
		} {
			Expect(NewError(kind, "x").Retryable()).Should(BeFalse())
		}
	})

	It("should fall back to the kind name", func() {
		Expect((&Error{Kind: ErrorKindFormat}).Error()).Should(Equal("format error"))
	})
})
