package schema

import (
	"fmt"

	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/record"
)

const algField = "alg"

// Validate checks the fields of a record of the given type and version against the published rules.
// The first violation is returned, there is no partial acceptance.
func Validate(fields record.FieldSet, schemas *Schemas, typ, version, label string) error {
	rules, err := schemas.Rules(typ, version)
	if err != nil {
		return err
	}

	return rules.Check(fields, label)
}

// Check validates fields against the rules
func (r *Rules) Check(fields record.FieldSet, label string) error {
	if err := fields.Require(label, r.Required...); err != nil {
		return err
	}

	if len(r.Constraints.AlgAllow) == 0 {
		return nil
	}

	// an allow-list makes alg required
	if err := fields.Require(label, algField); err != nil {
		return err
	}

	alg := fields.Get(algField)
	for _, allowed := range r.Constraints.AlgAllow {
		if alg == allowed {
			return nil
		}
	}

	return &model.Error{
		Kind:    model.ErrorKindSchema,
		Message: fmt.Sprintf("unsupported alg=%s", alg),
		Field:   algField,
		Actual:  alg,
	}
}
