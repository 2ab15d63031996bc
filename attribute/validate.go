package attribute

import (
	"strconv"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/errors"
)

// BaseModule is the one module allowed to have no requires entries.
const BaseModule = "java.base"

// Validate checks the format-level rules decoding does not enforce:
//   - java.base has no requires entries
//   - any other module requires java.base, unless it is an open module
//     with no requires entries at all
//   - an open module has no opens entries
//
// For a bound attribute this materialises the requires and opens lists.
func Validate(attr ModuleAttribute) error {
	if attr == nil {
		return errors.InvalidInput(errors.PhaseValidate, "nil attribute")
	}
	if err := validateRequires(attr); err != nil {
		return err
	}
	return validateOpens(attr)
}

// DecodeModuleValidate decodes a Module payload and validates it.
// This is a convenience function combining DecodeModule and Validate.
func DecodeModuleValidate(payload []byte, pool ConstantPool) (*BoundModuleAttribute, error) {
	m, err := DecodeModule(payload, pool)
	if err != nil {
		return nil, err
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func validateRequires(attr ModuleAttribute) error {
	requires := attr.Requires()
	if attr.ModuleName().Value == BaseModule {
		if len(requires) != 0 {
			return errors.New(errors.PhaseValidate, errors.KindMalformedAttribute).
				Path(Name, "requires_count").
				Expected("0").
				Actual(strconv.Itoa(len(requires))).
				Detail("%s must not require other modules", BaseModule).
				Build()
		}
		return nil
	}
	if len(requires) == 0 {
		if attr.Has(accessflag.Open) {
			return nil
		}
		return errors.New(errors.PhaseValidate, errors.KindMalformedAttribute).
			Path(Name, "requires_count").
			Expected("at least 1").
			Actual("0").
			Detail("module %s has no requires entries", attr.ModuleName().Value).
			Build()
	}
	for _, r := range requires {
		if r.Module().Value == BaseModule {
			return nil
		}
	}
	return errors.New(errors.PhaseValidate, errors.KindMalformedAttribute).
		Path(Name, "requires").
		Detail("module %s does not require %s", attr.ModuleName().Value, BaseModule).
		Build()
}

func validateOpens(attr ModuleAttribute) error {
	if !attr.Has(accessflag.Open) {
		return nil
	}
	if n := len(attr.Opens()); n != 0 {
		return errors.New(errors.PhaseValidate, errors.KindMalformedAttribute).
			Path(Name, "opens_count").
			Expected("0").
			Actual(strconv.Itoa(n)).
			Detail("open module %s declares opens entries", attr.ModuleName().Value).
			Build()
	}
	return nil
}
