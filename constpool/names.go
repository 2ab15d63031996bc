package constpool

import (
	"strings"

	"github.com/wippyai/classfile/errors"
)

// ModuleName validates a module name. Module names keep their dots in
// internal form.
func ModuleName(s string) (string, error) {
	if s == "" {
		return "", errors.InvalidInput(errors.PhaseResolve, "empty module name")
	}
	if strings.ContainsAny(s, "/;[") {
		return "", invalidName("module", s)
	}
	return s, nil
}

// PackageName converts "a.b.c" to the internal form "a/b/c".
func PackageName(s string) (string, error) {
	return internalName("package", s)
}

// ClassName converts "a.b.C" to the internal form "a/b/C".
func ClassName(s string) (string, error) {
	return internalName("class", s)
}

// BinaryName converts an internal name back to dotted form.
func BinaryName(s string) string {
	return strings.ReplaceAll(s, "/", ".")
}

func internalName(kind, s string) (string, error) {
	if s == "" {
		return "", errors.InvalidInput(errors.PhaseResolve, "empty "+kind+" name")
	}
	if strings.ContainsAny(s, ";[") {
		return "", invalidName(kind, s)
	}
	n := strings.ReplaceAll(s, ".", "/")
	for _, part := range strings.Split(n, "/") {
		if part == "" {
			return "", invalidName(kind, s)
		}
	}
	return n, nil
}

func invalidName(kind, s string) error {
	return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
		Value(s).
		Detail("malformed %s name %q", kind, s).
		Build()
}
