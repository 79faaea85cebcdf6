package machine

import (
	"path"

	"github.com/glipt-org/glipt/lang/compiler"
)

// PermSet is the typed set of permission grants owned by the VM. The ALLOW
// instruction records grants; natives interrogate the set before every
// sensitive operation. Matching is a glob predicate over the target.
type PermSet struct {
	grants []grant
}

type grant struct {
	kind    compiler.Perm
	pattern string
}

// Grant records a permission grant.
func (ps *PermSet) Grant(kind compiler.Perm, pattern string) {
	ps.grants = append(ps.grants, grant{kind: kind, pattern: pattern})
}

// Allowed reports whether target is covered by a grant of the given kind.
func (ps *PermSet) Allowed(kind compiler.Perm, target string) bool {
	for _, g := range ps.grants {
		if g.kind != kind {
			continue
		}
		if g.pattern == target {
			return true
		}
		if ok, err := path.Match(g.pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}

// Perms returns the VM's permission set.
func (vm *VM) Perms() *PermSet { return &vm.perms }

// RequirePermission checks a grant and raises a permission error when it
// is missing; it reports whether the operation may proceed.
func (vm *VM) RequirePermission(kind compiler.Perm, target string) bool {
	if vm.perms.Allowed(kind, target) {
		return true
	}
	vm.Errorf("permission", "Permission denied: %s %q.", kind, target)
	return false
}
