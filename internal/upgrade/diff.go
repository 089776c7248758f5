// Package upgrade computes the difference between an old locked requirement
// set and a freshly frozen one. It is pure computation: the freeze itself is
// the installer's job, and the result arrives here as an already-parsed set.
package upgrade

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// Change is a package whose pinned version moved.
type Change struct {
	Key string
	Old string
	New string
}

// Direction classifies the change as an upgrade or downgrade when both
// versions parse as semver, and returns "" otherwise. Python version schemes
// stray from semver often enough that this stays best-effort.
func (c Change) Direction() string {
	oldV, errOld := semver.NewVersion(c.Old)
	newV, errNew := semver.NewVersion(c.New)
	if errOld != nil || errNew != nil {
		return ""
	}
	switch {
	case newV.GreaterThan(oldV):
		return "upgrade"
	case newV.LessThan(oldV):
		return "downgrade"
	default:
		return ""
	}
}

func (c Change) String() string {
	s := fmt.Sprintf("%s: %s -> %s", c.Key, c.Old, c.New)
	if d := c.Direction(); d == "downgrade" {
		s += " (downgrade)"
	}
	return s
}

// Diff is the outcome of comparing two locked sets, keyed by canonical name.
type Diff struct {
	Added   []requirement.Requirement
	Removed []requirement.Requirement
	Changed []Change
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compute diffs an old locked set against a freshly frozen one. A name in
// both with a different pinned version is a change; a name only in old is a
// removal; a name only in new is an addition. Results are sorted by name.
func Compute(old, fresh *requirement.Set) Diff {
	oldByKey := old.ByKey()
	freshByKey := fresh.ByKey()

	var d Diff
	for _, key := range fresh.Keys() {
		freshReq := freshByKey[key]
		oldReq, ok := oldByKey[key]
		if !ok {
			d.Added = append(d.Added, freshReq)
			continue
		}
		oldVer := pinnedOrRaw(oldReq)
		newVer := pinnedOrRaw(freshReq)
		if oldVer != newVer {
			d.Changed = append(d.Changed, Change{Key: key, Old: oldVer, New: newVer})
		}
	}
	for _, key := range old.Keys() {
		if _, ok := freshByKey[key]; !ok {
			d.Removed = append(d.Removed, oldByKey[key])
		}
	}

	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Key < d.Added[j].Key })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Key < d.Removed[j].Key })
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Key < d.Changed[j].Key })
	return d
}

// DevLock subtracts the prod locked set from a frozen dev set: a package
// already pinned for production at the same version is never re-declared as
// a dev-only pin. A dev freeze that pinned a different version is kept, as
// that divergence is worth seeing.
func DevLock(frozenDev, prodLocked *requirement.Set) *requirement.Set {
	prodByKey := prodLocked.ByKey()
	out := &requirement.Set{Role: requirement.RoleDevLocked, File: frozenDev.File}
	for _, req := range frozenDev.Reqs {
		if prodReq, ok := prodByKey[req.Key]; ok && pinnedOrRaw(prodReq) == pinnedOrRaw(req) {
			continue
		}
		out.Reqs = append(out.Reqs, req)
	}
	return out
}

// pinnedOrRaw returns the exact pinned version, falling back to the raw
// specifier text for entries that are not strictly pinned.
func pinnedOrRaw(req requirement.Requirement) string {
	if v, ok := req.PinnedVersion(); ok {
		return v
	}
	var s string
	for i, spec := range req.Specs {
		if i > 0 {
			s += ","
		}
		s += spec.String()
	}
	return s
}
