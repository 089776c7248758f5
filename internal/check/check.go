// Package check reconciles a minimal requirements file against its locked
// counterpart and reports every discrepancy it finds. Findings never abort
// the check: the full list is always produced so one run shows the complete
// picture.
package check

import (
	"fmt"

	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// Kind identifies a category of inconsistency.
type Kind string

const (
	// ExtraInLocked: pinned in the locked file but not depended on in the
	// minimal file. Usually a leftover from an upgrade that dropped a
	// dependency, or a transitive dep promoted by hand.
	ExtraInLocked Kind = "EXTRA_IN_LOCKED"
	// MissingFromLocked: listed in the minimal file but absent from the
	// locked file, so the dependency is effectively unresolved.
	MissingFromLocked Kind = "MISSING_FROM_LOCKED"
	// NameNotNormalized: the package name is spelled with upper case,
	// underscores or dots instead of its canonical dashed form.
	NameNotNormalized Kind = "NAME_NOT_NORMALIZED"
	// InsufficientlyPinned: a locked requirement that is not an exact pin,
	// or a minimal requirement with no specifier and no marker scoping it.
	InsufficientlyPinned Kind = "INSUFFICIENTLY_PINNED"
)

// Finding is a single reported inconsistency.
type Finding struct {
	Kind   Kind   `json:"kind"`
	Key    string `json:"package"`
	File   string `json:"file,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (f Finding) String() string {
	s := fmt.Sprintf("%s(%s)", f.Kind, f.Key)
	if f.Detail != "" {
		s += ": " + f.Detail
	}
	return s
}

// Check compares a minimal requirement set against its locked counterpart.
// It is a pure function of its inputs: calling it again with the same sets
// yields the same findings in the same order. An empty result means the
// pair is consistent.
func Check(minimal, locked *requirement.Set) []Finding {
	minByKey := minimal.ByKey()
	lockByKey := locked.ByKey()

	var findings []Finding

	for _, key := range locked.Keys() {
		if _, ok := minByKey[key]; !ok {
			findings = append(findings, Finding{
				Kind: ExtraInLocked,
				Key:  key,
				File: locked.File,
				Detail: fmt.Sprintf("pinned in %s but not depended on in %s",
					fileLabel(locked), fileLabel(minimal)),
			})
		}
	}

	for _, key := range minimal.Keys() {
		if _, ok := lockByKey[key]; !ok {
			findings = append(findings, Finding{
				Kind: MissingFromLocked,
				Key:  key,
				File: minimal.File,
				Detail: fmt.Sprintf("listed in %s but not pinned in %s",
					fileLabel(minimal), fileLabel(locked)),
			})
		}
	}

	findings = append(findings, checkNormalization(minimal)...)
	findings = append(findings, checkNormalization(locked)...)
	findings = append(findings, checkPinning(minimal, locked)...)

	return findings
}

// checkNormalization reports requirements written in non-canonical form.
func checkNormalization(s *requirement.Set) []Finding {
	var findings []Finding
	byKey := s.ByKey()
	for _, key := range s.Keys() {
		req := byKey[key]
		if req.Name != req.Key {
			findings = append(findings, Finding{
				Kind:   NameNotNormalized,
				Key:    req.Name,
				File:   s.File,
				Detail: fmt.Sprintf("use %q in %s", req.Key, fileLabel(s)),
			})
		}
	}
	return findings
}

// checkPinning enforces pin strength: every locked requirement must be an
// exact pin. A minimal requirement may be completely unpinned as long as the
// locked file pins it strictly or an environment marker scopes it; that is
// the whole point of the minimal/locked split.
func checkPinning(minimal, locked *requirement.Set) []Finding {
	var findings []Finding
	lockByKey := locked.ByKey()
	for _, key := range locked.Keys() {
		req := lockByKey[key]
		if level := requirement.Classify(req); level != requirement.Strict {
			findings = append(findings, Finding{
				Kind:   InsufficientlyPinned,
				Key:    key,
				File:   locked.File,
				Detail: fmt.Sprintf("%s in %s is %s, want an exact == pin", req.Raw, fileLabel(locked), level),
			})
		}
	}
	minByKey := minimal.ByKey()
	for _, key := range minimal.Keys() {
		req := minByKey[key]
		if requirement.Classify(req) != requirement.Unpinned || req.Marker != "" {
			continue
		}
		if lockReq, ok := lockByKey[key]; ok && requirement.Classify(lockReq) == requirement.Strict {
			continue
		}
		findings = append(findings, Finding{
			Kind:   InsufficientlyPinned,
			Key:    key,
			File:   minimal.File,
			Detail: fmt.Sprintf("%s in %s has no version specifier and no strict pin in %s", req.Raw, fileLabel(minimal), fileLabel(locked)),
		})
	}
	return findings
}

func fileLabel(s *requirement.Set) string {
	if s.File != "" {
		return s.File
	}
	return string(s.Role)
}
