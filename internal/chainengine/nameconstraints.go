// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

// enforceNameConstraints applies chain-wide name-constraints per §4.6.1.
// Errors are recorded on the CA that imposed a constraint, never on the
// descendant that violates it — a deliberate compatibility choice the spec
// calls out explicitly, and P7 depends on.
func enforceNameConstraints(chain *SimpleChain, opts ValidateOptions) {
	n := len(chain.Elements)

	for i := n - 1; i >= 0; i-- {
		imposer := chain.Elements[i]

		nc := InspectNameConstraints(imposer.Cert)
		if !nc.Present {
			continue
		}

		if anyUnsupportedForm(nc) {
			chain.setElementErrors(i, ErrHasNotSupportedNameConstraint)
		}

		if nc.NonDefaultMinOrMax {
			chain.setElementErrors(i, ErrHasNotSupportedNameConstraint)

			continue
		}

		for j := i - 1; j >= 0; j-- {
			descendant := chain.Elements[j].Cert

			if j != 0 && isSelfSigned(descendant) {
				// Self-signed intermediates are checked only when they
				// are the leaf (§4.6.1 item 2).
				continue
			}

			checkDescendantAgainstConstraints(chain, i, j, nc)
		}
	}
}

// anyUnsupportedForm reports whether any permitted or excluded subtree
// names a GeneralName form outside {DNS, RFC822, URI, IP} (§4.6.1 item 4).
func anyUnsupportedForm(nc NameConstraints) bool {
	for _, s := range nc.Permitted {
		if s.Other {
			return true
		}
	}
	for _, s := range nc.Excluded {
		if s.Other {
			return true
		}
	}

	return false
}

// checkDescendantAgainstConstraints evaluates descendant element j's
// subject-alt-name entries against imposer element i's decoded
// nameConstraints, flagging violations on i.
func checkDescendantAgainstConstraints(chain *SimpleChain, i, j int, nc NameConstraints) {
	san := InspectSubjectAltName(chain.Elements[j].Cert)

	if !san.Present {
		// Item 3: no subject-alt extension at all.
		if len(nc.Permitted) > 0 {
			chain.setElementErrors(i, ErrHasNotPermittedNameConstraint)
		}
		if len(nc.Excluded) > 0 {
			chain.setElementErrors(i, ErrHasExcludedNameConstraint)
		}

		return
	}

	candidates := sanCandidatesByForm(san)

	for _, subtree := range nc.Excluded {
		if subtree.Other {
			continue
		}

		for _, cand := range candidates[subtree.Form] {
			if nameMatches(subtree, cand) {
				chain.setElementErrors(i, ErrHasExcludedNameConstraint)

				break
			}
		}
	}

	permittedForms := map[NameForm]bool{}
	for _, subtree := range nc.Permitted {
		if !subtree.Other {
			permittedForms[subtree.Form] = true
		}
	}

	for form := range permittedForms {
		entries := candidates[form]
		if len(entries) == 0 {
			continue
		}

		matchedAny := false
		for _, subtree := range nc.Permitted {
			if subtree.Form != form || subtree.Other {
				continue
			}

			for _, cand := range entries {
				if nameMatches(subtree, cand) {
					matchedAny = true

					break
				}
			}

			if matchedAny {
				break
			}
		}

		if !matchedAny {
			chain.setElementErrors(i, ErrHasNotPermittedNameConstraint)
		}
	}
}

// sanCandidate is one subject-alt-name entry, either textual (DNS/RFC822/
// URI) or raw bytes (IP).
type sanCandidate struct {
	text string
	ip   []byte
}

func sanCandidatesByForm(san SubjectAltName) map[NameForm][]sanCandidate {
	out := map[NameForm][]sanCandidate{}

	for _, v := range san.DNS {
		out[NameFormDNS] = append(out[NameFormDNS], sanCandidate{text: v})
	}
	for _, v := range san.Email {
		out[NameFormRFC822] = append(out[NameFormRFC822], sanCandidate{text: v})
	}
	for _, v := range san.URI {
		out[NameFormURI] = append(out[NameFormURI], sanCandidate{text: v})
	}
	for _, v := range san.IP {
		out[NameFormIP] = append(out[NameFormIP], sanCandidate{ip: v})
	}

	return out
}

// nameMatches applies the §4.1 name-matching rule appropriate to
// subtree.Form.
func nameMatches(subtree GeneralSubtree, cand sanCandidate) bool {
	switch subtree.Form {
	case NameFormDNS:
		return matchDNS(subtree.Value, cand.text).Matched
	case NameFormRFC822:
		return matchRFC822(subtree.Value, cand.text).Matched
	case NameFormURI:
		return matchURI(subtree.Value, cand.text).Matched
	case NameFormIP:
		return matchIP(subtree.IPNet, cand.ip).Matched
	default:
		return false
	}
}
