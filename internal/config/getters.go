// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import (
	"strings"
	"time"
)

// Timeout converts the user-specified connection timeout value in
// seconds to an appropriate time duration value for use with setting
// net.Dial timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.timeout) * time.Second
}

// TimeoutPortScan converts the user-specified port scan timeout value in
// milliseconds to an appropriate time duration value for use with setting
// net.Dial timeout.
func (c Config) TimeoutPortScan() time.Duration {
	return time.Duration(c.timeoutPortScan) * time.Millisecond
}

// TimeoutAppInactivity converts the user-specified application inactivity
// timeout value in seconds to an appropriate time duration value for use with
// setting automatic context cancellation.
func (c Config) TimeoutAppInactivity() time.Duration {
	return time.Duration(c.timeoutAppInactivity) * time.Second
}

// CertPorts returns the user-specified list of ports to check for
// certificates or the default value if not specified.
func (c Config) CertPorts() []int {
	if c.portsList != nil {
		return c.portsList
	}

	return []int{defaultPortsListEntry}
}

// IPAddresses returns a list of individual IP Addresses expanded from any
// user-specified IP Addresses (single or ranges), hostnames or FQDNs.
func (c Config) IPAddresses() []string {
	if c.hosts.expanded != nil {
		return c.hosts.expanded
	}

	return []string{}
}

// keywordListed indicates whether keyword is present (case-insensitively)
// in list.
func keywordListed(list []string, keyword string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), keyword) {
			return true
		}
	}

	return false
}

// applyCheck implements the shared precedence used by every
// ApplyCertXValidationResults method: an explicit ignore request wins, then
// an explicit apply request, then the check's own default.
func (c Config) applyCheck(keyword string, defaultApply bool) bool {
	switch {
	case keywordListed(c.ignoreValidationResults, keyword):
		return false
	case keywordListed(c.applyValidationResults, keyword):
		return true
	default:
		return defaultApply
	}
}

// ApplyCertExpirationValidationResults indicates whether expiration
// validation check results should be applied when determining overall
// validation state.
func (c Config) ApplyCertExpirationValidationResults() bool {
	return c.applyCheck(ValidationKeywordExpiration, defaultApplyCertExpirationValidationResults)
}

// ApplyCertHostnameValidationResults indicates whether hostname validation
// check results should be applied when determining overall validation
// state.
func (c Config) ApplyCertHostnameValidationResults() bool {
	return c.applyCheck(ValidationKeywordHostname, defaultApplyCertHostnameValidationResults)
}

// ApplyCertSANsListValidationResults indicates whether Subject Alternate
// Names list validation check results should be applied when determining
// overall validation state. Without SANs entries specified this is always
// false regardless of explicit ignore/apply requests, since there is
// nothing to validate. It is also false when the first entry is the
// SkipSANSCheckKeyword (case-insensitive).
func (c Config) ApplyCertSANsListValidationResults() bool {
	if len(c.SANsEntries) == 0 {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(c.SANsEntries[0]), SkipSANSCheckKeyword) {
		return false
	}

	return c.applyCheck(ValidationKeywordSANsList, defaultApplyCertSANsListValidationResults)
}

// ApplyCertChainOrderValidationResults indicates whether chain order
// validation check results should be applied when determining overall
// validation state.
func (c Config) ApplyCertChainOrderValidationResults() bool {
	return c.applyCheck(ValidationKeywordChainOrder, defaultApplyCertChainOrderValidationResults)
}

// ApplyCertRootValidationResults indicates whether root-certificate-present
// validation check results should be applied when determining overall
// validation state.
func (c Config) ApplyCertRootValidationResults() bool {
	return c.applyCheck(ValidationKeywordRoot, defaultApplyCertRootValidationResults)
}
