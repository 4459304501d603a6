// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import (
	"fmt"
	"strings"
)

// validateValidationResultKeywords asserts that every keyword given via the
// ignore/apply validation result flags is recognized, and that no keyword
// appears in both lists (an unresolvable, contradictory request).
func (c Config) validateValidationResultKeywords() error {
	for _, keyword := range c.ignoreValidationResults {
		if !validationKeywords[strings.ToLower(strings.TrimSpace(keyword))] {
			return fmt.Errorf(
				"invalid keyword specified for ignore validation results flag: %q",
				keyword,
			)
		}
	}

	for _, keyword := range c.applyValidationResults {
		if !validationKeywords[strings.ToLower(strings.TrimSpace(keyword))] {
			return fmt.Errorf(
				"invalid keyword specified for apply validation results flag: %q",
				keyword,
			)
		}
	}

	for _, keyword := range c.applyValidationResults {
		if keywordListed(c.ignoreValidationResults, keyword) {
			return fmt.Errorf(
				"validation keyword was specified as value for multiple flags: %q",
				keyword,
			)
		}
	}

	if keywordListed(c.applyValidationResults, ValidationKeywordSANsList) && len(c.SANsEntries) == 0 {
		return fmt.Errorf(
			"required SANs entries flag and value missing for explicit SANs list validation apply request",
		)
	}

	return nil
}

// validate verifies all Config struct fields have been provided acceptable
// values.
func (c Config) validate(appType AppType) error {

	switch {
	case appType.Inspector:
		// User can specify one of filename or server, but not both (mostly in
		// order to keep the logic simpler)
		switch {
		case c.Filename == "" && c.Server == "":
			return fmt.Errorf(
				"one of %q or %q flags must be specified",
				"server",
				"filename",
			)
		case c.Filename != "" && c.Server != "":
			return fmt.Errorf(
				"only one of %q or %q flags may be specified",
				"server",
				"filename",
			)
		}

	case appType.Plugin:
		// Always required, even if using the DNSName value for hostname
		// verification
		if c.Server == "" && c.Filename == "" {
			return fmt.Errorf("one of server FQDN/IP Address or filename flag not provided")
		}
	}

	if c.Port < 0 {
		return fmt.Errorf("invalid TCP port number %d", c.Port)
	}

	if c.Timeout() < 0 {
		return fmt.Errorf("invalid timeout value %d provided", c.Timeout())
	}

	if c.AgeWarning < 0 {
		return fmt.Errorf(
			"invalid cert expiration WARNING threshold number: %d",
			c.AgeWarning,
		)
	}

	if c.AgeCritical < 0 {
		return fmt.Errorf(
			"invalid cert expiration CRITICAL threshold number: %d",
			c.AgeCritical,
		)
	}

	switch {
	case c.AgeWarning == 0:
		return fmt.Errorf("expiration age WARNING threshold cannot be zero")
	case c.AgeCritical == 0:
		return fmt.Errorf("expiration age CRITICAL threshold cannot be zero")
	case c.AgeCritical == c.AgeWarning:
		return fmt.Errorf("expiration age thresholds cannot be equal")
	case c.AgeCritical > c.AgeWarning:
		return fmt.Errorf(
			"expiration age critical threshold higher than warning threshold",
		)
	}

	if err := c.validateValidationResultKeywords(); err != nil {
		return err
	}

	requestedLoggingLevel := strings.ToLower(c.LoggingLevel)
	if _, ok := loggingLevels[requestedLoggingLevel]; !ok {
		return fmt.Errorf("invalid logging level %q", c.LoggingLevel)
	}

	// Optimist
	return nil

}
