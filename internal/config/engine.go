// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import (
	"fmt"
	"time"

	"github.com/Vash63/x509chain/internal/certs"
	"github.com/Vash63/x509chain/internal/certstore"
	"github.com/Vash63/x509chain/internal/chainengine"
)

// policyByKeyword maps the PolicyFlagLong keyword to its chainengine.PolicyID.
var policyByKeyword = map[string]chainengine.PolicyID{
	PolicyKeywordBase:             chainengine.PolicyBase,
	PolicyKeywordBasicConstraints: chainengine.PolicyBasicConstraints,
	PolicyKeywordAuthenticode:     chainengine.PolicyAuthenticode,
	PolicyKeywordSSL:              chainengine.PolicySSL,
	PolicyKeywordMicrosoftRoot:    chainengine.PolicyMicrosoftRoot,
}

// revocationFlagsByKeyword maps the RevocationModeFlagLong keyword to its
// chainengine.RevocationFlags bits.
var revocationFlagsByKeyword = map[string]chainengine.RevocationFlags{
	RevocationModeOff:              0,
	RevocationModeEndCertOnly:      chainengine.RevocationCheckEndCert,
	RevocationModeChain:            chainengine.RevocationCheckChain,
	RevocationModeChainExcludeRoot: chainengine.RevocationCheckChainExcludeRoot,
}

// EngineConfig builds a chainengine.EngineConfig from the flags and files
// specified by the sysadmin, loading the trusted/restricted root files (if
// any) into in-memory certificate stores.
func (c Config) EngineConfig() (chainengine.EngineConfig, error) {
	var cfg chainengine.EngineConfig

	if c.TrustedRootFile != "" {
		trustedCerts, _, err := certs.GetCertsFromFile(c.TrustedRootFile)
		if err != nil {
			return cfg, fmt.Errorf("error loading trusted root file %q: %w", c.TrustedRootFile, err)
		}
		trustedStore := certstore.NewMemoryStore()
		trustedStore.AddAll(trustedCerts)
		cfg.TrustedRootStore = trustedStore
	}

	if c.RestrictedRootFile != "" {
		restrictedCerts, _, err := certs.GetCertsFromFile(c.RestrictedRootFile)
		if err != nil {
			return cfg, fmt.Errorf("error loading restricted root file %q: %w", c.RestrictedRootFile, err)
		}
		restrictedStore := certstore.NewMemoryStore()
		restrictedStore.AddAll(restrictedCerts)
		cfg.RestrictedRootStore = restrictedStore
	}

	if c.EnginePolicy != "" {
		policyID, ok := policyByKeyword[c.EnginePolicy]
		if !ok {
			return cfg, fmt.Errorf("invalid policy keyword %q", c.EnginePolicy)
		}
		cfg.Policy = policyID
	}

	revocationFlags, ok := revocationFlagsByKeyword[c.RevocationMode]
	if !ok {
		return cfg, fmt.Errorf("invalid revocation mode keyword %q", c.RevocationMode)
	}
	cfg.RevocationFlags = revocationFlags

	cfg.URLRetrievalTimeout = time.Duration(c.URLTimeout) * time.Second
	cfg.AccumulativeRevocationTimeout = time.Duration(c.RevocationTimeout) * time.Second
	cfg.MaxCachedCerts = c.MaxCachedCerts
	cfg.CycleModulus = c.CycleModulus

	cfg.SSLServerName = c.DNSName
	if cfg.SSLServerName == "" {
		cfg.SSLServerName = c.Server
	}

	return cfg, nil
}
