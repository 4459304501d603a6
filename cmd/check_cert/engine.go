// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package main

import (
	"context"
	"crypto/x509"

	"github.com/Vash63/x509chain/internal/certstore"
	"github.com/Vash63/x509chain/internal/chainengine"
	"github.com/Vash63/x509chain/internal/config"
	"github.com/rs/zerolog"
)

// buildChainContext constructs a chainengine.Engine from cfg and runs it
// against the leaf certificate in certChain, treating every remaining
// certificate in certChain as an additional issuer candidate for the
// engine's world store.
func buildChainContext(
	ctx context.Context,
	cfg *config.Config,
	certChain []*x509.Certificate,
	log zerolog.Logger,
) (*chainengine.ChainContext, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}

	if len(certChain) > 1 {
		additional := certstore.NewMemoryStore()
		additional.AddAll(certChain[1:])
		engineCfg.AdditionalStores = append(engineCfg.AdditionalStores, additional)
	}

	engine, err := chainengine.NewEngine(engineCfg)
	if err != nil {
		return nil, err
	}
	defer engine.Release()

	log.Debug().
		Str("policy", cfg.EnginePolicy).
		Str("revocation_mode", cfg.RevocationMode).
		Msg("Building certificate chain with chain-building engine")

	return engine.BuildChain(ctx, certChain[0], chainengine.ChainParameters{})
}
