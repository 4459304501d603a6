// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"context"
	"testing"

	"github.com/Vash63/x509chain/internal/certstore"
)

func TestEngineBuildChainHappyPath(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	store := certstore.NewMemoryStore()
	store.Add(inter)
	store.Add(root)

	engine, err := NewEngine(EngineConfig{TrustedRootStore: store})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	cc, err := engine.BuildChain(context.Background(), leaf, ChainParameters{})
	if err != nil {
		t.Fatalf("BuildChain returned error: %v", err)
	}

	chain := cc.Primary
	if len(chain.Elements) != 3 {
		t.Fatalf("expected a 3-element chain (leaf, intermediate, root), got %d", len(chain.Elements))
	}

	if !chain.Elements[2].Status.Info.Has(InfoIsSelfSigned) {
		t.Fatalf("expected the root element to be flagged self-signed")
	}

	if !chain.Aggregate.IsClean() {
		t.Fatalf("expected a well-formed chain to validate clean, got errors %s", chain.Aggregate.Errors)
	}
}

func TestEngineBuildChainNoIssuerFound(t *testing.T) {
	_, _, leaf := buildTestChain(t)

	store := certstore.NewMemoryStore() // empty: no issuer anywhere

	engine, err := NewEngine(EngineConfig{TrustedRootStore: store})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	_, err = engine.BuildChain(context.Background(), leaf, ChainParameters{})
	if err == nil {
		t.Fatalf("expected ErrNoIssuerFound when no issuer can be located")
	}
}

func TestEngineRefCounting(t *testing.T) {
	engine, err := NewEngine(EngineConfig{TrustedRootStore: certstore.NewMemoryStore()})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	if got := engine.RefCount(); got != 1 {
		t.Fatalf("expected initial ref count 1, got %d", got)
	}

	engine.Acquire()
	if got := engine.RefCount(); got != 2 {
		t.Fatalf("expected ref count 2 after Acquire, got %d", got)
	}

	if engine.Release() {
		t.Fatalf("expected Release to report false while a reference remains")
	}

	if !engine.Release() {
		t.Fatalf("expected Release to report true on the last reference")
	}
}

func TestSetDefaultEngineCompareAndSwap(t *testing.T) {
	// The default engine is process-wide state. This test assumes no other
	// test in the package installs one first: if one were already set, both
	// calls below would lose.
	e1, _ := NewEngine(EngineConfig{TrustedRootStore: certstore.NewMemoryStore()})
	e2, _ := NewEngine(EngineConfig{TrustedRootStore: certstore.NewMemoryStore()})

	first := SetDefaultEngine(e1)
	second := SetDefaultEngine(e2)

	if first == second {
		t.Fatalf("expected exactly one of the two SetDefaultEngine calls to win the race")
	}
}
