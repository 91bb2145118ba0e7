// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package kctx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veyra-network/kernel/kernelerrors"
)

func TestNewContextStartsAtAny(t *testing.T) {
	c := New()
	assert.Equal(t, TagAny, c.Current())
	assert.NoError(t, c.Require(TagAccount))
}

func TestEnterAndRestore(t *testing.T) {
	c := New()
	exit := c.Enter(TagAccount)
	assert.Equal(t, TagAccount, c.Current())
	assert.NoError(t, c.Require(TagAccount))
	assert.Error(t, c.Require(TagNote))

	exit()
	assert.Equal(t, TagAny, c.Current())
}

func TestRequireCombinedTags(t *testing.T) {
	c := New()
	exit := c.Enter(TagAccount | TagNative)
	defer exit()

	assert.NoError(t, c.Require(TagAccount))
	assert.NoError(t, c.Require(TagAccount|TagNative))
	assert.Error(t, c.Require(TagAuth))
}

func TestEnterAuthOnlyOncePerTransaction(t *testing.T) {
	c := New()
	exit, err := c.EnterAuth()
	assert.NoError(t, err)
	assert.Equal(t, TagAuth, c.Current())
	exit()

	_, err = c.EnterAuth()
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrAuthCalledTwice))
}

func TestWasCalledIsEdgeTriggered(t *testing.T) {
	c := New()
	assert.False(t, c.WasCalled("auth::verify"))

	c.AuthenticateAndTrackProcedure("auth::verify")
	assert.True(t, c.WasCalled("auth::verify"))
	assert.False(t, c.WasCalled("other::proc"))
}

func TestAssertAuthProcedureAlsoTracks(t *testing.T) {
	c := New()
	c.AssertAuthProcedure("acl::guard")
	assert.True(t, c.WasCalled("acl::guard"))
}

func TestNestedEnterRestoresPriorLevel(t *testing.T) {
	c := New()
	exitOuter := c.Enter(TagAccount)
	exitInner := c.Enter(TagNote)
	assert.Equal(t, TagNote, c.Current())

	exitInner()
	assert.Equal(t, TagAccount, c.Current())

	exitOuter()
	assert.Equal(t, TagAny, c.Current())
}
