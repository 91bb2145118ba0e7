// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package kctx implements procedure calling contexts and access control
// (spec §4.8): the {Any, Account, Native, Auth, Note, Faucet} tag set, a
// context stack that dyncalls push and pop, and the edge-triggered
// "procedure was called" tracking that account-level ACLs are built on.
// Grounded on the teacher's scoped-guard style (e.g. mutex-guarded
// critical sections in net/), generalized to a tag stack instead of a
// single lock.
package kctx

import "github.com/veyra-network/kernel/kernelerrors"

// Tag identifies one axis of the current call context. A procedure
// declares the subset of tags it requires; it may run only when the
// active context satisfies every declared tag (spec §4.8).
type Tag uint8

const (
	TagAny Tag = 1 << iota
	TagAccount
	TagNative
	TagAuth
	TagNote
	TagFaucet
)

// Context tracks the current call context as a stack of tag sets, plus
// the edge-triggered procedure-tracking bits ACLs are built on.
type Context struct {
	stack          []Tag
	current        Tag
	tracked        map[string]bool
	authCalledOnce bool
}

// New returns a context starting in the unrestricted Any tag.
func New() *Context {
	return &Context{current: TagAny, tracked: make(map[string]bool)}
}

// Current returns the active tag set.
func (c *Context) Current() Tag {
	return c.current
}

// Enter pushes tag as the new active context and returns a function that
// restores the prior context. Callers must call the returned function on
// every exit path, including failure (spec §5's scoped-acquisition
// rule for start_foreign_context/end_foreign_context).
func (c *Context) Enter(tag Tag) func() {
	c.stack = append(c.stack, c.current)
	c.current = tag
	return func() {
		n := len(c.stack)
		c.current = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

// Require fails unless the active context satisfies every bit in
// required. An active context of TagAny alone satisfies any requirement,
// and a requirement that includes TagAny is satisfied in every context.
func (c *Context) Require(required Tag) error {
	if c.current == TagAny || required&TagAny != 0 {
		return nil
	}
	if c.current&required != required {
		return kernelerrors.New(kernelerrors.ErrInvalidContext, "procedure not permitted in the current call context")
	}
	return nil
}

// EnterAuth pushes Auth context for the epilogue's single invocation of
// the account's authentication procedure. Fails if auth was already
// entered once this transaction (spec §4.7 step 2: "must not have been
// called before").
func (c *Context) EnterAuth() (func(), error) {
	if c.authCalledOnce {
		return nil, kernelerrors.New(kernelerrors.ErrAuthCalledTwice, "authentication procedure already invoked this transaction")
	}
	c.authCalledOnce = true
	return c.Enter(TagAuth), nil
}

// AuthenticateAndTrackProcedure marks procedure name as having invoked
// an access-checking kernel entry point during its execution. Tracking
// is edge-triggered: a procedure that never calls this (or
// AssertAuthProcedure) is not tracked even if it ran (spec §4.8).
func (c *Context) AuthenticateAndTrackProcedure(name string) {
	c.tracked[name] = true
}

// AssertAuthProcedure is the second access-checking entry point ACLs may
// funnel through; it has the same tracking effect as
// AuthenticateAndTrackProcedure.
func (c *Context) AssertAuthProcedure(name string) {
	c.tracked[name] = true
}

// WasCalled reports whether procedure name was tracked this transaction.
func (c *Context) WasCalled(name string) bool {
	return c.tracked[name]
}
