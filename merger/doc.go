// Package merger defines the cross-slice merge boundary and ships
// Passthrough, a merger that forwards slice tracks unchanged.
package merger
