// Package conv provides range-checked integer narrowing for wire encoders.
package conv
