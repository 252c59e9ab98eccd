// Package fit implements the Kalman-filter track refit used after merging.
//
// The state is model.TrackParam expressed in a slice frame. The fitter
// rotates the state between slice frames, transports it to the radius of
// each hit with mean energy loss and multiple scattering, and applies a
// two-dimensional measurement update per hit.
package fit
