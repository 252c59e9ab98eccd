// Package resource bounds what concurrent event processing may consume:
// scratch memory, slice worker slots, event rate and archive IO throughput.
//
// One Controller is usually shared by every tracker of a process. All
// methods are safe on a nil *Controller, which imposes no limits.
package resource
