// Package listener holds listener values, the priority Registry that resolves
// them for an event, and the adapters that turn ordinary functions and
// handler methods into listeners.
package listener
