// Package event defines the capabilities an event value can opt into and
// derives the identities listeners are looked up by.
//
// # Overview
//
// Any Go value can be dispatched as an event. Its identity is decided here:
//
//   - Named events (EventName() string) are identified by that name only.
//   - Every other value is identified by its canonical type name plus the
//     names of its ancestors, most-derived first.
//
// The canonical type name is the import path joined to the type name, with
// pointers dereferenced:
//
//	event.TypeName[shop.OrderPlaced]()  // "github.com/acme/shop.OrderPlaced"
//	event.Identity(&shop.OrderPlaced{}) // same
//
// # Ancestors
//
// Go has no class inheritance, so ancestry comes from one of two places:
//
//   - A type implementing Lineage declares its ancestors explicitly.
//   - Otherwise the embedded struct fields are walked breadth-first, nearest
//     embedding first. An embedded struct plays the part of a parent type.
//
//	type OrderEvent struct{ event.Base }
//	type OrderPlaced struct{ OrderEvent }
//
//	event.Identities(&OrderPlaced{})
//	// [".../shop.OrderPlaced", ".../shop.OrderEvent", ".../event.Base"]
//
// Lineage is an ordinary method set, so it is promoted through embedding.
// Implement it on the concrete type that owns the chain.
//
// # Propagation
//
// Stoppable events expose a flag listeners can set to halt dispatch. Embed
// Base to get one:
//
//	type OrderPlaced struct {
//	    event.Base
//	    OrderID string
//	}
//
//	evt := &OrderPlaced{Base: event.NewBase(), OrderID: "o-1"}
//	evt.StopPropagation()
//
// Message is a ready-made named, stoppable event with a typed payload:
//
//	msg := event.NewMessage("user.signed_up", SignupPayload{Email: "a@b.c"})
package event
