// Package feature provides the typed feature values that make up a device
// model, along with the pure conversion helpers used to decode service
// payloads into them and encode them back into API state values.
//
// Every feature knows how to render itself as the value the service expects
// via APIValue(). The shapes differ per feature (plain scalar, tagged map,
// or a list of state entries for effects), matching the service's own
// inconsistencies, so APIValue signatures are concrete rather than hidden
// behind an interface.
//
// All functions in this package are deterministic and side-effect free;
// nothing here touches the network or shared state, which keeps decoding
// independently testable.
package feature
