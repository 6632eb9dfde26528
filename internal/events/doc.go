// Package events provides the typed domain events published by the core
// services and the channel-backed emitter that delivers them.
//
// Services publish events without knowing which consumers are subscribed,
// which keeps analytics and durable-log concerns out of the core operations
// and avoids direct cross-service calls. Delivery is fire-and-forget: Emit
// never blocks, and handler failures are logged rather than returned to the
// publishing service.
//
// The primary components are:
// - Event: A named domain event with a flat key/value payload
// - Handler: Interface for components that consume events
// - Emitter: Interface for components that publish events
// - ChannelEmitter: Buffered-channel Emitter with a single dispatcher
package events
