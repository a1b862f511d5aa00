// Package game implements the liar's dice core: the room state machine, bet
// ordering, challenge resolution with wildcard dice, turn rotation and the CPU
// decision engine.
//
// The package is pure domain logic. It performs no locking and no I/O; callers
// (internal/server) serialize all commands for a room and observe mutations to
// drive broadcasts. Every command either mutates the room and returns nil, or
// leaves the room untouched and returns a typed rejection.
package game
