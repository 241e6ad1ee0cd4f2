// Package domain contains the core entities and value objects for labsim.
//
// This package represents the innermost layer of the application. It has no
// dependencies on infrastructure concerns (sockets, logging, configuration)
// and contains only the data types exchanged between components.
//
// # Entities
//
//   - [Message]: A parsed HL7 v2 message, an ordered sequence of segments
//   - [Order]: The logical lab order extracted from an inbound ORM message
//   - [ResultSet]: Synthesized observation values for one order
//   - [Endpoint]: The downstream MLLP server address
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
