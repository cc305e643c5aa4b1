// Package acceptor implements the TCP admission/accept half of the
// framework: a ListenerSet that binds one or more endpoints atomically, a
// per-listener AcceptLoop state machine that admits connections through an
// AdmissionGate before handing them to a SessionProcessor, and the Acceptor
// type that ties the two together with a worker pool.
package acceptor
