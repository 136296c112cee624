// Package fluke45 is a client for the Fluke 45 bench multimeter's remote
// interface: a line-oriented, prompt-delimited protocol spoken over a serial
// line.
//
// The package has two halves. The prober decides whether a serial port has a
// meter behind it, regaining prompt synchronization with a device whose state
// is unknown. The Session owns the transport of a confirmed meter, exchanges
// queries and replies, and caches an interpretation of the meter's state.
//
// # Basic Usage
//
// Connect to a known port (or pass "" to scan every port):
//
//	s, err := fluke45.Connect("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	reading, err := s.GetReading()
//	fmt.Println(reading) // 1.2345 V [auto, dc]
//
// # State Snapshot
//
// The session caches a Snapshot built from one compound query. The cache is
// dropped by every query other than the single reading query, since any other
// command may have changed the meter's configuration:
//
//	st, err := s.GetState()
//	fmt.Println(st.Function, st.Units, st.Modes)
//
//	ok := s.IsSet("voltage", []string{"auto", "dc"})
//
// # Discovery
//
//	ports, err := fluke45.FindPorts(fluke45.WithTimeout(500 * time.Millisecond))
//
// # Error Handling
//
// Failures are reported with sentinel errors checked through errors.Is:
//
//	if errors.Is(err, fluke45.ErrUnknownFunction) {
//	    // the meter is in a mode this client does not model
//	}
//
// # Default Configuration
//
//   - BaudRate: 9600
//   - Timeout: 2 seconds per line
//   - PollInterval: 10ms
//   - SyncAttempts: 2
package fluke45
