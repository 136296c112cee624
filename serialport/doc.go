// Package serialport is the serial transport used by go-fluke45.
//
// It opens a raw 8N1 line (or any other framing set through options), exposes
// the line-oriented primitives an instrument protocol needs and lists the
// serial-capable devices of the host.
//
// # Basic Usage
//
//	port, err := serialport.Open("/dev/ttyUSB0",
//	    serialport.WithBaudRate(9600),
//	    serialport.WithReadTimeout(2*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	port.Write([]byte("*IDN?\r\n"))
//	if n, _ := port.InWaiting(); n > 0 {
//	    line, err := port.ReadLine()
//	    ...
//	}
//
// # Port Discovery
//
//	ports, err := serialport.ListPorts()
//	for _, path := range ports {
//	    info, _ := serialport.GetPortInfo(path)
//	    fmt.Printf("%s: %s (VID=%s PID=%s)\n", info.Path, info.Description, info.VendorID, info.ProductID)
//	}
//
// # Platform Support
//
// On Linux the port is driven directly through termios ioctls
// (golang.org/x/sys/unix); USB metadata comes from sysfs and hung adapters
// can be reset with the usbreset utility. On other systems the port is backed
// by go.bug.st/serial and enumeration uses its enumerator package.
//
// # Default Configuration
//
//   - BaudRate: 9600
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 2 seconds
package serialport
